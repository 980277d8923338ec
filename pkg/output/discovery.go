// Package output discovers previously generated skill artifacts in an
// output directory.
package output

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

const (
	// SkillFileName is the compiled document inside each artifact dir.
	SkillFileName = "SKILL.md"
	// MetadataFileName is the JSON run result inside each artifact dir.
	MetadataFileName = "metadata.json"

	dirPrefix     = "skill_"
	dirTimeLayout = "20060102_150405"
)

// Artifact is one generated skill found in the output directory.
type Artifact struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Dir         string    `json:"dir"`
	SkillPath   string    `json:"skill_path"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ArtifactDirName returns the directory name for a run started at t.
func ArtifactDirName(t time.Time) string {
	return dirPrefix + t.Format(dirTimeLayout)
}

// Discover scans outputDir for skill artifact directories and loads the
// frontmatter of each SKILL.md. Directories without a parseable SKILL.md
// are skipped. Results are sorted most recent first.
func Discover(outputDir string) ([]Artifact, error) {
	entries, err := os.ReadDir(outputDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read output directory")
	}

	var artifacts []Artifact
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), dirPrefix) {
			continue
		}

		dir := filepath.Join(outputDir, entry.Name())
		skillPath := filepath.Join(dir, SkillFileName)

		name, description, err := readFrontmatter(skillPath)
		if err != nil {
			continue
		}

		artifacts = append(artifacts, Artifact{
			Name:        name,
			Description: description,
			Dir:         dir,
			SkillPath:   skillPath,
			GeneratedAt: generatedAt(entry.Name(), skillPath),
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].GeneratedAt.After(artifacts[j].GeneratedAt)
	})
	return artifacts, nil
}

// readFrontmatter extracts the name and description fields from a
// SKILL.md frontmatter block.
func readFrontmatter(path string) (string, string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to read skill file")
	}

	md := goldmark.New(goldmark.WithExtensions(meta.Meta))

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return "", "", errors.Wrap(err, "failed to parse markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return "", "", errors.New("missing frontmatter")
	}

	name, _ := metaData["name"].(string)
	description, _ := metaData["description"].(string)
	if name == "" {
		return "", "", errors.New("skill name is required in frontmatter")
	}

	return name, description, nil
}

// generatedAt parses the timestamp out of the artifact directory name,
// falling back to the file modification time.
func generatedAt(dirName, skillPath string) time.Time {
	if t, err := time.ParseInLocation(dirTimeLayout, strings.TrimPrefix(dirName, dirPrefix), time.Local); err == nil {
		return t
	}
	if info, err := os.Stat(skillPath); err == nil {
		return info.ModTime()
	}
	return time.Time{}
}
