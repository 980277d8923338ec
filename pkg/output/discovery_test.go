package output

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, outputDir, dirName, content string) {
	t.Helper()
	dir := filepath.Join(outputDir, dirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, SkillFileName), []byte(content), 0o644))
}

const skillDoc = `---
name: automate-python-linting
description: 'Automate Python linting for PRs. Triggers: lint my PR.'
---

## Overview
`

func TestDiscover(t *testing.T) {
	outputDir := t.TempDir()
	writeArtifact(t, outputDir, "skill_20260825_120000", skillDoc)
	writeArtifact(t, outputDir, "skill_20260825_090000", skillDoc)

	artifacts, err := Discover(outputDir)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	assert.Equal(t, "automate-python-linting", artifacts[0].Name)
	assert.Equal(t, "Automate Python linting for PRs. Triggers: lint my PR.", artifacts[0].Description)
	assert.True(t, artifacts[0].GeneratedAt.After(artifacts[1].GeneratedAt), "most recent first")
	assert.Equal(t, filepath.Join(outputDir, "skill_20260825_120000", SkillFileName), artifacts[0].SkillPath)
}

func TestDiscoverSkipsUnrelatedEntries(t *testing.T) {
	outputDir := t.TempDir()
	writeArtifact(t, outputDir, "skill_20260825_120000", skillDoc)

	// not an artifact dir
	require.NoError(t, os.MkdirAll(filepath.Join(outputDir, "notes"), 0o755))
	// artifact dir without SKILL.md
	require.NoError(t, os.MkdirAll(filepath.Join(outputDir, "skill_20260825_130000"), 0o755))
	// artifact dir with no frontmatter
	writeArtifact(t, outputDir, "skill_20260825_140000", "## Overview\n\nno frontmatter\n")
	// stray file
	require.NoError(t, os.WriteFile(filepath.Join(outputDir, "README.md"), []byte("x"), 0o644))

	artifacts, err := Discover(outputDir)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "automate-python-linting", artifacts[0].Name)
}

func TestDiscoverMissingDir(t *testing.T) {
	artifacts, err := Discover(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, artifacts)
}

func TestArtifactDirName(t *testing.T) {
	ts := time.Date(2026, 8, 25, 12, 30, 45, 0, time.Local)
	assert.Equal(t, "skill_20260825_123045", ArtifactDirName(ts))
}
