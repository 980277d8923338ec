package overlay

import (
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/pkg/errors"
)

var overridesTmpl = template.Must(template.New("user_overrides").Funcs(template.FuncMap{
	"join":  strings.Join,
	"title": titleCase,
}).Parse(`# User Overrides and Local Constraints

Generated: {{.Generated}}

## Compliance Requirements

{{if .Overlay.ComplianceConstraints}}{{.Overlay.ComplianceConstraints}}{{else}}None specified{{end}}

## Tool Requirements

**Must use:**
{{- if .Overlay.RequiredTools}}
{{- range .Overlay.RequiredTools}}
- {{.}}
{{- end}}
{{- else}}
- No specific requirements
{{- end}}

**Cannot use:**
{{- if .Overlay.ForbiddenTools}}
{{- range .Overlay.ForbiddenTools}}
- {{.}}
{{- end}}
{{- else}}
- No restrictions
{{- end}}

## Output Format

{{if .Overlay.OutputFormat}}{{.Overlay.OutputFormat.Description}}{{else}}Not specified{{end}}

## Priority

{{title (printf "%s" .Overlay.Priority)}}

## Known Failure Patterns

Common issues in your context:
{{- if .Overlay.FailureHistory}}
{{- range .Overlay.FailureHistory}}
- {{.}}
{{- end}}
{{- else}}
- None documented yet
{{- end}}

## Notes

These constraints will be compiled into the SKILL.md with highest priority.
If conflicts arise between these constraints and external best practices,
these local constraints take precedence (except for tool compatibility issues).
`))

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// RenderUserOverrides renders the overlay as a user_overrides.md document.
func RenderUserOverrides(o *Overlay) (string, error) {
	var b strings.Builder
	err := overridesTmpl.Execute(&b, struct {
		Generated string
		Overlay   *Overlay
	}{
		Generated: time.Now().Format(time.RFC3339),
		Overlay:   o,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to render user overrides")
	}
	return b.String(), nil
}

// SaveUserOverrides writes the rendered overlay next to the other skill
// artifacts.
func SaveUserOverrides(o *Overlay, path string) error {
	content, err := RenderUserOverrides(o)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Wrap(err, "failed to write user overrides")
	}
	return nil
}
