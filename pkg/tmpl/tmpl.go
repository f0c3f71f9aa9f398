// Package tmpl renders the small text templates used for route paths.
package tmpl

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"text/template"
)

var funcs = template.FuncMap{
	"pathEscape": url.PathEscape,
	"join":       strings.Join,
	"lower":      strings.ToLower,
	"default":    stringOrDefault,
}

// stringOrDefault is used as {{ .Name | default "x" }}.
func stringOrDefault(def, s string) string {
	if s != "" {
		return s
	}
	return def
}

// Render executes a Go template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
//
// Available template functions:
//   - pathEscape: escape a value for use as one URL path segment
//   - join: join a string slice with a separator
//   - lower: lower-case a string
//   - default: substitute a fallback for an empty string
func Render(tmpl string, data any) (string, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
