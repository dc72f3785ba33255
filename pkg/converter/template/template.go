// Package template renders the audit log written next to every document whose
// content was changed by cleaning.
package template

import (
	_ "embed"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"
)

//go:embed auditlog.tmpl
var defaultTemplateContent string

// AuditMetadata holds the data passed to the audit log template.
type AuditMetadata struct {
	RunID     string
	FilePath  string
	Timestamp time.Time
	// Rules lists the cleaning rules that changed the document, in order.
	Rules []string
	// FrontMatter holds the fields of the removed front-matter block, if any.
	FrontMatter map[string]any
	// Diff is a unified diff from Original to Cleaned.
	Diff     string
	Original string
	Cleaned  string
}

// TemplateExecutor renders audit logs. A nil template selects the embedded default.
type TemplateExecutor interface {
	Execute(writer io.Writer, template *template.Template, metadata *AuditMetadata) error
}

// GoTemplateExecutor implements TemplateExecutor with text/template.
type GoTemplateExecutor struct{}

// NewGoTemplateExecutor creates a new GoTemplateExecutor.
func NewGoTemplateExecutor() *GoTemplateExecutor {
	return &GoTemplateExecutor{}
}

// Execute implements TemplateExecutor.
func (e *GoTemplateExecutor) Execute(writer io.Writer, tmpl *template.Template, metadata *AuditMetadata) error {
	if tmpl == nil {
		def, err := LoadDefaultTemplate()
		if err != nil {
			return err
		}
		tmpl = def
	}
	if err := tmpl.Execute(writer, metadata); err != nil {
		return fmt.Errorf("template execution failed for %q: %w", tmpl.Name(), err)
	}
	return nil
}

var customTemplateFuncs = template.FuncMap{
	"formatDate": func(t time.Time, layout string) string {
		if layout == "" {
			layout = time.RFC3339
		}
		return t.Format(layout)
	},
	"join": strings.Join,
	"sortedKeys": func(m map[string]any) []string {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	},
}

// LoadDefaultTemplate parses the embedded audit log template.
func LoadDefaultTemplate() (*template.Template, error) {
	if defaultTemplateContent == "" {
		return nil, fmt.Errorf("embedded audit log template is empty")
	}
	tmpl, err := template.New("auditlog").Funcs(customTemplateFuncs).Parse(defaultTemplateContent)
	if err != nil {
		return nil, fmt.Errorf("failed to parse audit log template: %w", err)
	}
	return tmpl, nil
}

// ParseTemplateFile parses a user-supplied audit log template with the same
// functions available as in the default one.
func ParseTemplateFile(path string) (*template.Template, error) {
	tmpl, err := template.New(filepath.Base(path)).Funcs(customTemplateFuncs).ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse audit log template %q: %w", path, err)
	}
	return tmpl, nil
}
