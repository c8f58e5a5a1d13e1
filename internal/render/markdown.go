// Package render turns a compiled document into Markdown through a user
// template and previews Markdown in the terminal.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/template"

	"github.com/roach88/pfsc/internal/ir"
)

// Template delimiters. Markdown and LaTeX both use "{{" freely, so actions
// are written as ~{ .Title }~.
const (
	LeftDelim  = "~{"
	RightDelim = "}~"
)

// TemplateError reports a template that cannot be parsed or executed.
type TemplateError struct {
	Name string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Name, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// Funcs returns the functions available inside templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"slugify": ir.Slug,
		"rstrip": func(s string) string {
			return strings.TrimRight(s, " \t\r\n")
		},
		"lower": strings.ToLower,
		"join": func(sep string, items []string) string {
			return strings.Join(items, sep)
		},
	}
}

// Markdown renders documents through a parsed template.
type Markdown struct {
	name string
	tmpl *template.Template
}

// ParseMarkdown parses template text.
func ParseMarkdown(name, text string) (*Markdown, error) {
	tmpl, err := template.New(name).
		Delims(LeftDelim, RightDelim).
		Funcs(Funcs()).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, &TemplateError{Name: name, Err: err}
	}
	return &Markdown{name: name, tmpl: tmpl}, nil
}

// LoadMarkdown reads and parses the template at path. A missing file is not
// an error: it returns nil, nil and no Markdown output is produced.
func LoadMarkdown(path string) (*Markdown, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return ParseMarkdown(path, string(data))
}

// Render executes the template against doc.
func (m *Markdown) Render(doc *ir.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := m.tmpl.Execute(&buf, doc); err != nil {
		return nil, &TemplateError{Name: m.name, Err: err}
	}
	return buf.Bytes(), nil
}
