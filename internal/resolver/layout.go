package resolver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LayoutFile is the optional per-repository layout override.
const LayoutFile = "pfsc.yaml"

// PathTemplate is a slash-separated path relative to the input root in which
// "{id}" is replaced by an identifier.
type PathTemplate string

// Expand substitutes id into the template.
func (p PathTemplate) Expand(id string) string {
	return strings.ReplaceAll(string(p), "{id}", id)
}

// Layout holds every path template used to locate source files.
type Layout struct {
	SpecDir      PathTemplate `yaml:"spec_dir"`
	Document     string       `yaml:"document"`     // file name inside SpecDir
	Authors      string       `yaml:"authors"`      // file name inside SpecDir
	Requirements string       `yaml:"requirements"` // file name inside SpecDir
	Introduction PathTemplate `yaml:"introduction"`
	Annex        PathTemplate `yaml:"annex"`
	Category     PathTemplate `yaml:"category"`
	Requirement  PathTemplate `yaml:"requirement"`
	Glossary     PathTemplate `yaml:"glossary"`
	Reference    PathTemplate `yaml:"reference"`
	Template     string       `yaml:"template"`
}

// DefaultLayout returns the conventional folder layout.
func DefaultLayout() Layout {
	return Layout{
		SpecDir:      "pfs/{id}",
		Document:     "document.yaml",
		Authors:      "authors.yaml",
		Requirements: "requirements.yaml",
		Introduction: "sections/introduction/{id}.yaml",
		Annex:        "sections/annexes/{id}.yaml",
		Category:     "sections/requirement-categories/{id}.yaml",
		Requirement:  "requirements/{id}.yaml",
		Glossary:     "glossary/{id}.yaml",
		Reference:    "references/{id}.bib",
		Template:     "templates/template.md",
	}
}

// LoadLayout returns the default layout with any overrides from
// <root>/pfsc.yaml applied. A missing file is not an error.
func LoadLayout(root string) (Layout, error) {
	layout := DefaultLayout()

	path := filepath.Join(root, LayoutFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return layout, nil
	}
	if err != nil {
		return layout, fmt.Errorf("reading %s: %w", path, err)
	}

	var override Layout
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&override); err != nil && !errors.Is(err, io.EOF) {
		return layout, schemaViolation("", path, err.Error())
	}
	layout.merge(override)
	return layout, nil
}

// merge copies every non-empty field of o into l.
func (l *Layout) merge(o Layout) {
	setTemplate := func(dst *PathTemplate, src PathTemplate) {
		if src != "" {
			*dst = src
		}
	}
	setString := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	setTemplate(&l.SpecDir, o.SpecDir)
	setString(&l.Document, o.Document)
	setString(&l.Authors, o.Authors)
	setString(&l.Requirements, o.Requirements)
	setTemplate(&l.Introduction, o.Introduction)
	setTemplate(&l.Annex, o.Annex)
	setTemplate(&l.Category, o.Category)
	setTemplate(&l.Requirement, o.Requirement)
	setTemplate(&l.Glossary, o.Glossary)
	setTemplate(&l.Reference, o.Reference)
	setString(&l.Template, o.Template)
}
