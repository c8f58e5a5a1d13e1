package resolver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pfsc/internal/ir"
	"github.com/roach88/pfsc/internal/schema"
)

// includePrefix marks a Markdown field whose content lives in a sibling file.
const includePrefix = "include:"

// Resolver loads and validates source files relative to an input root.
//
// Thread-safety: Resolver is safe for concurrent use. The file cache is
// guarded by a mutex; load stacks are per call chain.
type Resolver struct {
	root      string
	layout    Layout
	validator *schema.Validator

	mu    sync.Mutex
	cache map[cacheKey][]byte
}

type cacheKey struct {
	path  string
	shape schema.Shape // empty for unstructured files
}

// New creates a Resolver for the given input root.
func New(root string, layout Layout, validator *schema.Validator) *Resolver {
	return &Resolver{
		root:      root,
		layout:    layout,
		validator: validator,
		cache:     make(map[cacheKey][]byte),
	}
}

// Root returns the input root.
func (r *Resolver) Root() string {
	return r.root
}

// Layout returns the path templates in use.
func (r *Resolver) Layout() Layout {
	return r.layout
}

// Path returns the file path of id under the given template.
func (r *Resolver) Path(tmpl PathTemplate, id string) string {
	return filepath.Join(r.root, filepath.FromSlash(tmpl.Expand(id)))
}

// Resolve loads the value identified by id through pathTemplate and
// validates it against shape.
//
// The concrete result type depends on shape:
//   - schema.Section:     ir.Section
//   - schema.Glossary:    ir.GlossaryTerm
//   - schema.Requirement: *ir.Requirement
//   - "" (unstructured):  string; the id itself for .bib files, otherwise
//     the whole file content
func (r *Resolver) Resolve(id string, pathTemplate PathTemplate, shape schema.Shape) (any, error) {
	switch shape {
	case schema.Section:
		return r.section(id, pathTemplate, nil)
	case schema.Glossary:
		return r.glossaryTerm(id, pathTemplate, nil)
	case schema.Requirement:
		return r.requirement(id, pathTemplate, nil)
	case "":
		return r.unstructured(id, pathTemplate, nil)
	default:
		return nil, fmt.Errorf("resolve %q: shape %s is not addressable by id", id, shape)
	}
}

// Section resolves a narrative section through the given template.
func (r *Resolver) Section(id string, tmpl PathTemplate) (ir.Section, error) {
	return r.section(id, tmpl, nil)
}

// GlossaryTerm resolves a glossary term.
func (r *Resolver) GlossaryTerm(id string) (ir.GlossaryTerm, error) {
	return r.glossaryTerm(id, r.layout.Glossary, nil)
}

// Requirement resolves a requirement.
func (r *Resolver) Requirement(id string) (*ir.Requirement, error) {
	return r.requirement(id, r.layout.Requirement, nil)
}

// ReadReference returns the raw bibliography entry for a reference id.
func (r *Resolver) ReadReference(id string) ([]byte, error) {
	path := r.Path(r.layout.Reference, id)
	return r.readRaw(id, path)
}

// LoadDocument loads a specification's document file with its
// introduction, glossary, references and annexes resolved.
func (r *Resolver) LoadDocument(path string) (*ir.Specification, error) {
	stack, err := loadStack(nil).push("", path)
	if err != nil {
		return nil, err
	}

	var raw rawDocument
	if err := r.decode("", path, schema.Document, &raw); err != nil {
		return nil, err
	}

	spec := &ir.Specification{
		ID:      raw.ID,
		Title:   raw.Title,
		Version: raw.Version,
		Type:    raw.Type,
	}
	if spec.AppliesTo, err = r.markdown(raw.AppliesTo, path, stack); err != nil {
		return nil, err
	}
	if spec.Introduction, err = r.sectionList(raw.Introduction, r.layout.Introduction, "introduction", path, stack); err != nil {
		return nil, err
	}
	if spec.Glossary, err = r.glossaryList(raw.Glossary, path, stack); err != nil {
		return nil, err
	}
	if spec.References, err = r.referenceList(raw.References, path, stack); err != nil {
		return nil, err
	}
	if spec.Annexes, err = r.sectionList(raw.Annexes, r.layout.Annex, "annexes", path, stack); err != nil {
		return nil, err
	}
	spec.Authors = []ir.Author{}
	spec.Requirements = []ir.CategoryBlock{}
	return spec, nil
}

// LoadAuthors loads an author list file.
func (r *Resolver) LoadAuthors(path string) ([]ir.Author, error) {
	var raw []rawAuthor
	if err := r.decode("", path, schema.Authors, &raw); err != nil {
		return nil, err
	}

	authors := make([]ir.Author, 0, len(raw))
	for i, a := range raw {
		if err := checkUnique(a.Members, fmt.Sprintf("[%d].members", i), "", path); err != nil {
			return nil, err
		}
		authors = append(authors, ir.Author{
			Name:    a.Name,
			Country: a.Country,
			Members: append([]string{}, a.Members...),
		})
	}
	return authors, nil
}

// LoadCategories loads a requirement category list file with every category
// and requirement resolved.
func (r *Resolver) LoadCategories(path string) ([]ir.CategoryBlock, error) {
	stack, err := loadStack(nil).push("", path)
	if err != nil {
		return nil, err
	}

	var raw []rawCategoryRef
	if err := r.decode("", path, schema.Requirements, &raw); err != nil {
		return nil, err
	}

	blocks := make([]ir.CategoryBlock, 0, len(raw))
	for i, ref := range raw {
		if err := checkUnique(ref.Requirements, fmt.Sprintf("[%d].requirements", i), "", path); err != nil {
			return nil, err
		}

		category, err := r.section(ref.Category, r.layout.Category, stack)
		if err != nil {
			return nil, err
		}

		block := ir.CategoryBlock{
			Category:     category,
			Requirements: make([]*ir.Requirement, 0, len(ref.Requirements)),
		}
		for _, reqID := range ref.Requirements {
			req, err := r.requirement(reqID, r.layout.Requirement, stack)
			if err != nil {
				return nil, err
			}
			block.Requirements = append(block.Requirements, req)
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func (r *Resolver) section(id string, tmpl PathTemplate, stack loadStack) (ir.Section, error) {
	path := r.Path(tmpl, id)
	stack, err := stack.push(id, path)
	if err != nil {
		return ir.Section{}, err
	}

	var raw rawSection
	if err := r.decode(id, path, schema.Section, &raw); err != nil {
		return ir.Section{}, err
	}

	sec := ir.Section{ID: raw.ID, Title: raw.Title}
	if sec.ID == "" {
		sec.ID = id
	}
	if sec.Description, err = r.markdown(raw.Description, path, stack); err != nil {
		return ir.Section{}, err
	}
	if sec.Glossary, err = r.glossaryList(raw.Glossary, path, stack); err != nil {
		return ir.Section{}, err
	}
	if sec.References, err = r.referenceList(raw.References, path, stack); err != nil {
		return ir.Section{}, err
	}
	return sec, nil
}

func (r *Resolver) glossaryTerm(id string, tmpl PathTemplate, stack loadStack) (ir.GlossaryTerm, error) {
	path := r.Path(tmpl, id)
	stack, err := stack.push(id, path)
	if err != nil {
		return ir.GlossaryTerm{}, err
	}

	var raw rawGlossary
	if err := r.decode(id, path, schema.Glossary, &raw); err != nil {
		return ir.GlossaryTerm{}, err
	}

	term := ir.GlossaryTerm{ID: raw.ID, Term: raw.Term}
	if term.ID == "" {
		term.ID = id
	}
	if term.Description, err = r.markdown(raw.Description, path, stack); err != nil {
		return ir.GlossaryTerm{}, err
	}
	return term, nil
}

func (r *Resolver) requirement(id string, tmpl PathTemplate, stack loadStack) (*ir.Requirement, error) {
	path := r.Path(tmpl, id)
	stack, err := stack.push(id, path)
	if err != nil {
		return nil, err
	}

	var raw rawRequirement
	if err := r.decode(id, path, schema.Requirement, &raw); err != nil {
		return nil, err
	}

	req := &ir.Requirement{
		ID:        raw.ID,
		Title:     raw.Title,
		Metadata:  raw.Metadata,
		AppliesTo: []string{},
	}
	if req.ID == "" {
		req.ID = id
	}
	if req.Metadata == nil {
		req.Metadata = map[string]any{}
	}
	if raw.Legacy != nil && (raw.Legacy.Optical != "" || raw.Legacy.SAR != "") {
		req.Legacy = &ir.Legacy{Optical: raw.Legacy.Optical, SAR: raw.Legacy.SAR}
	}
	if req.Description, err = r.markdown(raw.Description, path, stack); err != nil {
		return nil, err
	}
	if req.Threshold, err = r.part(raw.Threshold, path, stack); err != nil {
		return nil, err
	}
	if req.Goal, err = r.part(raw.Goal, path, stack); err != nil {
		return nil, err
	}
	if req.Glossary, err = r.glossaryList(raw.Glossary, path, stack); err != nil {
		return nil, err
	}
	if req.References, err = r.referenceList(raw.References, path, stack); err != nil {
		return nil, err
	}
	if err := checkUnique(raw.Dependencies, "dependencies", id, path); err != nil {
		return nil, err
	}
	req.Dependencies = append([]string{}, raw.Dependencies...)
	return req, nil
}

func (r *Resolver) part(raw *rawPart, path string, stack loadStack) (*ir.Part, error) {
	if raw == nil {
		return nil, nil
	}
	desc, err := r.markdown(raw.Description, path, stack)
	if err != nil {
		return nil, err
	}
	p := &ir.Part{Description: desc, Notes: make([]string, 0, len(raw.Notes))}
	for _, note := range raw.Notes {
		text, err := r.markdown(note, path, stack)
		if err != nil {
			return nil, err
		}
		p.Notes = append(p.Notes, text)
	}
	return p, nil
}

// unstructured resolves a non-YAML target. Bibliography files are not
// parsed here: their id is kept and the raw entry is read at bibliography
// compilation time.
func (r *Resolver) unstructured(id string, tmpl PathTemplate, stack loadStack) (string, error) {
	path := r.Path(tmpl, id)
	if _, err := stack.push(id, path); err != nil {
		return "", err
	}
	if filepath.Ext(path) == ".bib" {
		if _, err := os.Stat(path); err != nil {
			return "", missingFile(id, path)
		}
		return id, nil
	}
	data, err := r.readRaw(id, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (r *Resolver) sectionList(ids []string, tmpl PathTemplate, field, owner string, stack loadStack) ([]ir.Section, error) {
	if err := checkUnique(ids, field, "", owner); err != nil {
		return nil, err
	}
	out := make([]ir.Section, 0, len(ids))
	for _, id := range ids {
		sec, err := r.section(id, tmpl, stack)
		if err != nil {
			return nil, err
		}
		out = append(out, sec)
	}
	return out, nil
}

func (r *Resolver) glossaryList(ids []string, owner string, stack loadStack) ([]ir.GlossaryTerm, error) {
	if err := checkUnique(ids, "glossary", "", owner); err != nil {
		return nil, err
	}
	out := make([]ir.GlossaryTerm, 0, len(ids))
	for _, id := range ids {
		term, err := r.glossaryTerm(id, r.layout.Glossary, stack)
		if err != nil {
			return nil, err
		}
		out = append(out, term)
	}
	return out, nil
}

func (r *Resolver) referenceList(ids []string, owner string, stack loadStack) ([]string, error) {
	if err := checkUnique(ids, "references", "", owner); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		ref, err := r.unstructured(id, r.layout.Reference, stack)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, nil
}

// markdown returns text, or the contents of the file it includes.
func (r *Resolver) markdown(text, owner string, stack loadStack) (string, error) {
	if !strings.HasPrefix(text, includePrefix) {
		return text, nil
	}
	name := text[len(includePrefix):]
	path := filepath.Join(filepath.Dir(owner), filepath.FromSlash(name)+".md")
	if _, err := stack.push(name, path); err != nil {
		return "", err
	}
	data, err := r.readRaw(name, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decode reads path, validates it against shape and decodes it into out.
func (r *Resolver) decode(id, path string, shape schema.Shape, out any) error {
	data, err := r.readValidated(id, path, shape)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return schemaViolation(id, path, err.Error())
	}
	return nil
}

func (r *Resolver) readValidated(id, path string, shape schema.Shape) ([]byte, error) {
	key := cacheKey{path: path, shape: shape}
	if data, ok := r.cached(key); ok {
		return data, nil
	}

	data, err := readFile(id, path)
	if err != nil {
		return nil, err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, schemaViolation(id, path, err.Error())
	}
	value, err := textValue(&node, false)
	if err != nil {
		return nil, schemaViolation(id, path, err.Error())
	}
	if err := r.validator.Validate(shape, path, value); err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			return nil, schemaViolation(id, path, verr.Detail)
		}
		return nil, err
	}

	r.store(key, data)
	return data, nil
}

func (r *Resolver) readRaw(id, path string) ([]byte, error) {
	key := cacheKey{path: path}
	if data, ok := r.cached(key); ok {
		return data, nil
	}
	data, err := readFile(id, path)
	if err != nil {
		return nil, err
	}
	r.store(key, data)
	return data, nil
}

func (r *Resolver) cached(key cacheKey) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.cache[key]
	return data, ok
}

func (r *Resolver) store(key cacheKey, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[key] = data
}

func readFile(id, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, missingFile(id, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// checkUnique enforces set semantics on an identifier list.
func checkUnique(ids []string, field, id, path string) error {
	seen := make(map[string]bool, len(ids))
	for _, v := range ids {
		if seen[v] {
			return schemaViolation(id, path, fmt.Sprintf("%s: duplicate entry %q", field, v))
		}
		seen[v] = true
	}
	return nil
}

// loadStack is the chain of files currently being loaded.
type loadStack []string

// push returns a new stack with path on top, or a CyclicReference error if
// path is already being loaded.
func (s loadStack) push(id, path string) (loadStack, error) {
	for _, p := range s {
		if p == path {
			chain := append(append([]string{}, s...), path)
			return nil, &ReferenceError{
				Kind:   CyclicReference,
				ID:     id,
				Path:   path,
				Detail: strings.Join(chain, " -> "),
			}
		}
	}
	next := make(loadStack, len(s), len(s)+1)
	copy(next, s)
	return append(next, path), nil
}
