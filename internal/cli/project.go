package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/roach88/pfsc/internal/compiler"
	"github.com/roach88/pfsc/internal/ir"
	"github.com/roach88/pfsc/internal/loader"
	"github.com/roach88/pfsc/internal/render"
	"github.com/roach88/pfsc/internal/resolver"
	"github.com/roach88/pfsc/internal/schema"
	"github.com/roach88/pfsc/internal/store"
)

// project is an input root opened with its layout.
type project struct {
	root      string
	layout    resolver.Layout
	validator *schema.Validator
	logger    *zap.Logger
}

func openProject(root string, logger *zap.Logger) (*project, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, commandError(ErrCodeNotFound, fmt.Sprintf("input root not found: %s", root), nil)
	}
	layout, err := resolver.LoadLayout(root)
	if err != nil {
		return nil, err
	}
	validator, err := schema.New()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return &project{root: root, layout: layout, validator: validator, logger: logger}, nil
}

// loader returns a loader with a fresh resolver, so edits made since the
// last build are picked up.
func (p *project) loader() *loader.Loader {
	return loader.New(resolver.New(p.root, p.layout, p.validator), p.logger)
}

// discover lists the PFS ids under the root.
func (p *project) discover() ([]string, error) {
	ids, err := loader.Discover(p.root, p.layout)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, commandError(ErrCodeNoSpecs, fmt.Sprintf("no specification found under %s", p.root), nil)
	}
	return ids, nil
}

func (p *project) templatePath() string {
	return filepath.Join(p.root, filepath.FromSlash(p.layout.Template))
}

// buildOptions configures one build.
type buildOptions struct {
	Editable bool
	History  *store.Store // nil leaves the history placeholder
}

// artifacts are the outputs of a successful build, held in memory until
// every one of them has been produced.
type artifacts struct {
	Document     *ir.Document
	JSON         []byte
	Bibliography []byte
	Markdown     []byte // nil without a template
}

// build compiles ids into every output. Nothing is written.
func (p *project) build(ctx context.Context, ids []string, opts buildOptions) (*artifacts, error) {
	l := p.loader()
	specs, err := l.LoadAll(ctx, ids)
	if err != nil {
		return nil, err
	}

	doc, err := compiler.Compile(specs, compiler.Options{
		Editable: opts.Editable,
		Logger:   p.logger,
	})
	if err != nil {
		return nil, err
	}

	if opts.History != nil {
		prior, err := opts.History.History(ctx, doc.ID)
		if err != nil {
			return nil, commandError(ErrCodeHistory, "read build history", err)
		}
		doc.History = store.HistoryText(prior)
	}

	out := &artifacts{Document: doc}
	if out.JSON, err = json.MarshalIndent(doc, "", "  "); err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	if out.Bibliography, err = compiler.Bibliography(doc.References, l.Resolver()); err != nil {
		return nil, err
	}

	tmpl, err := render.LoadMarkdown(p.templatePath())
	if err != nil {
		return nil, err
	}
	if tmpl != nil {
		if out.Markdown, err = tmpl.Render(doc); err != nil {
			return nil, err
		}
	}

	p.logger.Debug("Compiled document",
		zap.String("id", doc.ID),
		zap.Strings("sources", doc.Sources),
		zap.Int("requirements", doc.RequirementCount()),
		zap.Int("references", len(doc.References)))
	return out, nil
}

// outputPaths returns the files written for output base path base.
func outputPaths(base string) (jsonPath, bibPath, mdPath string) {
	return base + ".json", base + ".bib", base + ".md"
}

// write stores a build next to base and returns the paths written. Every
// file is first written to a temp file beside its target; targets are only
// replaced once all of them have been written, so a failed write leaves no
// output behind.
func (a *artifacts) write(base string) ([]string, error) {
	jsonPath, bibPath, mdPath := outputPaths(base)
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, commandError(ErrCodeWriteFailed, "create output directory", err)
		}
	}

	files := []outputFile{{jsonPath, a.JSON}, {bibPath, a.Bibliography}}
	if a.Markdown != nil {
		files = append(files, outputFile{mdPath, a.Markdown})
	}

	staged := make([]string, 0, len(files))
	discard := func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}
	for _, f := range files {
		if info, err := os.Stat(f.path); err == nil && info.IsDir() {
			discard()
			return nil, commandError(ErrCodeWriteFailed, "write "+f.path, fmt.Errorf("%s is a directory", f.path))
		}
		tmp := f.path + ".tmp"
		if err := os.WriteFile(tmp, f.data, 0o644); err != nil {
			_ = os.Remove(tmp)
			discard()
			return nil, commandError(ErrCodeWriteFailed, "write "+f.path, err)
		}
		staged = append(staged, tmp)
	}

	written := make([]string, 0, len(files))
	for i, f := range files {
		if err := os.Rename(staged[i], f.path); err != nil {
			staged = staged[i:]
			discard()
			for _, done := range written {
				_ = os.Remove(done)
			}
			return nil, commandError(ErrCodeWriteFailed, "write "+f.path, err)
		}
		written = append(written, f.path)
	}
	return written, nil
}

type outputFile struct {
	path string
	data []byte
}

// record appends the build to the history, if one is open.
func (p *project) record(ctx context.Context, h *store.Store, doc *ir.Document) error {
	if h == nil {
		return nil
	}
	b, inserted, err := h.RecordBuild(ctx, doc, store.UUIDv7Generator{})
	if err != nil {
		return commandError(ErrCodeHistory, "record build", err)
	}
	p.logger.Debug("Recorded build",
		zap.String("id", b.ID),
		zap.Int64("seq", b.Seq),
		zap.Bool("inserted", inserted))
	return nil
}

// openHistory opens the history database at path. An empty path means no
// history.
func openHistory(ctx context.Context, path string) (*store.Store, error) {
	if path == "" {
		return nil, nil
	}
	s, err := store.Open(ctx, path)
	if err != nil {
		return nil, commandError(ErrCodeHistory, "open build history", err)
	}
	return s, nil
}
