// Package loader assembles one Product Family Specification from its source
// folder, and discovers the specifications available under an input root.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/pfsc/internal/ir"
	"github.com/roach88/pfsc/internal/resolver"
)

// Loader loads specifications through a Resolver.
type Loader struct {
	resolver *resolver.Resolver
	logger   *zap.Logger
}

// New creates a Loader. A nil logger disables logging.
func New(r *resolver.Resolver, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{resolver: r, logger: logger}
}

// Resolver returns the underlying resolver.
func (l *Loader) Resolver() *resolver.Resolver {
	return l.resolver
}

// LoadSpecification loads the document, author list and requirement
// categories of specification id into one tree.
//
// The specification's id is always the folder name, whatever the document
// file declares.
func (l *Loader) LoadSpecification(id string) (*ir.Specification, error) {
	layout := l.resolver.Layout()
	dir := l.resolver.Path(layout.SpecDir, id)

	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return nil, &resolver.ReferenceError{Kind: resolver.MissingDirectory, ID: id, Path: dir}
	}
	if err != nil {
		return nil, fmt.Errorf("accessing %s: %w", dir, err)
	}

	spec, err := l.resolver.LoadDocument(filepath.Join(dir, layout.Document))
	if err != nil {
		return nil, err
	}
	spec.ID = id

	if spec.Authors, err = l.resolver.LoadAuthors(filepath.Join(dir, layout.Authors)); err != nil {
		return nil, err
	}
	if spec.Requirements, err = l.resolver.LoadCategories(filepath.Join(dir, layout.Requirements)); err != nil {
		return nil, err
	}

	l.logger.Debug("Loaded specification",
		zap.String("id", id),
		zap.Int("categories", len(spec.Requirements)))
	return spec, nil
}

// LoadAll loads several specifications concurrently. The result is in the
// order of ids regardless of completion order. When several fail, the error
// of the earliest id is returned.
func (l *Loader) LoadAll(ctx context.Context, ids []string) ([]*ir.Specification, error) {
	specs := make([]*ir.Specification, len(ids))
	errs := make([]error, len(ids))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			specs[i], errs[i] = l.LoadSpecification(id)
			return nil
		})
	}
	_ = g.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return specs, nil
}

// Discover returns the ids of every specification under root, sorted.
// A specification is a SpecDir folder that contains a document file.
func Discover(root string, layout resolver.Layout) ([]string, error) {
	tmpl := string(layout.SpecDir)
	idx := strings.Index(tmpl, "{id}")
	if idx < 0 {
		return nil, fmt.Errorf("spec_dir template %q has no {id} placeholder", tmpl)
	}
	prefix := tmpl[:idx]
	suffix := tmpl[idx+len("{id}"):] + "/" + layout.Document
	pattern := prefix + "*" + suffix

	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(m, prefix), suffix))
	}
	sort.Strings(ids)
	return ids, nil
}
