package compiler

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/pfsc/internal/ir"
)

// Options controls a compilation.
type Options struct {
	// Editable is copied into the document for renderers.
	Editable bool

	// History is the rendered build history. Empty means ir.HistoryPlaceholder.
	History string

	// Logger receives ordering warnings. Nil discards them.
	Logger *zap.Logger
}

// Compile turns loaded specifications into one fully resolved document.
//
// The pipeline is: structural validation, bubble-up of every specification,
// combination when more than one specification is given, dependency
// resolution, then flattening. The glossary of the result is sorted by
// GlossaryKey and the references are sorted.
//
// BubbleUp modifies the given specifications. Requirement records are copied
// before UIDs and dependencies are written, so the inputs keep their raw
// dependency identifiers. Nothing is returned on error.
func Compile(specs []*ir.Specification, opts Options) (*ir.Document, error) {
	if errs := Validate(specs); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	for _, spec := range specs {
		BubbleUp(spec)
	}

	var spec *ir.Specification
	if len(specs) == 1 {
		spec = single(specs[0])
	} else {
		spec = Combine(specs, opts.Logger)
	}

	if err := ResolveDependencies(spec.Requirements); err != nil {
		return nil, err
	}

	history := opts.History
	if history == "" {
		history = ir.HistoryPlaceholder
	}

	sources := make([]string, len(specs))
	for i, s := range specs {
		sources[i] = s.ID
	}

	return &ir.Document{
		ID:           spec.ID,
		Title:        spec.Title,
		Version:      spec.Version,
		Type:         spec.Type,
		AppliesTo:    spec.AppliesTo,
		Introduction: nonNil(spec.Introduction),
		Glossary:     SortGlossary(spec.Glossary),
		References:   sortedUnique(spec.References),
		Annexes:      nonNil(spec.Annexes),
		Authors:      nonNil(spec.Authors),
		Requirements: nonNil(spec.Requirements),
		Editable:     opts.Editable,
		History:      history,
		Sources:      sources,
	}, nil
}

// single copies the category blocks of spec so dependency resolution can
// write into them, and stamps each requirement with its source.
func single(spec *ir.Specification) *ir.Specification {
	out := *spec
	out.Requirements = make([]ir.CategoryBlock, len(spec.Requirements))
	for i, block := range spec.Requirements {
		reqs := make([]*ir.Requirement, len(block.Requirements))
		for j, req := range block.Requirements {
			c := req.Clone()
			c.AppliesTo = []string{spec.ID}
			reqs[j] = c
		}
		out.Requirements[i] = ir.CategoryBlock{Category: block.Category, Requirements: reqs}
	}
	return &out
}

// SortGlossary returns the terms ordered by GlossaryKey. Ties keep their
// input order.
func SortGlossary(terms []ir.GlossaryTerm) []ir.GlossaryTerm {
	out := slices.Clone(terms)
	if out == nil {
		out = []ir.GlossaryTerm{}
	}
	slices.SortStableFunc(out, func(a, b ir.GlossaryTerm) int {
		return strings.Compare(GlossaryKey(a.Term), GlossaryKey(b.Term))
	})
	return out
}

func sortedUnique(ids []string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		out = []string{}
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
