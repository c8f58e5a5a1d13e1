package compiler

import (
	"golang.org/x/text/cases"

	"github.com/roach88/pfsc/internal/ir"
)

// GlossaryKey is the identity of a glossary term: its case-folded text.
// "Pixel" and "pixel" are the same term.
func GlossaryKey(term string) string {
	// Casers carry state and are not safe for concurrent use.
	return cases.Fold().String(term)
}

// BubbleUp collects every glossary term and reference cited anywhere in spec
// into the root lists. Glossary terms are deduplicated by GlossaryKey with
// the first occurrence kept; references are a set in first-seen order.
//
// The walk visits the root lists first, then introduction sections, annexes,
// and finally each requirement category followed by its requirements. Nested
// lists are left in place. spec is modified and returned.
func BubbleUp(spec *ir.Specification) *ir.Specification {
	glossary := newOrderedMap[string, ir.GlossaryTerm]()
	references := newOrderedSet[string]()

	add := func(terms []ir.GlossaryTerm, refs []string) {
		for _, term := range terms {
			glossary.putIfAbsent(GlossaryKey(term.Term), term)
		}
		references.add(refs...)
	}

	add(spec.Glossary, spec.References)
	for _, s := range spec.Introduction {
		add(s.Glossary, s.References)
	}
	for _, s := range spec.Annexes {
		add(s.Glossary, s.References)
	}
	for _, block := range spec.Requirements {
		add(block.Category.Glossary, block.Category.References)
		for _, req := range block.Requirements {
			add(req.Glossary, req.References)
		}
	}

	spec.Glossary = glossary.values()
	spec.References = references.items()
	return spec
}
