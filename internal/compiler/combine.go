package compiler

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/pfsc/internal/ir"
)

// Combine merges several specifications into one combined specification.
//
// Scalars are joined: identifiers with "_", titles with " / ". Introduction
// sections, annexes and glossary terms keep their first occurrence. Authors
// sharing a name and country are merged with their members unioned.
// Requirement categories appear in first-seen order and their requirements
// are ordered by MergeOrder; each combined requirement is a copy of its
// first declaration whose AppliesTo lists every source it came from.
//
// When a category's source orderings conflict, a warning is logged and the
// first-seen order is used. A nil logger discards the warning.
func Combine(specs []*ir.Specification, logger *zap.Logger) *ir.Specification {
	if logger == nil {
		logger = zap.NewNop()
	}

	ids := make([]string, len(specs))
	titles := make([]string, len(specs))
	versions := newOrderedSet[string]()
	types := newOrderedSet[string]()
	scopes := newOrderedSet[string]()
	for i, s := range specs {
		ids[i] = s.ID
		titles[i] = s.Title
		if s.Version != "" {
			versions.add(s.Version)
		}
		types.add(s.Type)
		if strings.TrimSpace(s.AppliesTo) != "" {
			scopes.add(s.AppliesTo)
		}
	}

	combined := &ir.Specification{
		ID:        strings.Join(ids, "_"),
		Title:     strings.Join(titles, " / "),
		Version:   strings.Join(versions.items(), ", "),
		Type:      ir.TypeFusion,
		AppliesTo: strings.Join(scopes.items(), "\n\n"),
	}
	if t := types.items(); len(t) == 1 {
		combined.Type = t[0]
	}

	combined.Introduction = firstSections(specs, func(s *ir.Specification) []ir.Section { return s.Introduction })
	combined.Annexes = firstSections(specs, func(s *ir.Specification) []ir.Section { return s.Annexes })
	combined.Glossary = combineGlossary(specs)
	combined.References = combineReferences(specs)
	combined.Authors = combineAuthors(specs)
	combined.Requirements = combineRequirements(specs, logger)
	return combined
}

func firstSections(specs []*ir.Specification, pick func(*ir.Specification) []ir.Section) []ir.Section {
	m := newOrderedMap[string, ir.Section]()
	for _, s := range specs {
		for _, sec := range pick(s) {
			m.putIfAbsent(sec.ID, sec)
		}
	}
	return m.values()
}

func combineGlossary(specs []*ir.Specification) []ir.GlossaryTerm {
	m := newOrderedMap[string, ir.GlossaryTerm]()
	for _, s := range specs {
		for _, term := range s.Glossary {
			m.putIfAbsent(GlossaryKey(term.Term), term)
		}
	}
	return m.values()
}

func combineReferences(specs []*ir.Specification) []string {
	set := newOrderedSet[string]()
	for _, s := range specs {
		set.add(s.References...)
	}
	return set.items()
}

type authorKey struct {
	name, country string
}

func combineAuthors(specs []*ir.Specification) []ir.Author {
	m := newOrderedMap[authorKey, ir.Author]()
	members := make(map[authorKey]orderedSet[string])
	for _, s := range specs {
		for _, a := range s.Authors {
			key := authorKey{a.Name, a.Country}
			if m.putIfAbsent(key, ir.Author{Name: a.Name, Country: a.Country}) {
				members[key] = newOrderedSet[string]()
			}
			members[key].add(a.Members...)
		}
	}

	out := m.values()
	for i := range out {
		out[i].Members = members[authorKey{out[i].Name, out[i].Country}].items()
	}
	return out
}

// categoryMerge accumulates one requirement category across sources.
type categoryMerge struct {
	category ir.Section
	sources  [][]Item
	records  *orderedMap[string, *ir.Requirement]
}

func combineRequirements(specs []*ir.Specification, logger *zap.Logger) []ir.CategoryBlock {
	categories := newOrderedMap[string, *categoryMerge]()
	for _, s := range specs {
		for _, block := range s.Requirements {
			cm, ok := categories.get(block.Category.ID)
			if !ok {
				cm = &categoryMerge{category: block.Category, records: newOrderedMap[string, *ir.Requirement]()}
				categories.set(block.Category.ID, cm)
			}

			items := make([]Item, 0, len(block.Requirements))
			for _, req := range block.Requirements {
				items = append(items, Item{ID: req.ID, Title: req.Title})
				rec, ok := cm.records.get(req.ID)
				if !ok {
					rec = req.Clone()
					rec.AppliesTo = []string{}
					cm.records.set(req.ID, rec)
				}
				if !slices.Contains(rec.AppliesTo, s.ID) {
					rec.AppliesTo = append(rec.AppliesTo, s.ID)
				}
			}
			cm.sources = append(cm.sources, items)
		}
	}

	blocks := make([]ir.CategoryBlock, 0, len(categories.keys))
	for _, cm := range categories.values() {
		result := MergeOrder(cm.sources)
		if result.Degenerate {
			logger.Warn("conflicting requirement order, keeping first-seen order",
				zap.String("category", cm.category.ID),
				zap.String("cycle", formatCycle(result.Cycle)),
				zap.Strings("order", result.IDs),
			)
		}

		reqs := make([]*ir.Requirement, 0, len(result.IDs))
		for _, id := range result.IDs {
			rec, _ := cm.records.get(id)
			reqs = append(reqs, rec)
		}
		blocks = append(blocks, ir.CategoryBlock{Category: cm.category, Requirements: reqs})
	}
	return blocks
}
