package ir

import "slices"

// Document types form a closed set.
const (
	TypeOptical = "Optical"
	TypeSAR     = "SAR"
	TypeFusion  = "Fusion"
)

// ValidTypes defines the allowed specification types.
var ValidTypes = map[string]bool{
	TypeOptical: true,
	TypeSAR:     true,
	TypeFusion:  true,
}

// HistoryPlaceholder is rendered when no build history is available.
const HistoryPlaceholder = "Not available yet"

// Specification is one loaded Product Family Specification (PFS).
type Specification struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Version      string          `json:"version"`
	Type         string          `json:"type"`
	AppliesTo    string          `json:"applies_to"`
	Introduction []Section       `json:"introduction"`
	Glossary     []GlossaryTerm  `json:"glossary"`
	References   []string        `json:"references"`
	Annexes      []Section       `json:"annexes"`
	Authors      []Author        `json:"authors"`
	Requirements []CategoryBlock `json:"requirements"`
}

// Section is a narrative section (introduction, annex or category header).
type Section struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Glossary    []GlossaryTerm `json:"glossary"`
	References  []string       `json:"references"`
}

// CategoryBlock pairs a requirement category with its ordered requirements.
type CategoryBlock struct {
	Category     Section        `json:"category"`
	Requirements []*Requirement `json:"requirements"`
}

// Requirement is a single requirement record.
type Requirement struct {
	ID           string         `json:"id"`
	UID          string         `json:"uid,omitempty"` // derived at compile time
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Threshold    *Part          `json:"threshold"`
	Goal         *Part          `json:"goal"`
	Glossary     []GlossaryTerm `json:"glossary"`
	References   []string       `json:"references"`
	Dependencies []string       `json:"dependencies"`
	Metadata     map[string]any `json:"metadata"`
	Legacy       *Legacy        `json:"legacy,omitempty"`
	AppliesTo    []string       `json:"applies_to"` // source specification ids
}

// Part is the threshold or goal part of a requirement.
type Part struct {
	Description string   `json:"description"`
	Notes       []string `json:"notes"`
}

// Legacy maps a requirement to identifiers in earlier document generations.
type Legacy struct {
	Optical string `json:"optical,omitempty"`
	SAR     string `json:"sar,omitempty"`
}

// GlossaryTerm is a glossary entry. Term is the dedup key (case-folded).
type GlossaryTerm struct {
	ID          string `json:"id"`
	Term        string `json:"term"`
	Description string `json:"description"`
}

// Author is an author organization with its members.
type Author struct {
	Name    string   `json:"name"`
	Country string   `json:"country"`
	Members []string `json:"members"`
}

// Document is the fully resolved tree handed to renderers.
type Document struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Version      string          `json:"version"`
	Type         string          `json:"type"`
	AppliesTo    string          `json:"applies_to"`
	Introduction []Section       `json:"introduction"`
	Glossary     []GlossaryTerm  `json:"glossary"`
	References   []string        `json:"references"`
	Annexes      []Section       `json:"annexes"`
	Authors      []Author        `json:"authors"`
	Requirements []CategoryBlock `json:"requirements"`
	Editable     bool            `json:"editable"`
	History      string          `json:"history"`
	Sources      []string        `json:"sources"` // PFS ids this document was compiled from
}

// RequirementCount returns the number of requirements across all categories.
func (d *Document) RequirementCount() int {
	n := 0
	for _, block := range d.Requirements {
		n += len(block.Requirements)
	}
	return n
}

// Clone returns a copy of the requirement that can be rewritten without
// touching the original. Metadata and Legacy are shared.
func (r *Requirement) Clone() *Requirement {
	c := *r
	c.Threshold = r.Threshold.clone()
	c.Goal = r.Goal.clone()
	c.Glossary = slices.Clone(r.Glossary)
	c.References = slices.Clone(r.References)
	c.Dependencies = slices.Clone(r.Dependencies)
	c.AppliesTo = slices.Clone(r.AppliesTo)
	return &c
}

func (p *Part) clone() *Part {
	if p == nil {
		return nil
	}
	return &Part{Description: p.Description, Notes: slices.Clone(p.Notes)}
}
