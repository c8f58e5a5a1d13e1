package compiler

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/pfsc/internal/ir"
)

// UnmetDependencyError reports a dependency naming no requirement in the
// document.
type UnmetDependencyError struct {
	RequirementUID string
	DependencyID   string
}

func (e *UnmetDependencyError) Error() string {
	return fmt.Sprintf("unmet dependency: requirement %q depends on unknown requirement %q",
		e.RequirementUID, e.DependencyID)
}

// AssignUIDs gives every requirement a document-unique UID derived from its
// category and identifier. Slug collisions get a numeric suffix in document
// order ("a.b", "a.b-2", ...).
func AssignUIDs(blocks []ir.CategoryBlock) {
	taken := make(map[string]bool)
	for _, block := range blocks {
		for _, req := range block.Requirements {
			base := ir.RequirementUID(block.Category.ID, req.ID)
			uid := base
			for n := 2; taken[uid]; n++ {
				uid = base + "-" + strconv.Itoa(n)
			}
			taken[uid] = true
			req.UID = uid
		}
	}
}

// ResolveDependencies assigns UIDs and rewrites every requirement's
// dependencies from raw identifiers to UIDs.
//
// A dependency is looked up in the requirement's own category first and then
// across the whole document, where the first declaration in document order
// wins. Citation markers "@<id>" in the description, threshold and goal are
// rewritten to "@<uid>" for each resolved dependency.
//
// Requirements are modified in place. The first dependency that cannot be
// found aborts resolution with an *UnmetDependencyError.
func ResolveDependencies(blocks []ir.CategoryBlock) error {
	AssignUIDs(blocks)

	global := make(map[string]string)
	local := make([]map[string]string, len(blocks))
	for i, block := range blocks {
		local[i] = make(map[string]string, len(block.Requirements))
		for _, req := range block.Requirements {
			if _, ok := local[i][req.ID]; !ok {
				local[i][req.ID] = req.UID
			}
			if _, ok := global[req.ID]; !ok {
				global[req.ID] = req.UID
			}
		}
	}

	for i, block := range blocks {
		for _, req := range block.Requirements {
			resolved := make([]string, 0, len(req.Dependencies))
			for _, dep := range req.Dependencies {
				uid, ok := local[i][dep]
				if !ok {
					uid, ok = global[dep]
				}
				if !ok {
					return &UnmetDependencyError{RequirementUID: req.UID, DependencyID: dep}
				}
				resolved = append(resolved, uid)
				rewriteRequirementCitations(req, dep, uid)
			}
			req.Dependencies = resolved
		}
	}
	return nil
}

func rewriteRequirementCitations(req *ir.Requirement, id, uid string) {
	req.Description = RewriteCitations(req.Description, id, uid)
	for _, part := range []*ir.Part{req.Threshold, req.Goal} {
		if part == nil {
			continue
		}
		part.Description = RewriteCitations(part.Description, id, uid)
		for i, note := range part.Notes {
			part.Notes[i] = RewriteCitations(note, id, uid)
		}
	}
}

// RewriteCitations replaces citation markers "@id" in text with "@uid".
//
// A marker only matches as a whole token: the character before "@" must not
// be an identifier character, and the marker must not continue into a longer
// identifier. A trailing "." ends the marker unless another identifier
// character follows it, so "see @a." matches but "@a.b" does not.
func RewriteCitations(text, id, uid string) string {
	marker := "@" + id
	if id == "" || !strings.Contains(text, marker) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	pos := 0
	for {
		i := strings.Index(text[pos:], marker)
		if i < 0 {
			b.WriteString(text[pos:])
			break
		}
		start := pos + i
		end := start + len(marker)
		b.WriteString(text[pos:start])
		if citationBoundary(text, start, end) {
			b.WriteString("@")
			b.WriteString(uid)
		} else {
			b.WriteString(marker)
		}
		pos = end
	}
	return b.String()
}

func citationBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isIDRune(r) {
			return false
		}
	}
	if end == len(text) {
		return true
	}
	r, size := utf8.DecodeRuneInString(text[end:])
	if r == '.' {
		next, _ := utf8.DecodeRuneInString(text[end+size:])
		return end+size == len(text) || !isIDRune(next)
	}
	return !isIDRune(r)
}

func isIDRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}
