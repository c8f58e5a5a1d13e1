package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/pfsc/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrSpecIDEmpty            = "E101" // specification id is required
	ErrSpecTitleEmpty         = "E102" // specification title is required
	ErrInvalidSpecType        = "E103" // type outside the closed set
	ErrDuplicateCategory      = "E104" // category listed twice
	ErrDuplicateRequirement   = "E105" // requirement listed twice in a category
	ErrRequirementTitleEmpty  = "E106" // requirement title is required
	ErrDuplicateDependency    = "E107" // dependency listed twice
	ErrNoSpecifications       = "E108" // nothing to compile
	ErrDuplicateSpecification = "E109" // same PFS requested twice
	ErrDuplicateSectionID     = "E110" // introduction or annex listed twice
	ErrRequirementIDEmpty     = "E111" // requirement id is required
	ErrCategoryIDEmpty        = "E112" // category id is required
)

// ValidationError represents a structural validation error.
type ValidationError struct {
	Spec    string `json:"spec,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Spec != "" {
		return fmt.Sprintf("[%s] %s: %s: %s", e.Code, e.Spec, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors collects every error found by Validate.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the loaded specifications for structural problems the
// schema cannot express. Returns all errors found (does not fail-fast).
func Validate(specs []*ir.Specification) []ValidationError {
	if len(specs) == 0 {
		return []ValidationError{{
			Field:   "specifications",
			Message: "at least one specification is required",
			Code:    ErrNoSpecifications,
		}}
	}

	var errs []ValidationError
	seen := make(map[string]bool)
	for i, spec := range specs {
		if spec.ID != "" && seen[spec.ID] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("specifications[%d]", i),
				Message: fmt.Sprintf("specification %q requested more than once", spec.ID),
				Code:    ErrDuplicateSpecification,
			})
		}
		seen[spec.ID] = true
		errs = append(errs, validateSpecification(spec)...)
	}
	return errs
}

func validateSpecification(spec *ir.Specification) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{
			Spec:    spec.ID,
			Field:   field,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
		})
	}

	if strings.TrimSpace(spec.ID) == "" {
		add("id", ErrSpecIDEmpty, "id is required and must be non-empty")
	}
	if strings.TrimSpace(spec.Title) == "" {
		add("title", ErrSpecTitleEmpty, "title is required and must be non-empty")
	}
	if !ir.ValidTypes[spec.Type] {
		add("type", ErrInvalidSpecType, "invalid type %q, must be %q, %q or %q",
			spec.Type, ir.TypeOptical, ir.TypeSAR, ir.TypeFusion)
	}

	checkSections := func(name string, sections []ir.Section) {
		ids := make(map[string]bool)
		for i, s := range sections {
			if ids[s.ID] {
				add(fmt.Sprintf("%s[%d]", name, i), ErrDuplicateSectionID, "duplicate section %q", s.ID)
			}
			ids[s.ID] = true
		}
	}
	checkSections("introduction", spec.Introduction)
	checkSections("annexes", spec.Annexes)

	categories := make(map[string]bool)
	for i, block := range spec.Requirements {
		field := fmt.Sprintf("requirements[%d]", i)
		id := block.Category.ID
		if strings.TrimSpace(id) == "" {
			add(field+".category", ErrCategoryIDEmpty, "category id is required")
		} else if categories[id] {
			add(field+".category", ErrDuplicateCategory, "duplicate category %q", id)
		}
		categories[id] = true

		reqs := make(map[string]bool)
		for j, req := range block.Requirements {
			rfield := fmt.Sprintf("%s.requirements[%d]", field, j)
			if strings.TrimSpace(req.ID) == "" {
				add(rfield, ErrRequirementIDEmpty, "requirement id is required")
				continue
			}
			if reqs[req.ID] {
				add(rfield, ErrDuplicateRequirement, "duplicate requirement %q in category %q", req.ID, id)
			}
			reqs[req.ID] = true

			if strings.TrimSpace(req.Title) == "" {
				add(rfield+".title", ErrRequirementTitleEmpty, "requirement %q has no title", req.ID)
			}
			deps := make(map[string]bool)
			for _, dep := range req.Dependencies {
				if deps[dep] {
					add(rfield+".dependencies", ErrDuplicateDependency, "requirement %q lists dependency %q twice", req.ID, dep)
				}
				deps[dep] = true
			}
		}
	}
	return errs
}
