// Package schema holds the expected shapes of pfsc source files and
// validates decoded YAML against them.
//
// Shapes are CUE definitions embedded from schema.cue. Definitions are
// closed, so unknown keys are rejected the same way missing required keys
// and wrongly typed values are.
package schema

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// Shape names a CUE definition in schema.cue.
type Shape string

const (
	Document     Shape = "#Document"
	Authors      Shape = "#Authors"
	Requirements Shape = "#Requirements"
	Section      Shape = "#Section"
	Glossary     Shape = "#Glossary"
	Requirement  Shape = "#Requirement"
)

// ValidationError reports a value that does not match its expected shape.
type ValidationError struct {
	Shape  Shape
	File   string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: does not match %s: %s", e.File, e.Shape, e.Detail)
	}
	return fmt.Sprintf("does not match %s: %s", e.Shape, e.Detail)
}

// Validator validates decoded data against the embedded shapes.
//
// Thread-safety: a cue.Context is not safe for concurrent use, so all
// operations are serialized through an internal mutex.
type Validator struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &Validator{ctx: ctx, schema: v}, nil
}

// MustNew is like New but panics if the embedded schema does not compile.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks data (as produced by yaml.Unmarshal into any) against
// shape. file is only used for error context.
func (v *Validator) Validate(shape Shape, file string, data any) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	def := v.schema.LookupPath(cue.ParsePath(string(shape)))
	if !def.Exists() {
		return fmt.Errorf("unknown shape %s", shape)
	}

	value := v.ctx.Encode(data)
	if err := value.Err(); err != nil {
		return &ValidationError{Shape: shape, File: file, Detail: formatCUEError(err)}
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Shape: shape, File: file, Detail: formatCUEError(err)}
	}
	return nil
}

// formatCUEError flattens a CUE error list into one human-readable line.
func formatCUEError(err error) string {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	msgs := make([]string, 0, len(errs))
	seen := make(map[string]bool)
	for _, e := range errs {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if path := e.Path(); len(path) > 0 {
			msg = strings.Join(path, ".") + ": " + msg
		}
		if seen[msg] {
			continue
		}
		seen[msg] = true
		msgs = append(msgs, msg)
	}
	return strings.Join(msgs, "; ")
}
