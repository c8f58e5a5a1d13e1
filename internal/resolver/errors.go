package resolver

import (
	"errors"
	"fmt"
)

// Kind categorizes reference errors.
type Kind string

const (
	// MissingDirectory indicates a specification folder does not exist.
	MissingDirectory Kind = "MISSING_DIRECTORY"

	// MissingFile indicates an identifier does not resolve to an existing file.
	MissingFile Kind = "MISSING_FILE"

	// SchemaViolation indicates a file does not match its expected shape.
	SchemaViolation Kind = "SCHEMA_VIOLATION"

	// CyclicReference indicates a file is reached again while it is still
	// being loaded.
	CyclicReference Kind = "CYCLIC_REFERENCE"
)

// ReferenceError reports an identifier that could not be resolved into a
// valid value. Path names the offending file so the caller can point at it.
type ReferenceError struct {
	Kind   Kind
	ID     string
	Path   string
	Detail string
}

// Error implements the error interface.
func (e *ReferenceError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Path)
	if e.ID != "" {
		msg = fmt.Sprintf("%s: %q at %s", e.Kind, e.ID, e.Path)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// IsKind reports whether err is a ReferenceError of the given kind.
// Uses errors.As to handle wrapped errors.
func IsKind(err error, kind Kind) bool {
	var re *ReferenceError
	if errors.As(err, &re) {
		return re.Kind == kind
	}
	return false
}

func missingFile(id, path string) *ReferenceError {
	return &ReferenceError{Kind: MissingFile, ID: id, Path: path}
}

func schemaViolation(id, path, detail string) *ReferenceError {
	return &ReferenceError{Kind: SchemaViolation, ID: id, Path: path, Detail: detail}
}
