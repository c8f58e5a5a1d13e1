package compiler

import (
	"bytes"
	"fmt"
)

// ReferenceReader returns the raw bibliography entry for a reference id.
// *resolver.Resolver implements it.
type ReferenceReader interface {
	ReadReference(id string) ([]byte, error)
}

// Bibliography concatenates the raw entries of refs, in order, separated by
// a newline. refs is expected to be the sorted, deduplicated reference list
// of a compiled document.
func Bibliography(refs []string, r ReferenceReader) ([]byte, error) {
	entries := make([][]byte, 0, len(refs))
	for _, id := range refs {
		data, err := r.ReadReference(id)
		if err != nil {
			return nil, fmt.Errorf("bibliography: %w", err)
		}
		entries = append(entries, data)
	}
	return bytes.Join(entries, []byte("\n")), nil
}
