package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/pfsc/internal/ir"
)

// marshalSources stores the source PFS ids as a canonical JSON array.
func marshalSources(ids []string) (string, error) {
	list := make([]any, len(ids))
	for i, id := range ids {
		list[i] = id
	}
	data, err := ir.MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("marshal sources: %w", err)
	}
	return string(data), nil
}

func unmarshalSources(data string) ([]string, error) {
	ids := []string{}
	if data == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, fmt.Errorf("unmarshal sources: %w", err)
	}
	return ids, nil
}
