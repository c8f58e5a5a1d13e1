package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/pfsc/internal/ir"
)

// createTestStore opens a fresh database in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestDocument builds a minimal compiled document.
func createTestDocument(id, description string, sources ...string) *ir.Document {
	return &ir.Document{
		ID:    id,
		Title: "Title of " + id,
		Type:  ir.TypeOptical,
		Requirements: []ir.CategoryBlock{{
			Category: ir.Section{ID: "general", Title: "General"},
			Requirements: []*ir.Requirement{
				{ID: "r1", UID: "general.r1", Title: "R1", Description: description},
				{ID: "r2", UID: "general.r2", Title: "R2"},
			},
		}},
		History: ir.HistoryPlaceholder,
		Sources: sources,
	}
}
