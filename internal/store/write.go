package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/pfsc/internal/ir"
)

// Build is one recorded compile.
type Build struct {
	ID               string   `json:"id"`
	Seq              int64    `json:"seq"`
	DocumentID       string   `json:"document_id"`
	Sources          []string `json:"sources"`
	ContentHash      string   `json:"content_hash"`
	RequirementCount int      `json:"requirement_count"`
	Editable         bool     `json:"editable"`
}

// RecordBuild appends a build of doc to the history.
//
// When the latest recorded build of the same document has the same content
// hash, nothing is written and that build is returned with inserted=false.
// The sequence number is the next value of the database-wide logical clock.
func (s *Store) RecordBuild(ctx context.Context, doc *ir.Document, gen IDGenerator) (build Build, inserted bool, err error) {
	hash, err := ir.DocumentHash(doc)
	if err != nil {
		return Build{}, false, fmt.Errorf("record build: %w", err)
	}
	sources, err := marshalSources(doc.Sources)
	if err != nil {
		return Build{}, false, fmt.Errorf("record build: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Build{}, false, fmt.Errorf("record build: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	latest, err := scanBuild(tx.QueryRowContext(ctx, `
		SELECT id, seq, document_id, sources, content_hash, requirement_count, editable
		FROM builds
		WHERE document_id = ?
		ORDER BY seq DESC, id DESC
		LIMIT 1
	`, doc.ID))
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return Build{}, false, fmt.Errorf("record build: %w", err)
	case latest.ContentHash == hash:
		return latest, false, nil
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM builds`).Scan(&seq); err != nil {
		return Build{}, false, fmt.Errorf("record build: next seq: %w", err)
	}

	build = Build{
		ID:               gen.Generate(),
		Seq:              seq,
		DocumentID:       doc.ID,
		Sources:          append([]string{}, doc.Sources...),
		ContentHash:      hash,
		RequirementCount: doc.RequirementCount(),
		Editable:         doc.Editable,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO builds
		(id, seq, document_id, sources, content_hash, requirement_count, editable)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		build.ID,
		build.Seq,
		build.DocumentID,
		sources,
		build.ContentHash,
		build.RequirementCount,
		build.Editable,
	)
	if err != nil {
		return Build{}, false, fmt.Errorf("record build: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Build{}, false, fmt.Errorf("record build: commit: %w", err)
	}
	return build, true, nil
}
