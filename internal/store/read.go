package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/pfsc/internal/ir"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBuild(row rowScanner) (Build, error) {
	var (
		b       Build
		sources string
	)
	if err := row.Scan(&b.ID, &b.Seq, &b.DocumentID, &sources, &b.ContentHash, &b.RequirementCount, &b.Editable); err != nil {
		return Build{}, err
	}
	ids, err := unmarshalSources(sources)
	if err != nil {
		return Build{}, err
	}
	b.Sources = ids
	return b, nil
}

// History returns the recorded builds of documentID, oldest first.
// An empty documentID returns every build.
//
// Returns an empty slice (not nil) if nothing was recorded.
func (s *Store) History(ctx context.Context, documentID string) ([]Build, error) {
	query := `
		SELECT id, seq, document_id, sources, content_hash, requirement_count, editable
		FROM builds`
	var args []any
	if documentID != "" {
		query += ` WHERE document_id = ?`
		args = append(args, documentID)
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	builds := []Build{}
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return builds, nil
}

// HistoryText renders builds as the Markdown list placed in a document's
// history field, newest first. No builds yields ir.HistoryPlaceholder.
func HistoryText(builds []Build) string {
	if len(builds) == 0 {
		return ir.HistoryPlaceholder
	}
	lines := make([]string, 0, len(builds))
	for i := len(builds) - 1; i >= 0; i-- {
		b := builds[i]
		lines = append(lines, fmt.Sprintf("- Build %d (%s): %d requirements from %s, content %s",
			b.Seq, b.ID, b.RequirementCount, strings.Join(b.Sources, ", "), shortHash(b.ContentHash)))
	}
	return strings.Join(lines, "\n")
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
