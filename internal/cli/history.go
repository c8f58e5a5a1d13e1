package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <db> [document-id]",
		Short: "List recorded builds",
		Long: `List the builds recorded in a history database by compile --history,
oldest first. With a document id only builds of that document are listed.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			docID := ""
			if len(args) == 2 {
				docID = args[1]
			}
			return runHistory(cmd.Context(), rootOpts, args[0], docID, cmd)
		},
	}
}

func runHistory(ctx context.Context, opts *RootOptions, dbPath, docID string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	// Opening creates the database; a typo must not leave an empty file behind.
	if _, err := os.Stat(dbPath); err != nil {
		return formatter.Fail(commandError(ErrCodeHistory, "history database not found", err))
	}
	s, err := openHistory(ctx, dbPath)
	if err != nil {
		return formatter.Fail(err)
	}
	defer s.Close()

	builds, err := s.History(ctx, docID)
	if err != nil {
		return formatter.Fail(commandError(ErrCodeHistory, "read build history", err))
	}

	if formatter.Format == "json" {
		return formatter.Success(builds)
	}
	if len(builds) == 0 {
		fmt.Fprintln(formatter.Writer, "No builds recorded")
		return nil
	}
	for _, b := range builds {
		editable := ""
		if b.Editable {
			editable = " editable"
		}
		fmt.Fprintf(formatter.Writer, "%4d  %s  %-12s  %s  %d requirement(s) from %s%s\n",
			b.Seq, b.ID, b.DocumentID, shortHash(b.ContentHash), b.RequirementCount,
			strings.Join(b.Sources, ", "), editable)
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
