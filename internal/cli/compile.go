package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output   string // output base path; extensions are appended
	Editable bool
	History  string // build history database path
}

// CompileSummary is the result of a successful compile.
type CompileSummary struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Sources      []string `json:"sources"`
	Categories   int      `json:"categories"`
	Requirements int      `json:"requirements"`
	Glossary     int      `json:"glossary"`
	References   int      `json:"references"`
	Files        []string `json:"files"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <pfs>...",
		Short: "Compile one or more PFS into a resolved document",
		Long: `Compile one or more Product Family Specifications into one resolved
document.

Writes <output>.json (the resolved tree), <output>.bib (the bibliography) and,
when the layout's Markdown template exists, <output>.md. Several PFS are
combined into one document. Nothing is written unless every step succeeds.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output base path (default: the document id)")
	cmd.Flags().BoolVarP(&opts.Editable, "editable", "e", false, "mark the document as an editable draft")
	cmd.Flags().StringVar(&opts.History, "history", "", "build history database")

	return cmd
}

func runCompile(ctx context.Context, opts *CompileOptions, ids []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	p, err := openProject(opts.Input, opts.logger())
	if err != nil {
		return formatter.Fail(err)
	}

	history, err := openHistory(ctx, opts.History)
	if err != nil {
		return formatter.Fail(err)
	}
	if history != nil {
		defer history.Close()
	}

	formatter.VerboseLog("Compiling %v from %s", ids, p.root)
	out, err := p.build(ctx, ids, buildOptions{Editable: opts.Editable, History: history})
	if err != nil {
		return formatter.Fail(err)
	}

	base := opts.Output
	if base == "" {
		base = out.Document.ID
	}
	files, err := out.write(base)
	if err != nil {
		return formatter.Fail(err)
	}
	if err := p.record(ctx, history, out.Document); err != nil {
		return formatter.Fail(err)
	}

	return outputCompileSuccess(formatter, summarize(out, files))
}

func summarize(out *artifacts, files []string) CompileSummary {
	doc := out.Document
	return CompileSummary{
		ID:           doc.ID,
		Title:        doc.Title,
		Sources:      doc.Sources,
		Categories:   len(doc.Requirements),
		Requirements: doc.RequirementCount(),
		Glossary:     len(doc.Glossary),
		References:   len(doc.References),
		Files:        files,
	}
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, s CompileSummary) error {
	if formatter.Format == "json" {
		return formatter.Success(s)
	}

	fmt.Fprintf(formatter.Writer, "Compiled %s (%s) from %d PFS\n", s.ID, s.Title, len(s.Sources))
	fmt.Fprintf(formatter.Writer, "  %d requirement(s) in %d categories, %d glossary term(s), %d reference(s)\n",
		s.Requirements, s.Categories, s.Glossary, s.References)
	for _, f := range s.Files {
		fmt.Fprintf(formatter.Writer, "Wrote %s\n", f)
	}
	return nil
}
