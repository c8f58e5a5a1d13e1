package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pfsc/internal/compiler"
	"github.com/roach88/pfsc/internal/loader"
	"github.com/roach88/pfsc/internal/render"
)

// PFSResult is the validation outcome of one PFS.
type PFSResult struct {
	ID    string `json:"id"`
	Valid bool   `json:"valid"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool        `json:"valid"`
	Results []PFSResult `json:"results"`
	// Template is the check of the Markdown template, nil when the layout
	// has none. Its ID is the template path.
	Template *PFSResult `json:"template,omitempty"`
}

// Failed returns the number of invalid PFS.
func (r ValidationResult) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.Valid {
			n++
		}
	}
	return n
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [pfs]...",
		Short: "Validate every PFS under the input root",
		Long: `Validate Product Family Specifications without writing output.

Each PFS is loaded on its own: every referenced file must exist and match its
expected shape, the structure must be consistent and every dependency must
resolve. Without arguments every PFS under the input root is checked. The
Markdown template, if present, must parse.`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(ctx context.Context, opts *RootOptions, ids []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	p, err := openProject(opts.Input, opts.logger())
	if err != nil {
		return formatter.Fail(err)
	}
	if len(ids) == 0 {
		if ids, err = p.discover(); err != nil {
			return formatter.Fail(err)
		}
	}
	formatter.VerboseLog("Validating %d PFS under %s", len(ids), p.root)

	result := validateAll(ctx, p, ids)
	result.Template = validateTemplate(p)
	if result.Template != nil && !result.Template.Valid {
		result.Valid = false
	}
	return outputValidation(formatter, result)
}

// validateAll checks each PFS independently; one failure does not stop the
// others.
func validateAll(ctx context.Context, p *project, ids []string) ValidationResult {
	result := ValidationResult{Valid: true, Results: make([]PFSResult, 0, len(ids))}
	l := p.loader()
	for _, id := range ids {
		res := PFSResult{ID: id, Valid: true}
		if err := validateOne(ctx, l, id); err != nil {
			code, _ := Classify(err)
			res = PFSResult{ID: id, Code: code, Error: err.Error()}
			result.Valid = false
		}
		result.Results = append(result.Results, res)
	}
	return result
}

func validateOne(ctx context.Context, l *loader.Loader, id string) error {
	specs, err := l.LoadAll(ctx, []string{id})
	if err != nil {
		return err
	}
	_, err = compiler.Compile(specs, compiler.Options{})
	return err
}

// validateTemplate parses the layout's Markdown template.
func validateTemplate(p *project) *PFSResult {
	path := p.templatePath()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	res := &PFSResult{ID: p.layout.Template, Valid: true}
	if _, err := render.LoadMarkdown(path); err != nil {
		code, _ := Classify(err)
		*res = PFSResult{ID: p.layout.Template, Code: code, Error: err.Error()}
	}
	return res
}

// outputValidation outputs the per-PFS results. Valid PFS are listed only
// in verbose mode.
func outputValidation(formatter *OutputFormatter, result ValidationResult) error {
	failed := result.Failed()
	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		results := result.Results
		if result.Template != nil {
			results = append(results[:len(results):len(results)], *result.Template)
		}
		for _, res := range results {
			if res.Valid {
				if formatter.Verbose {
					fmt.Fprintf(formatter.Writer, "OK    %s\n", res.ID)
				}
				continue
			}
			fmt.Fprintf(formatter.Writer, "FAIL  %s\n  %s: %s\n", res.ID, res.Code, res.Error)
		}
		if failed == 0 {
			fmt.Fprintf(formatter.Writer, "All %d PFS valid\n", len(result.Results))
		} else {
			fmt.Fprintf(formatter.Writer, "%d of %d PFS invalid\n", failed, len(result.Results))
		}
		if result.Template != nil && !result.Template.Valid {
			fmt.Fprintln(formatter.Writer, "Template invalid")
		}
	}

	if failed > 0 {
		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed for %d PFS", failed))
	}
	if !result.Valid {
		return NewExitError(ExitFailure, "template validation failed")
	}
	return nil
}
