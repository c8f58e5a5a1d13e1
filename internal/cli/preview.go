package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pfsc/internal/render"
)

// PreviewOptions holds flags for the preview command.
type PreviewOptions struct {
	*RootOptions
	Editable bool
	Style    string // glamour style name or path
	Width    int
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PreviewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "preview <pfs>...",
		Short: "Render the compiled Markdown in the terminal",
		Long: `Compile one or more PFS through the layout's Markdown template and print
the result styled for the terminal. Nothing is written to disk.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Editable, "editable", "e", false, "render as an editable draft")
	cmd.Flags().StringVar(&opts.Style, "style", "", "glamour style (dark, light, notty, or a JSON style file)")
	cmd.Flags().IntVar(&opts.Width, "width", render.DefaultWidth, "word-wrap width")

	return cmd
}

func runPreview(ctx context.Context, opts *PreviewOptions, ids []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	p, err := openProject(opts.Input, opts.logger())
	if err != nil {
		return formatter.Fail(err)
	}
	out, err := p.build(ctx, ids, buildOptions{Editable: opts.Editable})
	if err != nil {
		return formatter.Fail(err)
	}
	if out.Markdown == nil {
		return formatter.Fail(&ExitError{
			Code:    ExitFailure,
			ErrCode: ErrCodeTemplate,
			Message: fmt.Sprintf("no Markdown template at %s", p.templatePath()),
		})
	}

	styled, err := render.Preview(out.Markdown, opts.Style, opts.Width)
	if err != nil {
		return formatter.Fail(commandError(ErrCodeGeneric, "render preview", err))
	}
	fmt.Fprint(formatter.Writer, styled)
	return nil
}
