package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List the PFS found under the input root",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			p, err := openProject(rootOpts.Input, rootOpts.logger())
			if err != nil {
				return formatter.Fail(err)
			}
			ids, err := p.discover()
			if err != nil {
				return formatter.Fail(err)
			}
			if formatter.Format == "json" {
				return formatter.Success(ids)
			}
			for _, id := range ids {
				fmt.Fprintln(formatter.Writer, id)
			}
			return nil
		},
	}
}
