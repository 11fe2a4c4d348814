package main

import (
	"github.com/spf13/cobra"

	"github.com/inodb/vibe-ideogram/internal/output"
)

func newLookupCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "lookup <symbols...>",
		Short:   "Print chromosome coordinates for gene symbols",
		Example: `  vibe-ideogram lookup TP53 KRAS`,
		Args:    usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(opts.cfg, opts.logger, cmd.ErrOrStderr())
			src, release, err := a.source()
			if err != nil {
				return err
			}
			defer release()

			anns, err := src.Annotations(cmd.Context(), args)
			if err != nil {
				return err
			}
			return output.NewTabWriter(cmd.OutOrStdout()).WriteAll(anns)
		},
	}
}
