package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newIndexCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Rebuild the DuckDB lookup index from the RefSeq table",
		Long: `Load the RefSeq gene table into a DuckDB database in the cache directory.
With lookup.backend set to duckdb, lookups query the index instead of
scanning the table. The index is also refreshed automatically whenever the
table changes.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(opts.cfg, opts.logger, cmd.ErrOrStderr())
			return refreshIndex(cmd, a, true)
		},
	}
}

func refreshIndex(cmd *cobra.Command, a *app, force bool) error {
	src, err := a.openIndex()
	if err != nil {
		return err
	}
	defer src.Store().Close()

	if err := src.Refresh(cmd.Context(), force); err != nil {
		return fmt.Errorf("refresh index: %w", err)
	}

	n, err := src.Store().Count(cmd.Context())
	if err != nil {
		return err
	}
	a.logger.Info("index ready",
		zap.String("path", src.Store().Path()),
		zap.Int64("genes", n))
	return nil
}
