package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-ideogram/internal/refseq"
)

func newBuildCmd(opts *rootOptions) *cobra.Command {
	var (
		forceDownload bool
		forceExtract  bool
		cleanup       bool
		index         bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the RefSeq gene table from scratch",
		Long: `Download NCBI gene_info and gene2refseq, keep human rows on the GRCh38
primary assembly, and write the sorted gene table to the cache directory.

gene2refseq is over 1GB compressed and has tens of millions of rows; a full
build takes several minutes. By default the download is deleted afterwards.`,
		Example: `  vibe-ideogram build
  vibe-ideogram build --force-download=false --cleanup=false
  vibe-ideogram build --index`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(opts.cfg, opts.logger, cmd.ErrOrStderr())

			path, err := a.builder.EnsureHumanRefSeq(cmd.Context(), refseq.Options{
				ForceExtract:  forceExtract,
				ForceDownload: forceDownload,
				Cleanup:       cleanup,
			})
			if err != nil {
				return fmt.Errorf("build refseq table: %w", err)
			}

			if index {
				if err := refreshIndex(cmd, a, true); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&forceDownload, "force-download", true, "download source files even if cached")
	cmd.Flags().BoolVar(&forceExtract, "force-extract", true, "rebuild the table even if it exists")
	cmd.Flags().BoolVar(&cleanup, "cleanup", true, "delete the gene2refseq download after building")
	cmd.Flags().BoolVar(&index, "index", false, "also rebuild the DuckDB lookup index")

	return cmd
}
