// Package main provides the vibe-ideogram command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-ideogram/internal/config"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	// After the first interrupt, a second one kills the process.
	context.AfterFunc(ctx, stop)

	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		var ue *usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", root.Name())
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

// usageError marks errors caused by bad command-line input.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// usageArgs wraps an argument validator so its errors exit with ExitUsage.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return &usageError{err}
		}
		return nil
	}
}

// rootOptions carries state shared by all subcommands.
type rootOptions struct {
	cfgFile string
	verbose bool

	v      *viper.Viper
	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: config.New(), logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:   "vibe-ideogram",
		Short: "Draw gene locations on a human karyotype with Ideogram.js",
		Long: `vibe-ideogram resolves gene symbols to GRCh38 coordinates using NCBI RefSeq
and renders them as an Ideogram.js page or notebook script.

The first lookup downloads NCBI gene_info and gene2refseq and builds a
filtered table in ~/.vibe-ideogram/. Later runs reuse the table.

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (VIBE_IDEOGRAM_*, e.g. VIBE_IDEOGRAM_CACHE_DIR)
  3. Config file (~/.vibe-ideogram.yaml)
  4. Built-in defaults`,
		Example: `  # Build the RefSeq table (one-time setup, takes a few minutes)
  vibe-ideogram build

  # Write an HTML page for a few genes
  vibe-ideogram write TP53 KRAS BRCA1 -o genes.html

  # Print coordinates
  vibe-ideogram lookup TP53 KRAS`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "",
		"config file (default: ~/.vibe-ideogram.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"enable debug logging")
	cmd.PersistentFlags().String("cache-dir", "",
		"cache directory for downloads and the RefSeq table (default: ~/.vibe-ideogram)")
	cmd.PersistentFlags().String("backend", "",
		"lookup backend: tsv or duckdb")
	_ = opts.v.BindPFlag("cache.dir", cmd.PersistentFlags().Lookup("cache-dir"))
	_ = opts.v.BindPFlag("lookup.backend", cmd.PersistentFlags().Lookup("backend"))

	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err}
	})

	cmd.AddCommand(newBuildCmd(opts))
	cmd.AddCommand(newWriteCmd(opts))
	cmd.AddCommand(newLookupCmd(opts))
	cmd.AddCommand(newIndexCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))

	return cmd
}

// load reads configuration and sets up logging.
func (o *rootOptions) load(stderr io.Writer) error {
	if err := config.ReadFile(o.v, o.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(o.v)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.logger = newLogger(stderr, o.verbose)
	o.logger.Debug("loaded configuration",
		zap.String("config_file", o.v.ConfigFileUsed()),
		zap.String("cache_dir", cfg.Cache.Dir),
		zap.String("backend", cfg.Lookup.Backend))
	return nil
}
