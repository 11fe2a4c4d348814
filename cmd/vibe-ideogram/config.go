package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inodb/vibe-ideogram/internal/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-ideogram configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.vibe-ideogram.yaml.",
		Example: `  vibe-ideogram config                                  # show effective config
  vibe-ideogram config set lookup.backend duckdb        # query the DuckDB index
  vibe-ideogram config get refseq.assembly              # get a value`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yaml.Marshal(opts.v.AllSettings())
			if err != nil {
				return fmt.Errorf("marshaling config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.AddCommand(newConfigSetCmd(opts))
	cmd.AddCommand(newConfigGetCmd(opts))

	return cmd
}

func newConfigSetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if !slices.Contains(opts.v.AllKeys(), key) {
				return &usageError{fmt.Errorf("unknown config key %q", key)}
			}

			cfgFile := opts.v.ConfigFileUsed()
			if cfgFile == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				cfgFile = p
			}

			// Only keys already in the file are rewritten; defaults and
			// environment overrides stay out of it.
			file := viper.New()
			file.SetConfigFile(cfgFile)
			file.SetConfigType("yaml")
			if _, err := os.Stat(cfgFile); err == nil {
				if err := file.ReadInConfig(); err != nil {
					return fmt.Errorf("reading config: %w", err)
				}
			}
			file.Set(key, value)

			// Reject values that would make every later command fail.
			probe := config.New()
			if err := probe.MergeConfigMap(file.AllSettings()); err != nil {
				return err
			}
			if _, err := config.Load(probe); err != nil {
				return &usageError{err}
			}

			if err := file.WriteConfigAs(cfgFile); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, cfgFile)
			return nil
		},
	}
}

func newConfigGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			val := opts.v.Get(args[0])
			if val == nil {
				return fmt.Errorf("key %q is not set", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), val)
			return nil
		},
	}
}
