// Package config loads vibe-ideogram settings from ~/.vibe-ideogram.yaml,
// VIBE_IDEOGRAM_* environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/inodb/vibe-ideogram/internal/output"
	"github.com/inodb/vibe-ideogram/internal/refseq"
	"github.com/inodb/vibe-ideogram/internal/resource"
)

// FileName is the config file name in the user's home directory.
const FileName = ".vibe-ideogram.yaml"

// EnvPrefix prefixes environment overrides; dots in keys become underscores
// (cache.dir -> VIBE_IDEOGRAM_CACHE_DIR).
const EnvPrefix = "VIBE_IDEOGRAM"

// Lookup backends.
const (
	BackendTSV    = "tsv"
	BackendDuckDB = "duckdb"
)

// Config holds all settings.
type Config struct {
	Cache  CacheConfig  `mapstructure:"cache"`
	RefSeq RefSeqConfig `mapstructure:"refseq"`
	Lookup LookupConfig `mapstructure:"lookup"`
	Render RenderConfig `mapstructure:"render"`
}

// CacheConfig locates the download and table directory.
type CacheConfig struct {
	Dir string `mapstructure:"dir"`
}

// RefSeqConfig selects the source files and the rows kept from them.
type RefSeqConfig struct {
	Taxon          string `mapstructure:"taxon"`
	Assembly       string `mapstructure:"assembly"`
	GeneInfoURL    string `mapstructure:"gene_info_url"`
	Gene2RefSeqURL string `mapstructure:"gene2refseq_url"`
}

// LookupConfig selects how symbols are resolved.
type LookupConfig struct {
	Backend string `mapstructure:"backend"`
}

// RenderConfig sets display defaults for HTML output.
type RenderConfig struct {
	Container string `mapstructure:"container"`
	Title     string `mapstructure:"title"`
}

// Defaults returns the built-in configuration. The cache directory is left
// empty when the home directory cannot be determined.
func Defaults() Config {
	dir, _ := resource.DefaultDir()
	return Config{
		Cache: CacheConfig{Dir: dir},
		RefSeq: RefSeqConfig{
			Taxon:          refseq.HumanTaxon,
			Assembly:       refseq.PrimaryAssembly,
			GeneInfoURL:    refseq.GeneInfoURL,
			Gene2RefSeqURL: refseq.Gene2RefSeqURL,
		},
		Lookup: LookupConfig{Backend: BackendTSV},
		Render: RenderConfig{
			Container: output.DefaultHTMLContainer,
			Title:     output.DefaultTitle,
		},
	}
}

// New creates a viper instance with defaults and environment overrides
// registered. Defaults are set before reading so AutomaticEnv sees every key.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("refseq.taxon", d.RefSeq.Taxon)
	v.SetDefault("refseq.assembly", d.RefSeq.Assembly)
	v.SetDefault("refseq.gene_info_url", d.RefSeq.GeneInfoURL)
	v.SetDefault("refseq.gene2refseq_url", d.RefSeq.Gene2RefSeqURL)
	v.SetDefault("lookup.backend", d.Lookup.Backend)
	v.SetDefault("render.container", d.Render.Container)
	v.SetDefault("render.title", d.Render.Title)
	return v
}

// DefaultPath returns ~/.vibe-ideogram.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, FileName), nil
}

// ReadFile reads configPath into v, or the default file when configPath is
// empty. A missing default file is not an error; a missing explicit file is.
func ReadFile(v *viper.Viper, configPath string) error {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		p, err := DefaultPath()
		if err != nil {
			return nil
		}
		if _, err := os.Stat(p); err != nil {
			return nil
		}
		v.SetConfigFile(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			if configPath != "" {
				return fmt.Errorf("config file not found: %s", configPath)
			}
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load unmarshals and validates the settings in v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c Config) Validate() error {
	if c.Cache.Dir == "" {
		return errors.New("cache.dir is not set and the home directory is unknown")
	}
	switch c.Lookup.Backend {
	case BackendTSV, BackendDuckDB:
	default:
		return fmt.Errorf("lookup.backend must be %q or %q, got %q", BackendTSV, BackendDuckDB, c.Lookup.Backend)
	}
	if c.RefSeq.Taxon == "" || c.RefSeq.Assembly == "" {
		return errors.New("refseq.taxon and refseq.assembly must not be empty")
	}
	return nil
}

// TablePath returns the derived table location.
func (c Config) TablePath() string {
	return filepath.Join(c.Cache.Dir, refseq.TableName)
}

// Filter returns the row filter for the reference build.
func (c Config) Filter() refseq.Filter {
	return refseq.Filter{Taxon: c.RefSeq.Taxon, Assembly: c.RefSeq.Assembly}
}
