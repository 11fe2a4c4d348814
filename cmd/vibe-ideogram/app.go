package main

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/inodb/vibe-ideogram/internal/annotate"
	"github.com/inodb/vibe-ideogram/internal/config"
	"github.com/inodb/vibe-ideogram/internal/duckdb"
	"github.com/inodb/vibe-ideogram/internal/refseq"
	"github.com/inodb/vibe-ideogram/internal/resource"
)

// app wires the cache, builder and lookup backend from configuration.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	cache   *resource.Cache
	builder *refseq.Builder
}

func newApp(cfg config.Config, logger *zap.Logger, progress io.Writer) *app {
	cache := resource.New(cfg.Cache.Dir)
	cache.SetLogger(logger)
	cache.SetProgress(progress)

	builder := refseq.NewBuilder(cache, refseq.Config{
		TablePath:      cfg.TablePath(),
		GeneInfoURL:    cfg.RefSeq.GeneInfoURL,
		Gene2RefSeqURL: cfg.RefSeq.Gene2RefSeqURL,
		Filter:         cfg.Filter(),
	})
	builder.SetLogger(logger)
	builder.SetProgress(progress)

	return &app{
		cfg:     cfg,
		logger:  logger,
		cache:   cache,
		builder: builder,
	}
}

// openIndex opens the DuckDB index in the cache directory.
func (a *app) openIndex() (*duckdb.Source, error) {
	store, err := duckdb.Open(a.cache.Join(duckdb.IndexName))
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	src := duckdb.NewSource(store, a.builder)
	src.SetLogger(a.logger)
	return src, nil
}

// source returns the configured lookup backend and a function releasing it.
func (a *app) source() (annotate.Source, func(), error) {
	switch a.cfg.Lookup.Backend {
	case config.BackendDuckDB:
		src, err := a.openIndex()
		if err != nil {
			return nil, nil, err
		}
		return src, func() { src.Store().Close() }, nil
	default:
		src := annotate.NewTableSource(a.builder)
		src.SetLogger(a.logger)
		return src, func() {}, nil
	}
}
