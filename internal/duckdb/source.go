package duckdb

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/inodb/vibe-ideogram/internal/annotate"
	"github.com/inodb/vibe-ideogram/internal/refseq"
)

// Source wraps a Store as an annotate.Source. The index is reloaded from
// the derived table whenever the table has changed since the last load.
type Source struct {
	store  *Store
	tables annotate.TableEnsurer
	logger *zap.Logger
}

// NewSource creates a Source backed by store, reading tables from e.
func NewSource(store *Store, e annotate.TableEnsurer) *Source {
	return &Source{
		store:  store,
		tables: e,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for index messages.
func (s *Source) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Store returns the underlying DuckDB store.
func (s *Source) Store() *Store {
	return s.store
}

// Refresh makes sure the index reflects the current derived table. When
// force is set the index is reloaded even if it looks current.
func (s *Source) Refresh(ctx context.Context, force bool) error {
	path, err := s.tables.EnsureHumanRefSeq(ctx, refseq.Options{})
	if err != nil {
		return fmt.Errorf("ensure refseq table: %w", err)
	}

	fp, err := StatFile(path)
	if err != nil {
		return fmt.Errorf("stat refseq table: %w", err)
	}
	if !force && s.store.Fresh(ctx, fp) {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open refseq table: %w", err)
	}
	defer f.Close()

	n, err := s.store.LoadTable(ctx, bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("load refseq table: %w", err)
	}
	if err := s.store.writeMeta(ctx, fp); err != nil {
		return err
	}

	s.logger.Info("indexed refseq table",
		zap.String("table", path),
		zap.String("index", s.store.Path()),
		zap.Int64("genes", n))
	return nil
}

// Annotations implements annotate.Source.
func (s *Source) Annotations(ctx context.Context, symbols []string) ([]annotate.Annotation, error) {
	if err := s.Refresh(ctx, false); err != nil {
		return nil, err
	}

	anns, err := s.store.LookupSymbols(ctx, symbols)
	if err != nil {
		return nil, err
	}

	s.logger.Info("resolved annotations",
		zap.Int("symbols", len(symbols)),
		zap.Int("annotations", len(anns)))
	return anns, nil
}
