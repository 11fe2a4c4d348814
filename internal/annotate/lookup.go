package annotate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/inodb/vibe-ideogram/internal/refseq"
)

// TableSource answers lookups by scanning the derived table on disk.
type TableSource struct {
	tables TableEnsurer
	logger *zap.Logger
}

// NewTableSource creates a source reading the table provided by e.
func NewTableSource(e TableEnsurer) *TableSource {
	return &TableSource{
		tables: e,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for lookup messages.
func (s *TableSource) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Annotations returns one annotation per table row whose symbol is in
// symbols, in table order. The table is built first if it is missing.
func (s *TableSource) Annotations(ctx context.Context, symbols []string) ([]Annotation, error) {
	path, err := s.tables.EnsureHumanRefSeq(ctx, refseq.Options{})
	if err != nil {
		return nil, fmt.Errorf("ensure refseq table: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open refseq table: %w", err)
	}
	defer f.Close()

	anns, err := Scan(bufio.NewReader(f), NewSymbolSet(symbols))
	if err != nil {
		return nil, err
	}

	s.logger.Info("resolved annotations",
		zap.Int("symbols", len(symbols)),
		zap.Int("annotations", len(anns)))
	return anns, nil
}

// Scan reads a derived table and keeps the rows whose symbol is in set.
func Scan(r io.Reader, set SymbolSet) ([]Annotation, error) {
	anns := []Annotation{}
	if len(set) == 0 {
		return anns, nil
	}

	err := refseq.ReadTable(r, func(line int, rec refseq.Record) error {
		if !set.Contains(rec.Symbol) {
			return nil
		}
		ann, err := FromRecord(rec)
		if err != nil {
			return fmt.Errorf("table line %d: %w", line, err)
		}
		anns = append(anns, ann)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return anns, nil
}
