package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"io"
	"strconv"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-ideogram/internal/annotate"
	"github.com/inodb/vibe-ideogram/internal/refseq"
)

// LoadTable replaces the gene rows with the contents of a derived table
// using the Appender API. Rows keep their table order in the seq column.
// Coordinates are parsed here, so a malformed table fails the load.
func (s *Store) LoadTable(ctx context.Context, r io.Reader) (int64, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	// A failed load must not look fresh.
	if _, err := conn.ExecContext(ctx, "DELETE FROM index_meta"); err != nil {
		return 0, fmt.Errorf("clear index metadata: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "DELETE FROM genes"); err != nil {
		return 0, fmt.Errorf("clear genes: %w", err)
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "genes")
		return err
	}); err != nil {
		return 0, fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	var seq int64
	err = refseq.ReadTable(r, func(line int, rec refseq.Record) error {
		id, err := strconv.ParseInt(rec.GeneID, 10, 64)
		if err != nil {
			return fmt.Errorf("table line %d: %w %q", line, refseq.ErrInvalidGeneID, rec.GeneID)
		}
		ann, err := annotate.FromRecord(rec)
		if err != nil {
			return fmt.Errorf("table line %d: %w", line, err)
		}
		if err := appender.AppendRow(seq, id, ann.Name, ann.Chrom, ann.Start, ann.Stop); err != nil {
			return fmt.Errorf("append gene %s: %w", rec.GeneID, err)
		}
		seq++
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := appender.Flush(); err != nil {
		return 0, fmt.Errorf("flush appender: %w", err)
	}
	return seq, nil
}

// Count returns the number of indexed gene rows.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM genes").Scan(&count); err != nil {
		return 0, fmt.Errorf("count genes: %w", err)
	}
	return count, nil
}

// LookupSymbols returns the rows whose name is one of symbols, in table order.
func (s *Store) LookupSymbols(ctx context.Context, symbols []string) ([]annotate.Annotation, error) {
	anns := []annotate.Annotation{}
	set := annotate.NewSymbolSet(symbols)
	if len(set) == 0 {
		return anns, nil
	}

	uniq := set.Symbols()
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(uniq)), ",")
	args := make([]any, len(uniq))
	for i, sym := range uniq {
		args[i] = sym
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name, chr, start, stop
		FROM genes
		WHERE name IN (`+placeholders+`)
		ORDER BY seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("query genes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a annotate.Annotation
		if err := rows.Scan(&a.Name, &a.Chrom, &a.Start, &a.Stop); err != nil {
			return nil, fmt.Errorf("scan gene: %w", err)
		}
		anns = append(anns, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genes: %w", err)
	}
	return anns, nil
}
