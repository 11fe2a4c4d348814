package duckdb

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/inodb/vibe-ideogram/internal/refseq"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

func (fp FileFingerprint) entries() []struct{ key, val string } {
	return []struct{ key, val string }{
		{"source_path", fp.Path},
		{"source_size", strconv.FormatInt(fp.Size, 10)},
		{"source_modtime", fp.ModTime.UTC().Format(time.RFC3339Nano)},
		{"schema_version", strconv.Itoa(refseq.SchemaVersion)},
	}
}

// Fresh reports whether the index was loaded from a table matching fp.
func (s *Store) Fresh(ctx context.Context, fp FileFingerprint) bool {
	meta, err := s.readMeta(ctx)
	if err != nil {
		return false
	}
	for _, e := range fp.entries() {
		if meta[e.key] != e.val {
			return false
		}
	}
	return true
}

func (s *Store) readMeta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM index_meta`)
	if err != nil {
		return nil, fmt.Errorf("query index metadata: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan index metadata: %w", err)
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

func (s *Store) writeMeta(ctx context.Context, fp FileFingerprint) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM index_meta`); err != nil {
		return fmt.Errorf("clear index metadata: %w", err)
	}
	for _, e := range fp.entries() {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO index_meta (key, value) VALUES (?, ?)`, e.key, e.val); err != nil {
			return fmt.Errorf("write index metadata %s: %w", e.key, err)
		}
	}
	return nil
}
