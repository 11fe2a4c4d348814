package refseq

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Fetcher provides local copies of remote files.
type Fetcher interface {
	Ensure(ctx context.Context, url string, force bool) (string, error)
	Remove(path string) error
}

// Config configures a Builder. Empty fields fall back to the NCBI defaults.
type Config struct {
	TablePath      string
	GeneInfoURL    string
	Gene2RefSeqURL string
	Filter         Filter
}

// Options control a single EnsureHumanRefSeq call.
type Options struct {
	// ForceExtract rebuilds the table even when it already exists.
	ForceExtract bool
	// ForceDownload fetches the source files again even when cached.
	ForceDownload bool
	// Cleanup deletes the large gene2refseq download after the table is built.
	Cleanup bool
}

// Builder creates the derived human RefSeq table.
type Builder struct {
	fetcher        Fetcher
	tablePath      string
	geneInfoURL    string
	gene2refseqURL string
	filter         Filter
	logger         *zap.Logger
	progress       io.Writer
}

// NewBuilder creates a builder that fetches sources through f.
func NewBuilder(f Fetcher, cfg Config) *Builder {
	b := &Builder{
		fetcher:        f,
		tablePath:      cfg.TablePath,
		geneInfoURL:    cfg.GeneInfoURL,
		gene2refseqURL: cfg.Gene2RefSeqURL,
		filter:         cfg.Filter,
		logger:         zap.NewNop(),
	}
	if b.geneInfoURL == "" {
		b.geneInfoURL = GeneInfoURL
	}
	if b.gene2refseqURL == "" {
		b.gene2refseqURL = Gene2RefSeqURL
	}
	if b.filter.Taxon == "" {
		b.filter.Taxon = HumanTaxon
	}
	if b.filter.Assembly == "" {
		b.filter.Assembly = PrimaryAssembly
	}
	return b
}

// SetLogger sets the logger for build progress messages.
func (b *Builder) SetLogger(l *zap.Logger) {
	b.logger = l
}

// SetProgress enables a progress bar over the gene2refseq scan.
func (b *Builder) SetProgress(w io.Writer) {
	b.progress = w
}

// TablePath returns where the derived table is written.
func (b *Builder) TablePath() string {
	return b.tablePath
}

// EnsureHumanRefSeq returns the path of the derived table, building it when
// it is missing or opts.ForceExtract is set.
func (b *Builder) EnsureHumanRefSeq(ctx context.Context, opts Options) (string, error) {
	if !opts.ForceExtract {
		if _, err := os.Stat(b.tablePath); err == nil {
			return b.tablePath, nil
		}
	}

	chroms, err := b.chromosomeMap(ctx, opts.ForceDownload)
	if err != nil {
		return "", err
	}
	b.logger.Info("loaded chromosome map", zap.String("genes", humanize.Comma(int64(len(chroms)))))

	fullPath, err := b.fetcher.Ensure(ctx, b.gene2refseqURL, opts.ForceDownload)
	if err != nil {
		return "", fmt.Errorf("fetch gene2refseq: %w", err)
	}

	records, stats, err := b.filterFile(ctx, fullPath, chroms)
	if err != nil {
		return "", err
	}

	records, err = SortUnique(records)
	if err != nil {
		return "", fmt.Errorf("sort records: %w", err)
	}
	b.logger.Info("filtered gene2refseq",
		zap.String("scanned", humanize.Comma(int64(stats.Scanned))),
		zap.String("kept", humanize.Comma(int64(stats.Kept))),
		zap.String("unique", humanize.Comma(int64(len(records)))),
		zap.String("taxon", b.filter.Taxon),
		zap.String("assembly", b.filter.Assembly))

	if err := writeTableFile(b.tablePath, records); err != nil {
		return "", err
	}
	b.logger.Info("wrote derived table", zap.String("path", b.tablePath))

	if opts.Cleanup {
		if err := b.fetcher.Remove(fullPath); err != nil {
			return "", fmt.Errorf("cleanup: %w", err)
		}
	}

	return b.tablePath, nil
}

func (b *Builder) chromosomeMap(ctx context.Context, force bool) (ChromosomeMap, error) {
	p, err := b.fetcher.Ensure(ctx, b.geneInfoURL, force)
	if err != nil {
		return nil, fmt.Errorf("fetch gene_info: %w", err)
	}

	rc, err := openSource(p, nil)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return ParseChromosomeMap(ctx, rc)
}

func (b *Builder) filterFile(ctx context.Context, p string, chroms ChromosomeMap) ([]Record, FilterStats, error) {
	var bar *pb.ProgressBar
	if b.progress != nil {
		var size int64
		if info, err := os.Stat(p); err == nil {
			size = info.Size()
		}
		bar = pb.New64(size).
			SetTemplate(pb.Full).
			SetWriter(b.progress).
			Set(pb.Bytes, true).
			Set("prefix", "Processing refseq data ")
		bar.Start()
		defer bar.Finish()
	}

	rc, err := openSource(p, bar)
	if err != nil {
		return nil, FilterStats{}, err
	}
	defer rc.Close()

	return FilterRows(ctx, rc, b.filter, chroms)
}

// sourceReader reads a possibly gzipped file and closes both layers.
type sourceReader struct {
	io.Reader
	closers []io.Closer
}

func (s *sourceReader) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openSource opens p, decompressing when it ends in .gz. When bar is set it
// tracks the compressed bytes read.
func openSource(p string, bar *pb.ProgressBar) (io.ReadCloser, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(p), err)
	}

	var raw io.Reader = f
	if bar != nil {
		raw = bar.NewProxyReader(f)
	}
	src := &sourceReader{Reader: raw, closers: []io.Closer{f}}

	if strings.HasSuffix(p, ".gz") {
		gz, err := gzip.NewReader(raw)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		src.Reader = gz
		src.closers = append(src.closers, gz)
	}

	return src, nil
}

// writeTableFile writes the table to a temporary file and renames it into
// place, so a crash never leaves a truncated table at path.
func writeTableFile(path string, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create table directory: %w", err)
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := WriteTable(w, records); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flush table: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync table: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close table: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename table: %w", err)
	}
	return nil
}
