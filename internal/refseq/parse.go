package refseq

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// FilterStats counts rows seen while filtering gene2refseq.
type FilterStats struct {
	Scanned int
	Kept    int
}

// cancelCheckLines is how often the scanners look at the context.
const cancelCheckLines = 1 << 16

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)
	return scanner
}

// ParseChromosomeMap reads a gene_info file (header line first) and maps
// each gene id to its chromosome column.
func ParseChromosomeMap(ctx context.Context, r io.Reader) (ChromosomeMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := make(ChromosomeMap)
	scanner := newScanner(r)

	// Skip header line
	if !scanner.Scan() {
		return m, scanner.Err()
	}

	lineNum := 1
	for scanner.Scan() {
		lineNum++
		if lineNum%cancelCheckLines == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < geneInfoMinFields {
			return nil, fmt.Errorf("gene_info line %d: %w: %d fields", lineNum, ErrMalformedRow, len(fields))
		}
		m[fields[colInfoGeneID]] = fields[colInfoChrom]
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan gene_info: %w", err)
	}
	return m, nil
}

func parseReferenceRow(fields []string) ReferenceRow {
	return ReferenceRow{
		Taxon:    fields[colTaxon],
		GeneID:   fields[colGeneID],
		Status:   fields[colStatus],
		Assembly: fields[colAssembly],
		Start:    fields[colStart],
		Stop:     fields[colStop],
		Symbol:   fields[colSymbol],
	}
}

// FilterRows reads gene2refseq content (header line first) and returns the
// projected records of every row kept by f. Records are neither
// deduplicated nor sorted. Cancelling ctx stops the scan with ctx.Err().
func FilterRows(ctx context.Context, r io.Reader, f Filter, m ChromosomeMap) ([]Record, FilterStats, error) {
	var stats FilterStats
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}
	var records []Record
	scanner := newScanner(r)

	// Skip header line
	if !scanner.Scan() {
		return nil, stats, scanner.Err()
	}

	lineNum := 1
	for scanner.Scan() {
		lineNum++
		if lineNum%cancelCheckLines == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		stats.Scanned++

		// Cheap prefix check before splitting; most of the file is other taxa.
		if !strings.HasPrefix(line, f.Taxon+"\t") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < gene2refseqMinFields {
			return nil, stats, fmt.Errorf("gene2refseq line %d: %w: %d fields", lineNum, ErrMalformedRow, len(fields))
		}

		row := parseReferenceRow(fields)
		if !f.Keep(row) {
			continue
		}
		records = append(records, row.Project(m))
		stats.Kept++
	}

	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("scan gene2refseq: %w", err)
	}
	return records, stats, nil
}

// SortUnique removes records that are equal in every field and sorts the
// rest by numeric gene id. Records sharing a gene id are ordered by their
// remaining fields so the output is deterministic.
func SortUnique(records []Record) ([]Record, error) {
	type keyed struct {
		id  int64
		rec Record
	}

	seen := make(map[Record]struct{}, len(records))
	out := make([]keyed, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec]; ok {
			continue
		}
		seen[rec] = struct{}{}

		id, err := strconv.ParseInt(rec.GeneID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w %q", ErrInvalidGeneID, rec.GeneID)
		}
		out = append(out, keyed{id: id, rec: rec})
	}

	slices.SortFunc(out, func(a, b keyed) int {
		return cmp.Or(
			cmp.Compare(a.id, b.id),
			cmp.Compare(a.rec.Symbol, b.rec.Symbol),
			cmp.Compare(a.rec.Chrom, b.rec.Chrom),
			cmp.Compare(a.rec.Start, b.rec.Start),
			cmp.Compare(a.rec.Stop, b.rec.Stop),
		)
	})

	sorted := make([]Record, len(out))
	for i, k := range out {
		sorted[i] = k.rec
	}
	return sorted, nil
}
