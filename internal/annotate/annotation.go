// Package annotate resolves gene symbols to chromosome coordinates.
package annotate

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/inodb/vibe-ideogram/internal/refseq"
)

// ErrInvalidCoordinate is returned when a start or stop value in the derived
// table is not an integer.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Annotation is a gene placed on the karyotype. JSON field names follow the
// Ideogram.js annotation format.
type Annotation struct {
	Name  string `json:"name"`  // Gene symbol
	Chrom string `json:"chr"`   // Chromosome label, empty when unknown
	Start int64  `json:"start"` // Start position on the genomic accession
	Stop  int64  `json:"stop"`  // End position on the genomic accession
}

// FromRecord converts a derived table record, parsing its coordinates.
func FromRecord(rec refseq.Record) (Annotation, error) {
	start, err := strconv.ParseInt(rec.Start, 10, 64)
	if err != nil {
		return Annotation{}, fmt.Errorf("%w: start %q for %s", ErrInvalidCoordinate, rec.Start, rec.Symbol)
	}
	stop, err := strconv.ParseInt(rec.Stop, 10, 64)
	if err != nil {
		return Annotation{}, fmt.Errorf("%w: stop %q for %s", ErrInvalidCoordinate, rec.Stop, rec.Symbol)
	}
	return Annotation{
		Name:  rec.Symbol,
		Chrom: rec.Chrom,
		Start: start,
		Stop:  stop,
	}, nil
}

// Location formats the annotation as chr:start-stop.
func (a Annotation) Location() string {
	chrom := a.Chrom
	if chrom == "" {
		chrom = "?"
	}
	return fmt.Sprintf("%s:%d-%d", chrom, a.Start, a.Stop)
}
