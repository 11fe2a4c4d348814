// Package refseq builds the human gene coordinate table from NCBI RefSeq
// reference files.
//
// Two remote files are joined on the NCBI gene identifier:
//
//	Homo_sapiens.gene_info.gz  gene id -> chromosome
//	gene2refseq.gz             gene id -> symbol, assembly, coordinates
//
// The result is a small tab-delimited table sorted by gene id.
package refseq

import (
	"errors"
)

// NCBI source URLs.
const (
	GeneInfoURL    = "https://ftp.ncbi.nlm.nih.gov/refseq/H_sapiens/Homo_sapiens.gene_info.gz"
	Gene2RefSeqURL = "ftp://ftp.ncbi.nih.gov/gene/DATA/gene2refseq.gz"
)

// Default filter values.
const (
	HumanTaxon       = "9606"
	PrimaryAssembly  = "Reference GRCh38.p14 Primary Assembly"
	StatusSuppressed = "SUPPRESSED"
)

// TableName is the file name of the derived table inside the cache directory.
const TableName = "refseq_human.tsv"

// gene2refseq column indexes.
const (
	colTaxon    = 0
	colGeneID   = 1
	colStatus   = 2
	colStart    = 9
	colStop     = 10
	colAssembly = 12
	colSymbol   = 15

	gene2refseqMinFields = colSymbol + 1
)

// gene_info column indexes.
const (
	colInfoGeneID = 1
	colInfoChrom  = 6

	geneInfoMinFields = colInfoChrom + 1
)

var (
	// ErrInvalidGeneID is returned when a gene identifier is not an integer.
	ErrInvalidGeneID = errors.New("invalid gene id")
	// ErrSchemaVersion is returned when a derived table was written by an
	// incompatible version.
	ErrSchemaVersion = errors.New("unsupported table schema version")
	// ErrMalformedRow is returned for rows with too few columns.
	ErrMalformedRow = errors.New("malformed row")
)

// ChromosomeMap maps NCBI gene id to chromosome label.
type ChromosomeMap map[string]string

// ReferenceRow is the subset of a gene2refseq line used for filtering.
type ReferenceRow struct {
	Taxon    string
	GeneID   string
	Status   string
	Assembly string
	Start    string
	Stop     string
	Symbol   string
}

// Record is one row of the derived table. Coordinates are kept as the text
// found in gene2refseq; they are converted when annotations are read.
type Record struct {
	GeneID string
	Symbol string
	Chrom  string
	Start  string
	Stop   string
}

// Filter selects gene2refseq rows for one organism and assembly.
type Filter struct {
	Taxon    string
	Assembly string
}

// DefaultFilter keeps human rows on the GRCh38 primary assembly.
func DefaultFilter() Filter {
	return Filter{Taxon: HumanTaxon, Assembly: PrimaryAssembly}
}

// Keep reports whether a row passes the taxon, assembly and status checks,
// applied in that order.
func (f Filter) Keep(r ReferenceRow) bool {
	if r.Taxon != f.Taxon {
		return false
	}
	if r.Assembly != f.Assembly {
		return false
	}
	return r.Status != StatusSuppressed
}

// Project converts a kept row to a Record, resolving the chromosome from m.
func (r ReferenceRow) Project(m ChromosomeMap) Record {
	return Record{
		GeneID: r.GeneID,
		Symbol: r.Symbol,
		Chrom:  m[r.GeneID],
		Start:  r.Start,
		Stop:   r.Stop,
	}
}
