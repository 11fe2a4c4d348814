package refseq

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gene2refseqHeader = "#tax_id\tGeneID\tstatus\tRNA_nucleotide_accession.version\tRNA_nucleotide_gi\t" +
	"protein_accession.version\tprotein_gi\tgenomic_nucleotide_accession.version\tgenomic_nucleotide_gi\t" +
	"start_position_on_the_genomic_accession\tend_position_on_the_genomic_accession\torientation\t" +
	"assembly\tmature_peptide_accession.version\tmature_peptide_gi\tSymbol\n"

const geneInfoHeader = "#tax_id\tGeneID\tSymbol\tLocusTag\tSynonyms\tdbXrefs\tchromosome\tmap_location\n"

// refseqLine builds a gene2refseq line with the columns the builder reads.
func refseqLine(taxon, geneID, status, start, stop, assembly, symbol string) string {
	fields := make([]string, 16)
	for i := range fields {
		fields[i] = "-"
	}
	fields[colTaxon] = taxon
	fields[colGeneID] = geneID
	fields[colStatus] = status
	fields[colStart] = start
	fields[colStop] = stop
	fields[colAssembly] = assembly
	fields[colSymbol] = symbol
	return strings.Join(fields, "\t") + "\n"
}

func geneInfoLine(geneID, symbol, chrom string) string {
	return strings.Join([]string{"9606", geneID, symbol, "-", "-", "-", chrom, "-"}, "\t") + "\n"
}

func TestParseChromosomeMap(t *testing.T) {
	input := geneInfoHeader +
		geneInfoLine("7157", "TP53", "17") +
		geneInfoLine("3845", "KRAS", "12") +
		"\n"

	m, err := ParseChromosomeMap(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Len(t, m, 2)
	assert.Equal(t, "17", m["7157"])
	assert.Equal(t, "12", m["3845"])
}

func TestParseChromosomeMap_Malformed(t *testing.T) {
	input := geneInfoHeader + "9606\t7157\tTP53\n"

	_, err := ParseChromosomeMap(context.Background(), strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRow)
}

func TestParseChromosomeMap_Empty(t *testing.T) {
	m, err := ParseChromosomeMap(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestFilterKeep(t *testing.T) {
	f := DefaultFilter()
	base := ReferenceRow{Taxon: HumanTaxon, Assembly: PrimaryAssembly, Status: "REVIEWED"}

	tests := []struct {
		name   string
		modify func(r *ReferenceRow)
		want   bool
	}{
		{"passes all checks", func(r *ReferenceRow) {}, true},
		{"mouse taxon", func(r *ReferenceRow) { r.Taxon = "10090" }, false},
		{"alternate assembly", func(r *ReferenceRow) { r.Assembly = "Reference GRCh38.p14 ALT_REF_LOCI_1" }, false},
		{"suppressed", func(r *ReferenceRow) { r.Status = StatusSuppressed }, false},
		{"validated status", func(r *ReferenceRow) { r.Status = "VALIDATED" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.modify(&r)
			assert.Equal(t, tt.want, f.Keep(r))
		})
	}
}

func TestFilterRows(t *testing.T) {
	input := gene2refseqHeader +
		refseqLine("9606", "7157", "REVIEWED", "7668401", "7687549", PrimaryAssembly, "TP53") +
		refseqLine("10090", "22059", "REVIEWED", "69580358", "69591873", "Reference GRCm39 C57BL/6J", "Trp53") +
		refseqLine("9606", "7157", "REVIEWED", "1", "2", "Reference GRCh38.p14 ALT_REF_LOCI_3", "TP53") +
		refseqLine("9606", "3845", StatusSuppressed, "25205245", "25250929", PrimaryAssembly, "KRAS") +
		refseqLine("9606", "999999", "MODEL", "500", "100", PrimaryAssembly, "NOCHROM")

	chroms := ChromosomeMap{"7157": "17", "3845": "12"}

	records, stats, err := FilterRows(context.Background(), strings.NewReader(input), DefaultFilter(), chroms)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Scanned)
	assert.Equal(t, 2, stats.Kept)
	require.Len(t, records, 2)

	assert.Equal(t, Record{GeneID: "7157", Symbol: "TP53", Chrom: "17", Start: "7668401", Stop: "7687549"}, records[0])

	// Missing from the chromosome map, and start > stop is preserved as-is.
	assert.Equal(t, Record{GeneID: "999999", Symbol: "NOCHROM", Chrom: "", Start: "500", Stop: "100"}, records[1])
}

func TestFilterRows_CustomFilter(t *testing.T) {
	mouse := "Reference GRCm39 C57BL/6J"
	input := gene2refseqHeader +
		refseqLine("9606", "7157", "REVIEWED", "7668401", "7687549", PrimaryAssembly, "TP53") +
		refseqLine("10090", "22059", "REVIEWED", "69580358", "69591873", mouse, "Trp53")

	records, _, err := FilterRows(context.Background(), strings.NewReader(input), Filter{Taxon: "10090", Assembly: mouse}, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Trp53", records[0].Symbol)
}

func TestFilterRows_Malformed(t *testing.T) {
	input := gene2refseqHeader + "9606\t7157\tREVIEWED\n"

	_, _, err := FilterRows(context.Background(), strings.NewReader(input), DefaultFilter(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRow)
	assert.Contains(t, err.Error(), "line 2")
}

// cancelOnRead cancels a context the first time it is read from.
type cancelOnRead struct {
	r      io.Reader
	cancel context.CancelFunc
}

func (c *cancelOnRead) Read(p []byte) (int, error) {
	c.cancel()
	return c.r.Read(p)
}

func TestFilterRows_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := gene2refseqHeader + refseqLine("9606", "7157", "REVIEWED", "1", "2", PrimaryAssembly, "TP53")
	_, _, err := FilterRows(ctx, strings.NewReader(input), DefaultFilter(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilterRows_CancelledMidScan(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	line := refseqLine("10090", "22059", "REVIEWED", "1", "2", "Reference GRCm39 C57BL/6J", "Trp53")
	input := gene2refseqHeader + strings.Repeat(line, 2*cancelCheckLines)

	records, stats, err := FilterRows(ctx, &cancelOnRead{r: strings.NewReader(input), cancel: cancel}, DefaultFilter(), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, records)
	assert.Less(t, stats.Scanned, 2*cancelCheckLines, "scan must stop before the end of the input")
}

func TestParseChromosomeMap_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseChromosomeMap(ctx, strings.NewReader(geneInfoHeader+geneInfoLine("7157", "TP53", "17")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSortUnique(t *testing.T) {
	records := []Record{
		{GeneID: "10", Symbol: "NAT2", Chrom: "8", Start: "18391282", Stop: "18401218"},
		{GeneID: "9", Symbol: "NAT1", Chrom: "8", Start: "18170477", Stop: "18223689"},
		{GeneID: "10", Symbol: "NAT2", Chrom: "8", Start: "18391282", Stop: "18401218"},
		{GeneID: "100", Symbol: "ADA", Chrom: "20", Start: "44619522", Stop: "44652233"},
		{GeneID: "9", Symbol: "NAT1", Chrom: "8", Start: "18207108", Stop: "18226689"},
	}

	sorted, err := SortUnique(records)
	require.NoError(t, err)
	require.Len(t, sorted, 4)

	ids := make([]string, len(sorted))
	for i, r := range sorted {
		ids[i] = r.GeneID
	}
	assert.Equal(t, []string{"9", "9", "10", "100"}, ids, "numeric, not lexical, order")

	// Rows with the same id but different coordinates both survive.
	assert.Equal(t, "18170477", sorted[0].Start)
	assert.Equal(t, "18207108", sorted[1].Start)
}

func TestSortUnique_InvalidGeneID(t *testing.T) {
	_, err := SortUnique([]Record{{GeneID: "abc"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidGeneID)
}

func TestWriteReadTable(t *testing.T) {
	records := []Record{
		{GeneID: "3845", Symbol: "KRAS", Chrom: "12", Start: "25205245", Stop: "25250929"},
		{GeneID: "7157", Symbol: "TP53", Chrom: "17", Start: "7668401", Stop: "7687549"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, records))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "#vibe-ideogram-refseq v1", lines[0])
	assert.Equal(t, "ncbigene_id\tname\tchr\tstart\tstop", lines[1])
	assert.Equal(t, "3845\tKRAS\t12\t25205245\t25250929", lines[2])

	var got []Record
	err := ReadTable(&buf, func(line int, rec Record) error {
		got = append(got, rec)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestReadTable_WithoutMarker(t *testing.T) {
	input := "ncbigene_id\tname\tchr\tstart\tstop\n1\tA1BG\t19\t58345178\t58353492\n"

	var got []Record
	err := ReadTable(strings.NewReader(input), func(line int, rec Record) error {
		got = append(got, rec)
		assert.Equal(t, 2, line)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A1BG", got[0].Symbol)
}

func TestReadTable_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantMsg string
	}{
		{
			name:    "future schema",
			input:   "#vibe-ideogram-refseq v2\nncbigene_id\tname\tchr\tstart\tstop\n",
			wantErr: ErrSchemaVersion,
		},
		{
			name:    "wrong header",
			input:   "id\tsymbol\n",
			wantMsg: "unexpected header",
		},
		{
			name:    "empty",
			input:   "",
			wantMsg: "missing header",
		},
		{
			name:    "short row",
			input:   "ncbigene_id\tname\tchr\tstart\tstop\n1\tA1BG\n",
			wantErr: ErrMalformedRow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ReadTable(strings.NewReader(tt.input), func(int, Record) error { return nil })
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}
