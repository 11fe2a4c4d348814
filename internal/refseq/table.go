package refseq

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// SchemaVersion is written in the table's marker line. Readers reject
// tables with a different version; tables without a marker are accepted.
const SchemaVersion = 1

const schemaMarkerPrefix = "#vibe-ideogram-refseq v"

// Header is the column header of the derived table.
var Header = []string{"ncbigene_id", "name", "chr", "start", "stop"}

func schemaMarker() string {
	return schemaMarkerPrefix + strconv.Itoa(SchemaVersion)
}

// WriteTable writes the schema marker, header and records as tab-delimited text.
func WriteTable(w io.Writer, records []Record) error {
	if _, err := io.WriteString(w, schemaMarker()+"\n"); err != nil {
		return fmt.Errorf("write schema marker: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write([]string{rec.GeneID, rec.Symbol, rec.Chrom, rec.Start, rec.Stop}); err != nil {
			return fmt.Errorf("write record %s: %w", rec.GeneID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadTable streams records from a derived table, calling fn for each one
// in file order. Returning an error from fn stops the scan.
func ReadTable(r io.Reader, fn func(line int, rec Record) error) error {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	headerSeen := false
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read table: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if !headerSeen {
			if len(fields) == 1 && strings.HasPrefix(fields[0], "#") {
				if err := checkSchemaMarker(fields[0]); err != nil {
					return err
				}
				continue
			}
			if !slices.Equal(fields, Header) {
				return fmt.Errorf("table line %d: unexpected header %q", line, strings.Join(fields, "\t"))
			}
			headerSeen = true
			continue
		}

		if len(fields) != len(Header) {
			return fmt.Errorf("table line %d: %w: %d fields", line, ErrMalformedRow, len(fields))
		}
		rec := Record{
			GeneID: fields[0],
			Symbol: fields[1],
			Chrom:  fields[2],
			Start:  fields[3],
			Stop:   fields[4],
		}
		if err := fn(line, rec); err != nil {
			return err
		}
	}

	if !headerSeen {
		return fmt.Errorf("read table: missing header")
	}
	return nil
}

func checkSchemaMarker(marker string) error {
	v, ok := strings.CutPrefix(marker, schemaMarkerPrefix)
	if !ok {
		return nil
	}
	version, err := strconv.Atoi(v)
	if err != nil || version != SchemaVersion {
		return fmt.Errorf("%w: %q", ErrSchemaVersion, marker)
	}
	return nil
}
