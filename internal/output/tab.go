// Package output renders gene annotations as Ideogram.js pages, scripts
// and plain tables.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-ideogram/internal/annotate"
)

// TabWriter writes annotations in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"name",
			"chr",
			"start",
			"stop",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single annotation. Unknown chromosomes are written as "-".
func (tw *TabWriter) Write(ann annotate.Annotation) error {
	chrom := ann.Chrom
	if chrom == "" {
		chrom = "-"
	}

	values := []string{
		ann.Name,
		chrom,
		strconv.FormatInt(ann.Start, 10),
		strconv.FormatInt(ann.Stop, 10),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteAll writes the header followed by every annotation and flushes.
func (tw *TabWriter) WriteAll(anns []annotate.Annotation) error {
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, ann := range anns {
		if err := tw.Write(ann); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
