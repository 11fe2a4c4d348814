package annotate

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/inodb/vibe-ideogram/internal/refseq"
)

func TestLocation(t *testing.T) {
	tests := []struct {
		name string
		ann  Annotation
		want string
	}{
		{"autosome", Annotation{Name: "KRAS", Chrom: "12", Start: 25205245, Stop: 25250928}, "12:25205245-25250928"},
		{"sex chromosome", Annotation{Name: "XIST", Chrom: "X", Start: 73820651, Stop: 73852753}, "X:73820651-73852753"},
		{"unknown chromosome", Annotation{Name: "ORPHAN", Start: 10, Stop: 20}, "?:10-20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ann.Location(); got != tt.want {
				t.Errorf("Location() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFromRecord_InvalidCoordinates(t *testing.T) {
	tests := []struct {
		name string
		rec  refseq.Record
	}{
		{"empty start", refseq.Record{Symbol: "A", Chrom: "1", Start: "", Stop: "5"}},
		{"non-numeric stop", refseq.Record{Symbol: "A", Chrom: "1", Start: "1", Stop: "five"}},
		{"float start", refseq.Record{Symbol: "A", Chrom: "1", Start: "1.5", Stop: "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromRecord(tt.rec)
			if !errors.Is(err, ErrInvalidCoordinate) {
				t.Errorf("FromRecord() error = %v, want ErrInvalidCoordinate", err)
			}
		})
	}
}

func TestAnnotation_JSONFieldNames(t *testing.T) {
	b, err := json.Marshal(Annotation{Name: "TP53", Chrom: "17", Start: 1, Stop: 2})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"name":"TP53","chr":"17","start":1,"stop":2}`
	if string(b) != want {
		t.Errorf("json = %s, want %s", b, want)
	}
}
