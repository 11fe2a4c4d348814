package annotate

import (
	"context"

	"github.com/inodb/vibe-ideogram/internal/refseq"
)

// Source returns the annotations for a set of gene symbols.
type Source interface {
	Annotations(ctx context.Context, symbols []string) ([]Annotation, error)
}

// TableEnsurer provides the path of the derived table, building it if needed.
type TableEnsurer interface {
	EnsureHumanRefSeq(ctx context.Context, opts refseq.Options) (string, error)
}

// SymbolSet is the set of requested gene symbols.
type SymbolSet map[string]struct{}

// NewSymbolSet builds a set from symbols; duplicates collapse.
func NewSymbolSet(symbols []string) SymbolSet {
	s := make(SymbolSet, len(symbols))
	for _, sym := range symbols {
		s[sym] = struct{}{}
	}
	return s
}

// Contains reports whether sym was requested.
func (s SymbolSet) Contains(sym string) bool {
	_, ok := s[sym]
	return ok
}

// Symbols returns the members of the set in no particular order.
func (s SymbolSet) Symbols() []string {
	out := make([]string, 0, len(s))
	for sym := range s {
		out = append(out, sym)
	}
	return out
}
