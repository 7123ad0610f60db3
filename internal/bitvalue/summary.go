package bitvalue

import (
	"sort"
	"sync"

	"github.com/gnoverse/bitwidth/internal/analysis/lattice"
)

// Summaries maps function names to the known bits of their return value.
// It is safe for concurrent use.
type Summaries struct {
	mu sync.RWMutex
	m  map[string]lattice.Bitstring
}

func NewSummaries() *Summaries {
	return &Summaries{m: make(map[string]lattice.Bitstring)}
}

// Lookup returns a copy of the summary of fn.
func (s *Summaries) Lookup(fn string) (lattice.Bitstring, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bs, ok := s.m[fn]
	return bs.Clone(), ok
}

// Store records the summary of fn, replacing any previous one.
func (s *Summaries) Store(fn string, bs lattice.Bitstring) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[fn] = bs.Clone()
}

func (s *Summaries) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// Names returns the summarized functions in sorted order.
func (s *Summaries) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.m))
	for name := range s.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
