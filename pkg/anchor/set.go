/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: set.go
Description: Ordered pattern sets and the built-in Enfal configuration anchor.
*/

package anchor

import (
	"fmt"
	"sort"
)

// EnfalConfigID is the identifier of the Enfal configuration blob pattern
const EnfalConfigID = "$config"

// EnfalConfigHex is the 20-byte Enfal configuration anchor. The two wildcards
// cover bytes that differ between builds.
const EnfalConfigHex = "BF 49 ?? 75 22 12 ?? 75 4B 65 72 6E 65 6C 33 32 2E 64 6C 6C"

// EnfalConfig is the compiled Enfal anchor, built once at startup
var EnfalConfig = MustParsePattern(EnfalConfigID, EnfalConfigHex)

// Set is an ordered collection of patterns, searched together
type Set struct {
	patterns []*Pattern
}

// NewSet builds a set. Pattern identifiers must be unique.
func NewSet(patterns ...*Pattern) (*Set, error) {
	seen := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		if p == nil {
			return nil, fmt.Errorf("%w: nil pattern in set", ErrInvalidPattern)
		}
		if seen[p.id] {
			return nil, fmt.Errorf("%w: duplicate pattern id %q", ErrInvalidPattern, p.id)
		}
		seen[p.id] = true
	}
	return &Set{patterns: append([]*Pattern(nil), patterns...)}, nil
}

// Patterns returns the patterns in set order
func (s *Set) Patterns() []*Pattern {
	return append([]*Pattern(nil), s.patterns...)
}

// Lookup returns the pattern with the given identifier
func (s *Set) Lookup(id string) (*Pattern, bool) {
	for _, p := range s.patterns {
		if p.id == id {
			return p, true
		}
	}
	return nil, false
}

// Scan returns the matches of all patterns ordered by offset, ties broken by set order
func (s *Set) Scan(buf []byte) []Match {
	var matches []Match
	rank := make(map[string]int, len(s.patterns))
	for i, p := range s.patterns {
		rank[p.id] = i
		matches = append(matches, p.Find(buf)...)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Offset != matches[j].Offset {
			return matches[i].Offset < matches[j].Offset
		}
		return rank[matches[i].PatternID] < rank[matches[j].PatternID]
	})
	return matches
}

// First returns the first match of the pattern with the given identifier
func (s *Set) First(buf []byte, id string) (Match, bool) {
	p, ok := s.Lookup(id)
	if !ok {
		return Match{}, false
	}
	return p.First(buf)
}
