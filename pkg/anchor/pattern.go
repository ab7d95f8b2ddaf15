/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: pattern.go
Description: Byte/mask anchor patterns for locating configuration blobs inside sample
images. Patterns are written as YARA-style hex strings where "??" marks a wildcard byte,
compiled once into an immutable value and searched in a single forward pass.
*/

package anchor

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidPattern is returned when a pattern string cannot be compiled
var ErrInvalidPattern = errors.New("invalid anchor pattern")

// Match is a single pattern occurrence inside a buffer
type Match struct {
	PatternID string `json:"pattern_id" yaml:"pattern_id"` // Identifier of the pattern that matched
	Offset    int    `json:"offset" yaml:"offset"`         // Start offset of the match in the buffer
}

// Pattern is a compiled byte signature with wildcard positions.
// A Pattern is never modified after compilation and may be shared freely.
type Pattern struct {
	id    string
	value []byte
	fixed []bool // fixed[i] is false for wildcard positions

	// longest run of fixed bytes, used as the search prefilter
	litStart int
	literal  []byte
}

// ParsePattern compiles a hex pattern such as "BF 49 ?? 75".
// Whitespace between bytes is optional.
func ParsePattern(id, text string) (*Pattern, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	if compact == "" {
		return nil, fmt.Errorf("%w: pattern %q is empty", ErrInvalidPattern, id)
	}
	if len(compact)%2 != 0 {
		return nil, fmt.Errorf("%w: pattern %q has an odd number of nibbles", ErrInvalidPattern, id)
	}

	n := len(compact) / 2
	p := &Pattern{
		id:    id,
		value: make([]byte, n),
		fixed: make([]bool, n),
	}

	for i := 0; i < n; i++ {
		tok := compact[i*2 : i*2+2]
		if tok == "??" {
			continue
		}
		if strings.ContainsRune(tok, '?') {
			return nil, fmt.Errorf("%w: pattern %q: nibble wildcards are not supported (byte %d: %q)", ErrInvalidPattern, id, i, tok)
		}
		b, err := hex.DecodeString(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q: byte %d: %v", ErrInvalidPattern, id, i, err)
		}
		p.value[i] = b[0]
		p.fixed[i] = true
	}

	p.litStart, p.literal = longestLiteral(p.value, p.fixed)
	if len(p.literal) == 0 {
		return nil, fmt.Errorf("%w: pattern %q contains only wildcards", ErrInvalidPattern, id)
	}

	return p, nil
}

// MustParsePattern is like ParsePattern but panics on error.
// Intended for package-level patterns.
func MustParsePattern(id, text string) *Pattern {
	p, err := ParsePattern(id, text)
	if err != nil {
		panic(err)
	}
	return p
}

// longestLiteral returns the start and bytes of the longest run of fixed bytes
func longestLiteral(value []byte, fixed []bool) (int, []byte) {
	bestStart, bestLen := 0, 0
	runStart := -1
	for i := 0; i <= len(fixed); i++ {
		if i < len(fixed) && fixed[i] {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if runStart >= 0 && i-runStart > bestLen {
			bestStart, bestLen = runStart, i-runStart
		}
		runStart = -1
	}
	return bestStart, value[bestStart : bestStart+bestLen]
}

// ID returns the pattern identifier
func (p *Pattern) ID() string {
	return p.id
}

// Len returns the pattern length in bytes
func (p *Pattern) Len() int {
	return len(p.value)
}

// Wildcards returns the number of wildcard positions
func (p *Pattern) Wildcards() int {
	count := 0
	for _, f := range p.fixed {
		if !f {
			count++
		}
	}
	return count
}

// String returns the canonical hex form, e.g. "BF 49 ?? 75"
func (p *Pattern) String() string {
	parts := make([]string, len(p.value))
	for i, b := range p.value {
		if !p.fixed[i] {
			parts[i] = "??"
			continue
		}
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

// matchAt reports whether the pattern matches buf at start
func (p *Pattern) matchAt(buf []byte, start int) bool {
	if start < 0 || start+len(p.value) > len(buf) {
		return false
	}
	for i, b := range p.value {
		if p.fixed[i] && buf[start+i] != b {
			return false
		}
	}
	return true
}

// Find returns every match start in ascending order, overlapping matches included.
// A buffer shorter than the pattern yields no matches.
func (p *Pattern) Find(buf []byte) []Match {
	var matches []Match
	p.scan(buf, func(offset int) bool {
		matches = append(matches, Match{PatternID: p.id, Offset: offset})
		return true
	})
	return matches
}

// First returns the lowest-offset match
func (p *Pattern) First(buf []byte) (Match, bool) {
	var (
		m     Match
		found bool
	)
	p.scan(buf, func(offset int) bool {
		m = Match{PatternID: p.id, Offset: offset}
		found = true
		return false
	})
	return m, found
}

// scan walks candidate starts left to right and calls fn for each verified match
// until fn returns false.
func (p *Pattern) scan(buf []byte, fn func(offset int) bool) {
	if len(buf) < len(p.value) {
		return
	}

	from := p.litStart
	last := len(buf) - len(p.value) + p.litStart
	for from <= last {
		idx := bytes.Index(buf[from:last+len(p.literal)], p.literal)
		if idx < 0 {
			return
		}
		start := from + idx - p.litStart
		if p.matchAt(buf, start) && !fn(start) {
			return
		}
		from += idx + 1
	}
}
