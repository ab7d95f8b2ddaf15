/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: pattern_test.go
Description: Tests for anchor pattern compilation and search, covering wildcard positions,
short buffers, overlapping matches and the Enfal configuration anchor.
*/

package anchor_test

import (
	"bytes"
	"testing"

	"github.com/kleascm/enfal-extractor/pkg/anchor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// enfalSignature returns a concrete instance of the Enfal anchor with the given wildcard bytes
func enfalSignature(w1, w2 byte) []byte {
	return []byte{
		0xBF, 0x49, w1, 0x75, 0x22, 0x12, w2, 0x75,
		'K', 'e', 'r', 'n', 'e', 'l', '3', '2', '.', 'd', 'l', 'l',
	}
}

func TestParsePattern(t *testing.T) {
	p, err := anchor.ParsePattern("test", "BF49 ?? 75")
	require.NoError(t, err)
	assert.Equal(t, "test", p.ID())
	assert.Equal(t, 4, p.Len())
	assert.Equal(t, 1, p.Wildcards())
	assert.Equal(t, "BF 49 ?? 75", p.String())
}

func TestParsePatternRoundTrip(t *testing.T) {
	p, err := anchor.ParsePattern("rt", anchor.EnfalConfigHex)
	require.NoError(t, err)
	again, err := anchor.ParsePattern("rt", p.String())
	require.NoError(t, err)
	assert.Equal(t, p.String(), again.String())
	assert.Equal(t, anchor.EnfalConfigHex, p.String())
}

func TestParsePatternErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace only", "   \n"},
		{"odd nibbles", "BF 4"},
		{"bad hex", "ZZ 49"},
		{"nibble wildcard", "B? 49"},
		{"only wildcards", "?? ??"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := anchor.ParsePattern("bad", tt.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, anchor.ErrInvalidPattern)
		})
	}
}

func TestMustParsePatternPanics(t *testing.T) {
	assert.Panics(t, func() { anchor.MustParsePattern("bad", "??") })
}

func TestEnfalConfigPattern(t *testing.T) {
	assert.Equal(t, anchor.EnfalConfigID, anchor.EnfalConfig.ID())
	assert.Equal(t, 20, anchor.EnfalConfig.Len())
	assert.Equal(t, 2, anchor.EnfalConfig.Wildcards())
}

func TestFindWildcardsMatchAnyByte(t *testing.T) {
	for _, w := range []byte{0x00, 0x41, 0xFF} {
		buf := append(bytes.Repeat([]byte{0x90}, 7), enfalSignature(w, w^0xFF)...)
		m, ok := anchor.EnfalConfig.First(buf)
		require.True(t, ok, "wildcard byte %#x", w)
		assert.Equal(t, 7, m.Offset)
		assert.Equal(t, anchor.EnfalConfigID, m.PatternID)
	}
}

func TestFindNoMatch(t *testing.T) {
	sig := enfalSignature(0, 0)
	sig[0] = 0xBE

	assert.Empty(t, anchor.EnfalConfig.Find(sig))
	assert.Empty(t, anchor.EnfalConfig.Find(nil))
	assert.Empty(t, anchor.EnfalConfig.Find([]byte{}))

	_, ok := anchor.EnfalConfig.First(sig)
	assert.False(t, ok)
}

func TestFindCaseSensitive(t *testing.T) {
	sig := enfalSignature(1, 2)
	copy(sig[8:], "kernel32.dll")
	assert.Empty(t, anchor.EnfalConfig.Find(sig))
}

func TestFindShortBuffer(t *testing.T) {
	sig := enfalSignature(1, 2)
	for n := 0; n < len(sig); n++ {
		assert.Empty(t, anchor.EnfalConfig.Find(sig[:n]), "prefix length %d", n)
	}
	assert.Len(t, anchor.EnfalConfig.Find(sig), 1)
}

func TestFindMultipleMatches(t *testing.T) {
	var buf []byte
	buf = append(buf, bytes.Repeat([]byte{0xCC}, 3)...)
	buf = append(buf, enfalSignature(1, 2)...)
	buf = append(buf, bytes.Repeat([]byte{0xCC}, 40)...)
	buf = append(buf, enfalSignature(3, 4)...)
	buf = append(buf, enfalSignature(5, 6)...)

	matches := anchor.EnfalConfig.Find(buf)
	require.Len(t, matches, 3)
	assert.Equal(t, 3, matches[0].Offset)
	assert.Equal(t, 63, matches[1].Offset)
	assert.Equal(t, 83, matches[2].Offset)

	first, ok := anchor.EnfalConfig.First(buf)
	require.True(t, ok)
	assert.Equal(t, matches[0], first)
}

func TestFindOverlapping(t *testing.T) {
	p := anchor.MustParsePattern("aa", "41 ?? 41")
	matches := p.Find([]byte("AAAAA"))
	require.Len(t, matches, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{matches[0].Offset, matches[1].Offset, matches[2].Offset})
}

func TestFindLeadingWildcard(t *testing.T) {
	p := anchor.MustParsePattern("lead", "?? ?? 42 43")
	matches := p.Find([]byte("BCxyBC"))
	require.Len(t, matches, 1)
	assert.Equal(t, 2, matches[0].Offset)
}

func TestFindMatchAtEnd(t *testing.T) {
	buf := append([]byte("prefix"), enfalSignature(9, 9)...)
	m, ok := anchor.EnfalConfig.First(buf)
	require.True(t, ok)
	assert.Equal(t, 6, m.Offset)
}
