/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: read.go
Description: Bounds-safe primitive reads over untrusted sample buffers. Every read is
total: offsets past the end of the buffer, negative offsets and unterminated strings all
degrade to shorter or empty results instead of failing.
*/

package decoder

import "strings"

// MaxStringSize is the fixed window of every string and list field
const MaxStringSize = 128

// ListDelimiter separates elements of list fields
const ListDelimiter = ","

// window returns buf[offset:offset+maxLen] clamped to the buffer
func window(buf []byte, offset, maxLen int) []byte {
	if offset < 0 || offset >= len(buf) || maxLen <= 0 {
		return nil
	}
	end := len(buf)
	if maxLen < end-offset {
		end = offset + maxLen
	}
	return buf[offset:end]
}

// ReadBoundedString reads at most maxLen bytes at offset and cuts the result at the
// first NUL byte. The returned string never contains a NUL byte.
func ReadBoundedString(buf []byte, offset, maxLen int) string {
	w := window(buf, offset, maxLen)
	for i, b := range w {
		if b == 0x00 {
			return string(w[:i])
		}
	}
	return string(w)
}

// ReadDelimitedList reads a bounded string and splits it on delim.
// Empty elements are kept, so "a,,b" yields three elements and "" yields one.
func ReadDelimitedList(buf []byte, offset, maxLen int, delim string) []string {
	return strings.Split(ReadBoundedString(buf, offset, maxLen), delim)
}

// ProbeByte returns the byte at offset and whether offset is inside the buffer
func ProbeByte(buf []byte, offset int) (byte, bool) {
	if offset < 0 || offset >= len(buf) {
		return 0, false
	}
	return buf[offset], true
}

// probeEquals reports whether the byte at offset equals want.
// Out-of-range offsets never equal anything.
func probeEquals(buf []byte, offset int, want byte) bool {
	b, ok := ProbeByte(buf, offset)
	return ok && b == want
}

// probeNotEquals is the negation of probeEquals, so out-of-range offsets are
// "not equal" to every byte.
func probeNotEquals(buf []byte, offset int, want byte) bool {
	return !probeEquals(buf, offset, want)
}
