/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: scanner_test.go
Description: Tests for concurrent batch scanning: path expansion, result ordering,
size limits, cancellation and worker shutdown.
*/

package scan_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/kleascm/enfal-extractor/pkg/decoder"
	"github.com/kleascm/enfal-extractor/pkg/report"
	"github.com/kleascm/enfal-extractor/pkg/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var signature = []byte{
	0xBF, 0x49, 0x00, 0x75, 0x22, 0x12, 0x00, 0x75,
	'K', 'e', 'r', 'n', 'e', 'l', '3', '2', '.', 'd', 'l', 'l',
}

// enfalSample builds a sample with a C2 URL at the anchor-relative URL offset
func enfalSample(url string) []byte {
	buf := make([]byte, 0x1600)
	copy(buf, signature)
	copy(buf[0xE8:], url+"\x00")
	return buf
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func newScanner(t *testing.T, cfg scan.Config) *scan.Scanner {
	t.Helper()
	s, err := scan.New(cfg, decoder.NewEnfal(), nil)
	require.NoError(t, err)
	return s
}

func TestConfigValidate(t *testing.T) {
	cfg := scan.Config{}
	require.NoError(t, cfg.Validate())
	assert.Positive(t, cfg.Workers)
	assert.Equal(t, int64(scan.DefaultMaxFileSize), cfg.MaxFileSize)

	assert.Error(t, (&scan.Config{Workers: -1}).Validate())
	assert.Error(t, (&scan.Config{MaxFileSize: -1}).Validate())

	_, err := scan.New(scan.Config{}, nil, nil)
	assert.Error(t, err)
}

func TestScanBytes(t *testing.T) {
	s := newScanner(t, scan.Config{Workers: 1})

	r := s.ScanBytes("mem.bin", enfalSample("http://evil.example/c2"))
	require.True(t, r.Found())
	assert.Equal(t, 0, r.Anchor.Offset)
	assert.Equal(t, []string{"http://evil.example/c2"}, r.Values(decoder.FieldC2URL))

	miss := s.ScanBytes("empty.bin", []byte{})
	assert.False(t, miss.Found())
	assert.Empty(t, miss.Fields)

	bad := s.ScanBytes("nil.bin", nil)
	assert.Contains(t, bad.Error, decoder.ErrNilBuffer.Error())

	stats := s.Stats()
	assert.Equal(t, int64(3), stats.Samples)
	assert.Equal(t, int64(1), stats.Found)
	assert.Equal(t, int64(1), stats.Errors)
	assert.Equal(t, int64(1), stats.Fields)
}

func TestScanFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.bin", enfalSample("/a"))
	s := newScanner(t, scan.Config{Workers: 1})

	r, err := s.ScanFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, r.Sample)
	assert.Equal(t, int64(0x1600), r.Size)
	assert.Len(t, r.SHA256, 64)

	r, err = s.ScanFile(context.Background(), filepath.Join(dir, "missing.bin"))
	require.Error(t, err)
	assert.NotEmpty(t, r.Error)
}

func TestScanFileTooLarge(t *testing.T) {
	path := writeFile(t, t.TempDir(), "big.bin", enfalSample("/big"))
	s := newScanner(t, scan.Config{Workers: 1, MaxFileSize: 100})

	r, err := s.ScanFile(context.Background(), path)
	assert.ErrorIs(t, err, scan.ErrFileTooLarge)
	assert.False(t, r.Found())
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.bin", []byte("b"))
	writeFile(t, dir, "a.bin", []byte("a"))
	writeFile(t, dir, "nested/c.bin", []byte("c"))
	single := writeFile(t, t.TempDir(), "single.bin", []byte("s"))

	flat := newScanner(t, scan.Config{Workers: 1})
	files, err := flat.Expand([]string{single, dir})
	require.NoError(t, err)
	assert.Equal(t, []string{single, filepath.Join(dir, "a.bin"), filepath.Join(dir, "b.bin")}, files)

	deep := newScanner(t, scan.Config{Workers: 1, Recursive: true})
	files, err = deep.Expand([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.bin"),
		filepath.Join(dir, "b.bin"),
		filepath.Join(dir, "nested", "c.bin"),
	}, files)

	_, err = flat.Expand([]string{filepath.Join(dir, "nope")})
	assert.Error(t, err)
}

func TestScanPathsOrderAndIsolation(t *testing.T) {
	dir := t.TempDir()
	const n = 24
	for i := 0; i < n; i++ {
		var data []byte
		if i%3 == 0 {
			data = []byte("no anchor here")
		} else {
			data = enfalSample(fmt.Sprintf("/sample/%02d", i))
		}
		writeFile(t, dir, fmt.Sprintf("s%02d.bin", i), data)
	}

	s := newScanner(t, scan.Config{Workers: 4})
	reports, err := s.ScanPaths(context.Background(), []string{dir})
	require.NoError(t, err)
	require.Len(t, reports, n)

	for i, r := range reports {
		assert.Equal(t, filepath.Join(dir, fmt.Sprintf("s%02d.bin", i)), r.Sample)
		if i%3 == 0 {
			assert.False(t, r.Found())
			assert.Empty(t, r.Fields)
			continue
		}
		assert.Equal(t, []decoder.Field{
			{Name: decoder.FieldC2URL, Value: fmt.Sprintf("/sample/%02d", i)},
		}, r.Fields)
	}

	summary := report.Summarize(reports)
	assert.Equal(t, n, summary.Samples)
	assert.Equal(t, 16, summary.Found)
	assert.Equal(t, int64(n), s.Stats().Samples)
}

func TestScanPathsEmptyDirectory(t *testing.T) {
	s := newScanner(t, scan.Config{Workers: 2})
	reports, err := s.ScanPaths(context.Background(), []string{t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestScanPathsCancelled(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 8; i++ {
		writeFile(t, dir, fmt.Sprintf("c%d.bin", i), enfalSample("/c"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newScanner(t, scan.Config{Workers: 2})
	reports, err := s.ScanPaths(ctx, []string{dir})
	assert.True(t, errors.Is(err, context.Canceled))
	for _, r := range reports {
		assert.NotNil(t, r)
	}
}
