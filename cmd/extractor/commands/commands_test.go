/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: commands_test.go
Description: End-to-end tests of the command tree against synthetic samples.
*/

package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/kleascm/enfal-extractor/pkg/anchor"
	"github.com/kleascm/enfal-extractor/pkg/report"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFile(t *testing.T, dir, name string) string {
	t.Helper()
	buf := make([]byte, 0x1700)
	base := 0x40
	copy(buf[base:], []byte{0xBF, 0x49, 0xAA, 0x75, 0x22, 0x12, 0xBB, 0x75})
	copy(buf[base+8:], "Kernel32.dll")
	copy(buf[base+0xE8:], "http://evil.example/c2\x00")
	copy(buf[base+0x14B0:], "svcname\x00")
	copy(buf[base+0x14C0:], "C:\\a.exe,C:\\b.exe\x00")

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf, 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color", "--log-level", "error"}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestExtractCommand(t *testing.T) {
	dir := t.TempDir()
	sample := sampleFile(t, dir, "enfal.bin")
	outDir := filepath.Join(dir, "reports")

	out, err := execute(t, "extract", "--output-dir", outDir, "--format", "yaml", sample)
	require.NoError(t, err)
	assert.Contains(t, out, "$config at 0x40")
	assert.Contains(t, out, "http://evil.example/c2")
	assert.Contains(t, out, "service@0x14b0")

	files, err := filepath.Glob(filepath.Join(outDir, "*.yaml"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	r, err := report.Decode(data, report.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, []string{"C:\\a.exe", "C:\\b.exe"}, r.Values("filepath"))
	assert.Equal(t, []string{"svcname"}, r.Values("servicename"))
}

func TestExtractCommandMissingFile(t *testing.T) {
	_, err := execute(t, "extract", filepath.Join(t.TempDir(), "missing.bin"))
	assert.Error(t, err)
}

func TestExtractCommandBadFormat(t *testing.T) {
	sample := sampleFile(t, t.TempDir(), "enfal.bin")
	_, err := execute(t, "extract", "--format", "xml", sample)
	assert.ErrorIs(t, err, report.ErrUnknownFormat)
}

func TestScanCommand(t *testing.T) {
	dir := t.TempDir()
	sampleFile(t, dir, "one.bin")
	sampleFile(t, dir, "two.bin")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clean.bin"), []byte("clean"), 0644))

	out, err := execute(t, "scan", "--workers", "2", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Samples:  3")
	assert.Contains(t, out, "Configs:  2")
	assert.Contains(t, out, "no configuration found")
}

func TestRuleCommand(t *testing.T) {
	out, err := execute(t, "rule")
	require.NoError(t, err)
	assert.Contains(t, out, anchor.EnfalConfigHex)
	assert.Contains(t, out, "20 bytes (2 wildcards)")
	assert.Contains(t, out, "0x13b0")
}

func TestCheckCommand(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	out, err := execute(t, "check", "--output-dir", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "All checks passed")
	assert.DirExists(t, outDir)

	_, err = execute(t, "check", "--log-level", "loud")
	assert.Error(t, err)
}
