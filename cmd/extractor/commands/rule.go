/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: rule.go
Description: Rule and self-check commands. Shows the compiled anchor pattern and field
layout, and validates configuration before a batch run.
*/

package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kleascm/enfal-extractor/pkg/decoder"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ShowRule prints the anchor pattern and field offsets
func ShowRule(cmd *cobra.Command, args []string) error {
	dec := newDecoder()
	p := dec.Pattern()
	layout := dec.Layout()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "🧬 Enfal Configuration Anchor")
	fmt.Fprintln(out, "=============================")
	fmt.Fprintf(out, "Pattern:   %s\n", p.ID())
	fmt.Fprintf(out, "Length:    %d bytes (%d wildcards)\n", p.Len(), p.Wildcards())
	fmt.Fprintf(out, "Hex:       { %s }\n", p.String())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "📋 Field Offsets (anchor relative)")
	fmt.Fprintf(out, "  %-13s %#x\n", decoder.FieldC2Address, layout.C2Address)
	fmt.Fprintf(out, "  %-13s %#x\n", decoder.FieldC2URL, layout.C2URL)
	for i, off := range layout.RegistryPaths {
		fmt.Fprintf(out, "  %-13s %#x (candidate %d, sentinel 'S')\n", decoder.FieldRegistryPath, off, i+1)
	}
	fmt.Fprintf(out, "  %-13s %#x (sentinel 'C', first entry only)\n", decoder.FieldFilePath, layout.CommandLine)
	for i, slot := range layout.ServiceSlots {
		fmt.Fprintf(out, "  %-13s %#x, paths %#x (candidate %d)\n", decoder.FieldServiceName, slot.Name, slot.Paths, i+1)
	}
	return nil
}

// PerformSelfCheck validates configuration, logging and the output directory
func PerformSelfCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🔧 Enfal Extractor - Self Check")
	fmt.Fprintln(out, "===============================")

	if err := LoadConfig(); err != nil {
		fmt.Fprintf(out, "❌ Configuration: %v\n", err)
		return err
	}
	fmt.Fprintln(out, "✅ Configuration loaded")

	if err := LoggerConfig(nil).Validate(); err != nil {
		fmt.Fprintf(out, "❌ Logging: %v\n", err)
		return err
	}
	fmt.Fprintln(out, "✅ Logging configuration valid")

	if _, err := OutputFormat(); err != nil {
		fmt.Fprintf(out, "❌ Output format: %v\n", err)
		return err
	}
	cfg := ScanConfig()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(out, "❌ Scan configuration: %v\n", err)
		return err
	}
	fmt.Fprintf(out, "✅ Scan configuration valid (%d workers)\n", cfg.Workers)

	if dir := viper.GetString("output_dir"); dir != "" {
		if err := checkWritable(dir); err != nil {
			fmt.Fprintf(out, "❌ Output directory: %v\n", err)
			return err
		}
		fmt.Fprintf(out, "✅ Output directory writable: %s\n", dir)
	}

	fmt.Fprintln(out, "✨ All checks passed")
	return nil
}

// checkWritable creates dir if needed and verifies a file can be written in it
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	probe := filepath.Join(dir, ".write-check")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	return os.Remove(probe)
}
