/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: scan.go
Description: Scan command implementation. Walks files and directories, extracts
configurations concurrently and prints a batch summary.
*/

package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/kleascm/enfal-extractor/pkg/report"
	"github.com/kleascm/enfal-extractor/pkg/scan"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunScan scans paths concurrently
func RunScan(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if _, err := OutputFormat(); err != nil {
		return err
	}

	logger, err := SetupLogging(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer logger.Close()

	scanner, err := scan.New(ScanConfig(), newDecoder(), logger.GetLogger())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "🔍 Scanning %d path(s) with %d workers\n", len(args), scanner.Config().Workers)

	start := time.Now()
	reports, err := scanner.ScanPaths(ctx, args)
	if err != nil && len(reports) == 0 {
		return fmt.Errorf("scan failed: %w", err)
	}
	elapsed := time.Since(start)

	onlyFound := viper.GetBool("only_found")
	for _, r := range reports {
		if onlyFound && !r.Found() {
			continue
		}
		printReport(out, r)
	}

	summary := report.Summarize(reports)
	logger.LogScanSummary(summary.Samples, summary.Found, summary.Errors, elapsed)
	printSummary(cmd, summary, elapsed)

	if werr := writeReports(out, reports); werr != nil {
		return werr
	}
	return err
}

// printSummary prints batch totals
func printSummary(cmd *cobra.Command, s report.Summary, elapsed time.Duration) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "📊 Scan Summary")
	fmt.Fprintln(out, "===============")
	fmt.Fprintf(out, "Samples:  %d\n", s.Samples)
	fmt.Fprintf(out, "Configs:  %d\n", s.Found)
	fmt.Fprintf(out, "Errors:   %d\n", s.Errors)
	fmt.Fprintf(out, "Duration: %v\n", elapsed.Round(time.Millisecond))
	for _, name := range s.FieldNames() {
		fmt.Fprintf(out, "  %-13s %d\n", name, s.Fields[name])
	}
}
