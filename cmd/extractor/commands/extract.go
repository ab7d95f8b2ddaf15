/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: extract.go
Description: Extract command implementation. Decodes the Enfal configuration from each
sample given on the command line, prints the decoded fields and optionally saves reports.
*/

package commands

import (
	"context"
	"fmt"

	"github.com/kleascm/enfal-extractor/pkg/logging"
	"github.com/kleascm/enfal-extractor/pkg/report"
	"github.com/kleascm/enfal-extractor/pkg/scan"
	"github.com/spf13/cobra"
)

// RunExtract decodes each sample file in order
func RunExtract(cmd *cobra.Command, args []string) error {
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

	cfg := ScanConfig()
	cfg.Workers = 1
	scanner, err := scan.New(cfg, newDecoder(), logger.GetLogger())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	reports := make([]*report.Report, 0, len(args))
	for _, path := range args {
		r, _ := scanner.ScanFile(ctx, path)
		if r == nil {
			return ctx.Err()
		}
		logExtraction(logger, r)
		printReport(out, r)
		reports = append(reports, r)
	}

	if err := writeReports(out, reports); err != nil {
		return err
	}

	summary := report.Summarize(reports)
	if summary.Errors == len(reports) && len(reports) > 0 {
		return fmt.Errorf("no sample could be read")
	}
	return nil
}

// logExtraction records the outcome of a single sample
func logExtraction(logger *logging.Logger, r *report.Report) {
	if r.Error != "" {
		logger.Error("Sample failed", map[string]interface{}{"sample": r.Sample, "error": r.Error})
		return
	}
	logger.LogSample(r.Sample, r.Size)
	if !r.Found() {
		logger.LogNoConfig(r.Sample)
		return
	}
	for _, f := range r.Fields {
		logger.LogField(r.Sample, f.Name, f.Value)
	}
	logger.LogConfigFound(r.Sample, r.Anchor.PatternID, r.Anchor.Offset, len(r.Fields))
}
