/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the extractor commands. Provides configuration loading,
logging setup and report output helpers used across all command implementations.
*/

package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/kleascm/enfal-extractor/pkg/decoder"
	"github.com/kleascm/enfal-extractor/pkg/logging"
	"github.com/kleascm/enfal-extractor/pkg/report"
	"github.com/kleascm/enfal-extractor/pkg/scan"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by the extractor
const EnvPrefix = "ENFAL"

// LoadConfig loads configuration from the optional config file and environment
func LoadConfig() error {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return nil
}

// LoggerConfig builds the logger configuration from viper
func LoggerConfig(console io.Writer) *logging.LoggerConfig {
	cfg := logging.DefaultConfig()
	if level := viper.GetString("log_level"); level != "" {
		cfg.Level = logging.LogLevel(level)
	}
	if format := viper.GetString("log_format"); format != "" {
		cfg.Format = logging.LogFormat(format)
	}
	cfg.OutputDir = viper.GetString("log_dir")
	if maxFiles := viper.GetInt("log_max_files"); maxFiles > 0 {
		cfg.MaxFiles = maxFiles
	}
	cfg.Colors = !viper.GetBool("no_color")
	cfg.Console = console
	return cfg
}

// SetupLogging creates the logger for a command run
func SetupLogging(console io.Writer) (*logging.Logger, error) {
	logger, err := logging.NewLogger(LoggerConfig(console))
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// ScanConfig builds the scanner configuration from viper
func ScanConfig() scan.Config {
	return scan.Config{
		Workers:     viper.GetInt("workers"),
		MaxFileSize: viper.GetInt64("max_file_size"),
		Recursive:   viper.GetBool("recursive"),
	}
}

// OutputFormat returns the configured report format
func OutputFormat() (report.Format, error) {
	format := viper.GetString("output_format")
	if format == "" {
		return report.FormatJSON, nil
	}
	return report.ParseFormat(format)
}

// printReport writes a human readable view of one report
func printReport(w io.Writer, r *report.Report) {
	switch {
	case r.Error != "":
		fmt.Fprintf(w, "❌ %s: %s\n", r.Sample, r.Error)
		return
	case !r.Found():
		fmt.Fprintf(w, "📭 %s: no configuration found\n", r.Sample)
		return
	}

	fmt.Fprintf(w, "🎯 %s: %s at %#x (%d fields)\n", r.Sample, r.Anchor.PatternID, r.Anchor.Offset, len(r.Fields))
	for _, f := range r.Fields {
		fmt.Fprintf(w, "   %-13s %s\n", f.Name, f.Value)
	}
	if len(r.Layout) > 0 {
		fmt.Fprintf(w, "   %-13s %s\n", "layout", strings.Join(r.Layout, ", "))
	}
}

// writeReports writes reports to the configured output directory, if any
func writeReports(w io.Writer, reports []*report.Report) error {
	dir := viper.GetString("output_dir")
	if dir == "" {
		return nil
	}
	format, err := OutputFormat()
	if err != nil {
		return err
	}

	for _, r := range reports {
		path, err := report.Write(dir, r, format)
		if err != nil {
			return fmt.Errorf("failed to write report for %s: %w", r.Sample, err)
		}
		fmt.Fprintf(w, "💾 Report saved to: %s\n", path)
	}
	return nil
}

// newDecoder returns the decoder used by all commands
func newDecoder() *decoder.Decoder {
	return decoder.NewEnfal()
}
