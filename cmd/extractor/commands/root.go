/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: root.go
Description: Command tree for the Enfal extractor. Declares commands and flags and binds
every flag to viper so values can also come from a config file or ENFAL_* variables.
*/

package commands

import (
	"github.com/kleascm/enfal-extractor/pkg/scan"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version of the extractor
const Version = "1.0.0"

// NewRootCommand builds the full command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "enfal-extractor",
		Short: "Enfal Extractor - configuration extraction for Enfal samples",
		Long: `Enfal Extractor locates the Enfal configuration blob inside sample images and
decodes its C2 address, C2 URL, registry path, service name and file paths. Samples can be
decoded one by one or scanned in bulk, with reports written as JSON, YAML or CBOR.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add persistent flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Configuration file path")
	flags.String("log-level", "info", "Logging level (debug, info, warn, error)")
	flags.String("log-format", "custom", "Log format (text, json, custom)")
	flags.String("log-dir", "", "Log output directory (empty for console only)")
	flags.Int("log-max-files", 10, "Maximum number of log files to keep")
	flags.Bool("no-color", false, "Disable coloured log output")
	flags.String("output-dir", "", "Directory for report files (empty to skip)")
	flags.String("format", "json", "Report format (json, yaml, cbor)")
	flags.Int64("max-file-size", scan.DefaultMaxFileSize, "Maximum sample size in bytes")

	// Bind flags to viper
	viper.BindPFlag("config", flags.Lookup("config"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
	viper.BindPFlag("log_dir", flags.Lookup("log-dir"))
	viper.BindPFlag("log_max_files", flags.Lookup("log-max-files"))
	viper.BindPFlag("no_color", flags.Lookup("no-color"))
	viper.BindPFlag("output_dir", flags.Lookup("output-dir"))
	viper.BindPFlag("output_format", flags.Lookup("format"))
	viper.BindPFlag("max_file_size", flags.Lookup("max-file-size"))

	// Add extract command
	extractCmd := &cobra.Command{
		Use:   "extract <sample>...",
		Short: "Extract the configuration from sample files",
		Long: `Decode the Enfal configuration from each sample in turn and print the decoded
fields. Samples without the configuration anchor are reported and skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: RunExtract,
	}
	rootCmd.AddCommand(extractCmd)

	// Add scan command
	scanCmd := &cobra.Command{
		Use:   "scan <path>...",
		Short: "Scan files and directories concurrently",
		Long: `Scan files and directories with a pool of workers, extract every configuration
found and print a batch summary.`,
		Args: cobra.MinimumNArgs(1),
		RunE: RunScan,
	}
	scanCmd.Flags().Int("workers", 0, "Number of parallel workers (0 = auto-detect)")
	scanCmd.Flags().Bool("recursive", false, "Descend into subdirectories")
	scanCmd.Flags().Bool("only-found", false, "Only print samples with a configuration")
	viper.BindPFlag("workers", scanCmd.Flags().Lookup("workers"))
	viper.BindPFlag("recursive", scanCmd.Flags().Lookup("recursive"))
	viper.BindPFlag("only_found", scanCmd.Flags().Lookup("only-found"))
	rootCmd.AddCommand(scanCmd)

	// Add rule command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "rule",
		Short: "Show the configuration anchor and field layout",
		Args:  cobra.NoArgs,
		RunE:  ShowRule,
	})

	// Add check command for built-in self-checks
	rootCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate configuration and output locations",
		Args:  cobra.NoArgs,
		RunE:  PerformSelfCheck,
	})

	return rootCmd
}
