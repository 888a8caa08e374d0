// =============================================================================
// Scan Audit - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands (like 'process', 'validate') are
// attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (scanaudit)
//   ├── processCmd (scanaudit process)
//   ├── validateCmd (scanaudit validate)
//   └── versionCmd (scanaudit version)
//
// CONFIGURATION:
//   The root command owns the flags shared by every subcommand
//   (--config, --input-dir, --verbose) and the configuration loading that
//   applies them.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flinders-library/scanaudit/internal/config"
	"github.com/flinders-library/scanaudit/internal/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
// When the flag is not given, scanaudit.yaml is used if it exists.
var cfgFile string

// inputDir overrides the configured input directory.
var inputDir string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "scanaudit",
	Short: "Scan Audit - Reconcile scanned archive files against their key numbering",
	Long: `Scan Audit checks a directory of scanned archive files named

  slls_dYYYYMMDD_tTRIP_kBEGIN-END.pdf

and reports gaps and overlaps in the key numbering, duplicated and missing
trips, and files whose page count differs from the expected count.

Example Usage:
  scanaudit process                      # Audit ./src and write reports to ./results
  scanaudit process --config ./my.yaml   # Use a custom configuration file
  scanaudit validate                     # Only check the filenames`,

	// Errors are printed by Execute.
	SilenceErrors: true,
	SilenceUsage:  true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the configuration file (default is "+config.DefaultConfigFile+" if present)",
	)

	rootCmd.PersistentFlags().StringVar(
		&inputDir,
		"input-dir",
		"",
		"Directory holding the scanned files (overrides input_dir)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// CONFIGURATION LOADING
// =============================================================================

// loadConfig reads the configuration file and applies the shared flags.
//
// PARAMETERS:
//   - path: The --config value. Empty falls back to the default file, or
//     to built-in defaults when that file does not exist.
//
// RETURNS:
//   - The validated configuration.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOrDefault(config.DefaultConfigFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if inputDir != "" {
		cfg.InputDir = inputDir
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the console logger for a command.
func newLogger(cmd *cobra.Command, cfg *config.Config) *logger.ConsoleLogger {
	return logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
}
