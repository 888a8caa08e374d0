// =============================================================================
// Scan Audit - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks every filename in
// the input directory without writing any report.
//
// COMMAND USAGE:
//   scanaudit validate [--config f] [--input-dir d]
//
// EXIT STATUS:
//   0 if every filename is valid (or there is nothing to check), 1 otherwise.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/flinders-library/scanaudit/internal/config"
	"github.com/flinders-library/scanaudit/internal/filename"
	"github.com/flinders-library/scanaudit/internal/validation"
	"github.com/flinders-library/scanaudit/pkg/utils"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the scanned filenames without writing reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cfgFile)
		if err != nil {
			return err
		}
		return runValidate(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// runValidate lists the input directory and reports invalid filenames on
// stderr.
func runValidate(cfg *config.Config, stdout, stderr io.Writer) error {
	parser, err := filename.NewParser(cfg.Naming)
	if err != nil {
		return fmt.Errorf("failed to create filename parser: %w", err)
	}

	files, err := utils.NewFileManager(cfg.InputDir, cfg.OutputDir).DiscoverScanFiles(cfg.MinFileIndex, cfg.MaxFileIndex)
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}
	if len(files) == 0 {
		fmt.Fprintf(stdout, "Quitting! No files to process in folder %s\n", cfg.InputDir)
		return nil
	}

	result := validation.Validate(parser, files)
	if !result.Valid() {
		validation.WriteDiagnostics(stderr, result, parser)
		return fmt.Errorf("%d of %d filenames are invalid", result.Rejected, len(files))
	}

	fmt.Fprintf(stdout, "All %d filenames are valid (%d with keys, %d without)\n", len(files), len(result.Keyed), len(result.NoKeys))
	return nil
}
