// =============================================================================
// Scan Audit - Process Command
// =============================================================================
//
// This file defines the 'process' command, which is the main command for
// auditing a directory of scanned files.
//
// COMMAND USAGE:
//   scanaudit process [flags]
//
// FLAGS:
//   --output-dir  : Directory for the reports (overrides output_dir)
//   --min-index   : First file of the sorted listing to audit (1-based)
//   --max-index   : Last file of the sorted listing to audit (1-based)
//   --report      : Report to generate (repeatable; default all)
//   --workbook    : Also write every report into one XLSX workbook
//
// PROCESSING PIPELINE:
//   1. Load configuration
//   2. Lock the output directory
//   3. Discover the scanned files in the input directory
//   4. Validate filenames (stop with diagnostics if any is invalid)
//   5. Write every enabled report
//   6. Write the run summary
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/flinders-library/scanaudit/internal/audit"
	"github.com/flinders-library/scanaudit/internal/config"
	"github.com/flinders-library/scanaudit/internal/filelock"
	"github.com/flinders-library/scanaudit/internal/logger"
	"github.com/flinders-library/scanaudit/internal/report"
	"github.com/flinders-library/scanaudit/internal/validation"
	"github.com/flinders-library/scanaudit/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// outputDir overrides the configured output directory.
var outputDir string

// minIndex and maxIndex override the configured file window (0 = unset).
var minIndex, maxIndex int

// reports overrides the configured report selection.
var reports []string

// workbook overrides the configured workbook path.
var workbook string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Audit the scanned files and write the reports",
	Long: `The process command lists the scanned files in the input directory,
validates every filename, and writes the audit reports to the output
directory.

If any filename is invalid, every offending file is listed with the rule it
broke and no report is written.

Reports:
  keys, key_overlap, key_gap, no_keys, known_dup_keys, trip_dup, trip_gap,
  num_pages_actual, num_pages_expected, num_pages_file_reg`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cfgFile)
		if err != nil {
			return err
		}
		if err := applyProcessFlags(cfg); err != nil {
			return err
		}
		return runProcess(cmd.Context(), cfg, newLogger(cmd, cfg), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for the reports (overrides output_dir)")
	processCmd.Flags().IntVar(&minIndex, "min-index", 0, "First file of the sorted listing to audit, from 1")
	processCmd.Flags().IntVar(&maxIndex, "max-index", 0, "Last file of the sorted listing to audit")
	processCmd.Flags().StringSliceVar(&reports, "report", nil, "Report to generate (repeatable, default all)")
	processCmd.Flags().StringVar(&workbook, "workbook", "", "Also write all reports to this XLSX workbook")
}

// applyProcessFlags copies the flags that were given onto cfg.
func applyProcessFlags(cfg *config.Config) error {
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if minIndex != 0 {
		cfg.MinFileIndex = minIndex
	}
	if maxIndex != 0 {
		cfg.MaxFileIndex = maxIndex
	}
	if len(reports) > 0 {
		cfg.Reports = reports
	}
	if workbook != "" {
		cfg.Outputs.Workbook = workbook
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess audits cfg.InputDir and writes the reports to cfg.OutputDir.
//
// PARAMETERS:
//   - stdout: Receives the progress summary.
//   - stderr: Receives filename diagnostics.
//
// RETURNS:
//   - nil on success, including when there is nothing to audit.
func runProcess(ctx context.Context, cfg *config.Config, log logger.Logger, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fmt.Fprintln(stdout, "=== Scan Audit ===")

	// =========================================================================
	// STEP 1: PREPARE DIRECTORIES
	// =========================================================================

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir)
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	lock, err := filelock.Acquire(cfg.OutputDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.Warn("%v", err)
		}
	}()

	// =========================================================================
	// STEP 2: DISCOVER SCANNED FILES
	// =========================================================================

	files, err := fm.DiscoverScanFiles(cfg.MinFileIndex, cfg.MaxFileIndex)
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}
	if len(files) == 0 {
		fmt.Fprintf(stdout, "Quitting! No files to process in folder %s\n", cfg.InputDir)
		return nil
	}
	fmt.Fprintf(stdout, "Found %d file(s) to audit\n", len(files))

	// =========================================================================
	// STEP 3: AUDIT
	// =========================================================================

	sink := newSink(cfg)
	auditor, err := audit.New(cfg, sink, audit.WithLogger(log))
	if err != nil {
		return err
	}

	summary, err := auditor.Run(ctx, files)
	if err != nil {
		sink.Close()
		var invalid *audit.InvalidFilenamesError
		if errors.As(err, &invalid) {
			validation.WriteDiagnostics(stderr, invalid.Result, auditor.Parser())
		}
		return err
	}
	if err := sink.Close(); err != nil {
		return err
	}

	// =========================================================================
	// STEP 4: SUMMARY
	// =========================================================================

	path, err := utils.WriteSummaryLog(runSummary(cfg, summary), cfg.OutputDir)
	if err != nil {
		log.Warn("Failed to write run summary: %v", err)
	}

	fmt.Fprintln(stdout, "\n=== Audit Complete ===")
	fmt.Fprintf(stdout, "Run ID:           %s\n", summary.RunID)
	fmt.Fprintf(stdout, "Files:            %d (%d with keys, %d without)\n", summary.TotalFiles, summary.KeyedFiles, summary.NoKeyFiles)
	fmt.Fprintf(stdout, "Reports:          %d\n", len(summary.Reports))
	fmt.Fprintf(stdout, "Warnings:         %d\n", len(summary.Warnings))
	fmt.Fprintf(stdout, "Time elapsed:     %s\n", summary.EndTime.Sub(summary.StartTime))
	if path != "" {
		fmt.Fprintf(stdout, "Summary:          %s\n", path)
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// newSink writes CSV reports, plus the workbook when one is configured.
func newSink(cfg *config.Config) report.Sink {
	csvSink := report.NewCSVSink(cfg.OutputDir, cfg.OutputFile)
	if cfg.Outputs.Workbook == "" {
		return csvSink
	}

	path := cfg.Outputs.Workbook
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.OutputDir, path)
	}
	return report.MultiSink{csvSink, report.NewWorkbookSink(path)}
}

func runSummary(cfg *config.Config, s *audit.Summary) utils.RunSummary {
	out := utils.RunSummary{
		RunID:      s.RunID,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		InputDir:   cfg.InputDir,
		OutputDir:  cfg.OutputDir,
		TotalFiles: s.TotalFiles,
		KeyedFiles: s.KeyedFiles,
		NoKeyFiles: s.NoKeyFiles,
		Warnings:   s.Warnings,
	}
	for _, r := range s.Reports {
		out.Reports = append(out.Reports, utils.ReportInfo{Name: r.Name, Rows: r.Rows})
	}
	return out
}
