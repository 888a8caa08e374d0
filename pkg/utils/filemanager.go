// =============================================================================
// Scan Audit - File Manager Utility
// =============================================================================
//
// This module provides the file-system side of an audit run:
//   - Directory management
//   - Discovery of the scanned files to audit
//   - Run summary generation
//
// DISCOVERY:
//   Entries of the input directory are sorted by name; directories are
//   skipped. A (min, max) index window, counted from 1 over the remaining
//   regular files, selects a slice of the listing for partial runs.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/flinders-library/scanaudit/internal/filelock"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for an audit run.
type FileManager struct {
	// InputDir is the directory holding the scanned files.
	InputDir string

	// OutputDir is the directory where reports are written.
	OutputDir string
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir string) *FileManager {
	return &FileManager{
		InputDir:  inputDir,
		OutputDir: outputDir,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output directory if it doesn't exist. The
// input directory must already exist.
//
// RETURNS:
//   - An error if the input directory is missing or the output directory
//     cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	info, err := os.Stat(fm.InputDir)
	if err != nil {
		return fmt.Errorf("failed to open input directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input path %s is not a directory", fm.InputDir)
	}

	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverScanFiles lists the regular files of the input directory.
//
// PARAMETERS:
//   - minIndex: The 1-based index of the first file to include.
//   - maxIndex: The 1-based index of the last file to include.
//
// RETURNS:
//   - The selected base filenames, sorted by name. Empty when the window
//     selects nothing.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverScanFiles(minIndex, maxIndex int) ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		// Follow symlinks so a link to a directory is skipped too.
		info, err := os.Stat(filepath.Join(fm.InputDir, e.Name()))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var selected []string
	for i, name := range names {
		index := i + 1
		if index < minIndex {
			continue
		}
		if index > maxIndex {
			break
		}
		selected = append(selected, name)
	}
	return selected, nil
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary contains summary information about an audit run.
type RunSummary struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time
	InputDir  string
	OutputDir string

	TotalFiles int
	KeyedFiles int
	NoKeyFiles int

	Reports  []ReportInfo
	Warnings []string
}

// ReportInfo describes one written report.
type ReportInfo struct {
	Name string
	Rows int
}

// WriteSummaryLog writes a run summary to a file in outputDir.
//
// PARAMETERS:
//   - summary: The run summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary RunSummary, outputDir string) (string, error) {
	timestamp := summary.StartTime.Format("20060102_150405")
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("run_summary_%s.txt", timestamp))

	err := filelock.WriteWith(summaryPath, func(w io.Writer) error {
		return writeSummary(bufio.NewWriter(w), summary)
	})
	if err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}
	return summaryPath, nil
}

func writeSummary(writer *bufio.Writer, summary RunSummary) error {
	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "Scan Audit - Run Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Input:          %s\n"+
		"  Output:         %s\n\n"+
		"Statistics:\n"+
		"  Total Files:        %d\n"+
		"  Files With Keys:    %d\n"+
		"  Files Without Keys: %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.InputDir,
		summary.OutputDir,
		summary.TotalFiles,
		summary.KeyedFiles,
		summary.NoKeyFiles)

	if len(summary.Reports) > 0 {
		writer.WriteString("Reports:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, r := range summary.Reports {
			fmt.Fprintf(writer, "  %-20s %d rows\n", r.Name, r.Rows)
		}
		writer.WriteString("\n")
	}

	if len(summary.Warnings) > 0 {
		writer.WriteString("Warnings:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, w := range summary.Warnings {
			fmt.Fprintf(writer, "  %s\n", w)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	return writer.Flush()
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
