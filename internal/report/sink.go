package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/flinders-library/scanaudit/internal/filelock"
)

// =============================================================================
// SINK INTERFACE
// =============================================================================

// Sink receives finished report tables.
type Sink interface {
	Write(t *Table) error
	Close() error
}

// =============================================================================
// CSV SINK
// =============================================================================

// CSVSink writes each table to its own CSV file in Dir. Files are replaced
// atomically.
type CSVSink struct {
	Dir string

	// FileName maps a report name to its file name inside Dir.
	FileName func(report string) string

	written []string
}

// NewCSVSink creates a CSV sink writing into dir.
//
// PARAMETERS:
//   - dir: The output directory.
//   - fileName: Maps report names to file names. nil uses "<report>.csv".
func NewCSVSink(dir string, fileName func(string) string) *CSVSink {
	if fileName == nil {
		fileName = func(report string) string { return report + ".csv" }
	}
	return &CSVSink{Dir: dir, FileName: fileName}
}

// Write writes the header and every row of t.
func (s *CSVSink) Write(t *Table) error {
	path := filepath.Join(s.Dir, s.FileName(t.Name))

	err := filelock.WriteWith(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(t.Header); err != nil {
			return err
		}
		if err := cw.WriteAll(t.Rows); err != nil {
			return err
		}
		return cw.Error()
	})
	if err != nil {
		return fmt.Errorf("failed to write report %s: %w", t.Name, err)
	}

	s.written = append(s.written, path)
	return nil
}

// Written lists the files written so far.
func (s *CSVSink) Written() []string { return s.written }

// Close is a no-op; every file is complete once Write returns.
func (s *CSVSink) Close() error { return nil }

// =============================================================================
// WORKBOOK SINK
// =============================================================================

// WorkbookSink collects every table as a sheet of one XLSX workbook, saved
// on Close.
type WorkbookSink struct {
	Path string

	file   *excelize.File
	sheets int
}

// NewWorkbookSink creates a workbook sink saving to path.
func NewWorkbookSink(path string) *WorkbookSink {
	return &WorkbookSink{Path: path, file: excelize.NewFile()}
}

// Write adds t as a sheet named after the report. Numeric fields are
// stored as numbers.
func (s *WorkbookSink) Write(t *Table) error {
	sheet := sheetName(t.Name)
	if s.sheets == 0 {
		if err := s.file.SetSheetName(s.file.GetSheetName(0), sheet); err != nil {
			return fmt.Errorf("failed to name sheet %s: %w", sheet, err)
		}
	} else if _, err := s.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	s.sheets++

	if err := s.setRow(sheet, 1, t.Header); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := s.setRow(sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (s *WorkbookSink) setRow(sheet string, row int, fields []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(fields))
	for i, f := range fields {
		if n, err := strconv.Atoi(f); err == nil {
			values[i] = n
		} else {
			values[i] = f
		}
	}
	if err := s.file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of sheet %s: %w", row, sheet, err)
	}
	return nil
}

// Close saves the workbook atomically and releases it. Nothing is saved
// when no table was written.
func (s *WorkbookSink) Close() error {
	defer s.file.Close()
	if s.sheets == 0 {
		return nil
	}

	s.file.SetActiveSheet(0)
	err := filelock.WriteWith(s.Path, func(w io.Writer) error {
		_, err := s.file.WriteTo(w)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", s.Path, err)
	}
	return nil
}

// Excel limits sheet names to 31 characters.
func sheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	return name
}

// =============================================================================
// MULTI SINK
// =============================================================================

// MultiSink writes every table to each of its sinks in order.
type MultiSink []Sink

func (m MultiSink) Write(t *Table) error {
	for _, s := range m {
		if err := s.Write(t); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
