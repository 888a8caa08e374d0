// =============================================================================
// Scanned File Audit - File Name Register
// =============================================================================
//
// This module loads the externally maintained file-name register: a table
// with one row per scanned file recording how many front and back sheets it
// holds and which keys inside its range are missing. The register is the
// ground truth used to predict the page count of each file.
//
// FORMATS:
//   - CSV  (encoding/csv, header row required)
//   - XLSX (excelize, first sheet or a named sheet)
//
// Both formats are header-driven: columns are found by name, so extra
// columns and column order do not matter.
//
// =============================================================================

package register

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/flinders-library/scanaudit/internal/config"
)

// ErrUnavailable is returned when the register file does not exist.
var ErrUnavailable = errors.New("register not available")

// MissingKeysSeparator divides the entries of the missing-keys column.
const MissingKeysSeparator = "|"

// =============================================================================
// REGISTER ENTRY
// =============================================================================

// Entry is one row of the register.
type Entry struct {
	Filename    string
	FrontSheets int
	BackSheets  int

	// MissingKeys is the number of keys within the file's range that were
	// never captured.
	MissingKeys int

	// Valid is true only when every required field parsed as a
	// non-negative integer.
	Valid bool
}

// Loader loads the register keyed by filename.
type Loader interface {
	Load() (map[string]Entry, error)
}

// Columns names the register columns.
type Columns struct {
	Filename    string
	FrontSheets string
	BackSheets  string
	MissingKeys string
}

// ColumnsFrom extracts the column names from the register configuration.
func ColumnsFrom(r config.Register) Columns {
	return Columns{
		Filename:    r.FilenameColumn,
		FrontSheets: r.FrontSheetsColumn,
		BackSheets:  r.BackSheetsColumn,
		MissingKeys: r.MissingKeysColumn,
	}
}

// Open returns the loader matching the register file extension.
func Open(r config.Register) Loader {
	cols := ColumnsFrom(r)
	if strings.EqualFold(filepath.Ext(r.Path), ".xlsx") {
		return &XLSXLoader{Path: r.Path, Sheet: r.Sheet, Columns: cols}
	}
	return &CSVLoader{Path: r.Path, Columns: cols}
}

// =============================================================================
// ROW CONVERSION
// =============================================================================

// FromRows builds the register from a header row and data rows. Rows with
// an empty filename are skipped; a later row for the same filename replaces
// an earlier one.
func FromRows(header []string, rows [][]string, cols Columns) (map[string]Entry, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	find := func(name string) (int, error) {
		i, ok := index[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, fmt.Errorf("register has no %q column", name)
		}
		return i, nil
	}

	fileCol, err := find(cols.Filename)
	if err != nil {
		return nil, err
	}
	frontCol, err := find(cols.FrontSheets)
	if err != nil {
		return nil, err
	}
	backCol, err := find(cols.BackSheets)
	if err != nil {
		return nil, err
	}
	missingCol, err := find(cols.MissingKeys)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]Entry, len(rows))
	for _, row := range rows {
		cell := func(i int) string {
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}

		name := cell(fileCol)
		if name == "" {
			continue
		}

		front, frontOK := nonNegative(cell(frontCol))
		back, backOK := nonNegative(cell(backCol))
		missing, missingOK := countMissing(cell(missingCol))

		entries[name] = Entry{
			Filename:    name,
			FrontSheets: front,
			BackSheets:  back,
			MissingKeys: missing,
			Valid:       frontOK && backOK && missingOK,
		}
	}

	return entries, nil
}

func nonNegative(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// countMissing counts the pipe-delimited keys of the missing-keys column.
// An empty cell means no missing keys.
func countMissing(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	parts := strings.Split(s, MissingKeysSeparator)
	for _, p := range parts {
		if _, ok := nonNegative(strings.TrimSpace(p)); !ok {
			return len(parts), false
		}
	}
	return len(parts), true
}

// unavailable wraps a missing-file error with ErrUnavailable.
func unavailable(path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrUnavailable, path)
	}
	return fmt.Errorf("failed to open register %s: %w", path, err)
}
