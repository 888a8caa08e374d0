package register

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// XLSXLoader reads the register from a worksheet of an XLSX workbook. The
// first row of the sheet is the header.
type XLSXLoader struct {
	Path string

	// Sheet is the worksheet name; empty selects the first sheet.
	Sheet string

	Columns Columns
}

// Load reads and converts the worksheet.
func (l *XLSXLoader) Load() (map[string]Entry, error) {
	if _, err := os.Stat(l.Path); err != nil {
		return nil, unavailable(l.Path, err)
	}

	f, err := excelize.OpenFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open register %s: %w", l.Path, err)
	}
	defer f.Close()

	sheet := l.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, fmt.Errorf("register %s has no sheets", l.Path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of register %s: %w", sheet, l.Path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("register %s sheet %q is empty", l.Path, sheet)
	}

	entries, err := FromRows(rows[0], rows[1:], l.Columns)
	if err != nil {
		return nil, fmt.Errorf("failed to parse register %s: %w", l.Path, err)
	}
	return entries, nil
}
