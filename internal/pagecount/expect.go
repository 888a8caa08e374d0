package pagecount

import (
	"github.com/flinders-library/scanaudit/internal/filename"
	"github.com/flinders-library/scanaudit/internal/register"
)

// Expectation predicts the page count of a file. ok is false when there
// is not enough information to make a prediction.
type Expectation interface {
	Expected(rec filename.Record) (pages int, ok bool)
}

// FormulaModel expects two pages per key plus a fixed number of front and
// back sheets.
type FormulaModel struct {
	FixedSheets int
}

// Expected returns 2*keys + FixedSheets. Files without keys contribute no
// key pages.
func (m FormulaModel) Expected(rec filename.Record) (int, bool) {
	return 2*rec.Keys.Len() + m.FixedSheets, true
}

// RegisterModel expects pages from the register entry of each file.
type RegisterModel struct {
	Entries map[string]register.Entry
}

// Expected returns 2*keys + 2*front + back - 2*missing, or false when the
// file has no valid register entry.
func (m RegisterModel) Expected(rec filename.Record) (int, bool) {
	e, ok := m.Entries[rec.Name]
	if !ok || !e.Valid {
		return 0, false
	}
	return 2*rec.Keys.Len() + 2*e.FrontSheets + e.BackSheets - 2*e.MissingKeys, true
}
