// =============================================================================
// Scan Audit - Report Module
// =============================================================================
//
// This module turns reconciliation results into named report tables and
// hands them to one or more sinks.
//
// REPORTS (header, one table each):
//   keys                key,filename,date,trip
//   key_overlap         overlap_file1,overlap_file2
//   key_gap             key_begin,key_end,gap_overlap,files
//   no_keys             date,trip,file_without_keys
//   known_dup_keys      key,files,comment,detected
//   trip_dup            trip,files_with_duplicate_trip
//   trip_gap            trip_begin,trip_end,gap_status
//   num_pages_actual    filename,actual_npages,comment
//   num_pages_expected  filename,actual_npages,expected_npages,comment
//   num_pages_file_reg  filename,actual_npages,expected_npages,comment
//
// List-valued fields (files) are joined with FileSeparator.
//
// =============================================================================

package report

// FileSeparator joins file lists inside a single field.
const FileSeparator = "|"

// =============================================================================
// TABLE
// =============================================================================

// Table is one report: a name, a header, and rows of string fields.
type Table struct {
	// Name is the report name (see config.AllReports).
	Name string

	Header []string
	Rows   [][]string
}

// NewTable creates an empty table with the given header.
func NewTable(name string, header ...string) *Table {
	return &Table{Name: name, Header: header}
}

// Add appends a row.
func (t *Table) Add(fields ...string) {
	t.Rows = append(t.Rows, fields)
}

// Len is the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }
