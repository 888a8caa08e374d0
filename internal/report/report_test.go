package report

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/flinders-library/scanaudit/internal/config"
	"github.com/flinders-library/scanaudit/internal/filename"
	"github.com/flinders-library/scanaudit/internal/pagecount"
	"github.com/flinders-library/scanaudit/internal/reconcile"
)

func rec(name string, date string, trip filename.TripID, begin, end int) filename.Record {
	d, _ := time.Parse(filename.DateLayout, date)
	return filename.Record{Name: name, Date: d, Trip: trip, Keys: filename.KeyRange{Begin: begin, End: end}, Ext: "pdf"}
}

func TestKeys(t *testing.T) {
	records := []filename.Record{
		rec("a.pdf", "1986-09-30", filename.TripID{Raw: "241a", Number: 241, Suffix: "a"}, 4, 6),
		rec("none.pdf", "1986-10-01", filename.TripID{Raw: "242", Number: 242}, 0, 0),
		rec("b.pdf", "1986-10-02", filename.TripID{Raw: "243", Number: 243}, 7, 7),
	}

	tbl := Keys(records)

	assert.Equal(t, config.ReportKeys, tbl.Name)
	assert.Equal(t, []string{"key", "filename", "date", "trip"}, tbl.Header)
	assert.Equal(t, [][]string{
		{"4", "a.pdf", "1986-09-30", "241a"},
		{"5", "a.pdf", "1986-09-30", "241a"},
		{"6", "a.pdf", "1986-09-30", "241a"},
		{"7", "b.pdf", "1986-10-02", "243"},
	}, tbl.Rows)
}

func TestKeyGapsAndOverlaps(t *testing.T) {
	segments := []reconcile.Segment{
		{Begin: 1, End: 9, Label: reconcile.Gap},
		{Begin: 10, End: 25, Label: reconcile.Overlap, Files: []string{"a.pdf", "b.pdf"}},
		{Begin: 26, End: 30, Label: reconcile.Normal, Files: []string{"c.pdf"}},
	}

	gaps := KeyGaps(segments)
	assert.Equal(t, []string{"key_begin", "key_end", "gap_overlap", "files"}, gaps.Header)
	assert.Equal(t, [][]string{
		{"1", "9", "gap", ""},
		{"10", "25", "overlap", "a.pdf|b.pdf"},
		{"26", "30", "", "c.pdf"},
	}, gaps.Rows)

	pairs := KeyOverlaps([]reconcile.Pair{{First: "a.pdf", Second: "b.pdf"}})
	assert.Equal(t, []string{"overlap_file1", "overlap_file2"}, pairs.Header)
	assert.Equal(t, [][]string{{"a.pdf", "b.pdf"}}, pairs.Rows)
}

func TestNoKeys(t *testing.T) {
	tbl := NoKeys([]filename.Record{rec("none.pdf", "1990-01-02", filename.TripID{Raw: "7b", Number: 7, Suffix: "b"}, 0, 0)})
	assert.Equal(t, []string{"date", "trip", "file_without_keys"}, tbl.Header)
	assert.Equal(t, [][]string{{"1990-01-02", "7b", "none.pdf"}}, tbl.Rows)
}

func TestKnownDuplicates(t *testing.T) {
	segments := []reconcile.Segment{
		{Begin: 1, End: 9, Label: reconcile.Normal},
		{Begin: 10, End: 12, Label: reconcile.Overlap},
	}
	known := []config.KnownDuplicate{
		{Key: 11, Files: []string{"a.pdf", "b.pdf"}, Kind: config.DuplicateMultiFile, Comment: "Duplicated across 2 files"},
		{Key: 5, Files: []string{"c.pdf"}, Kind: config.DuplicateSameFile, Comment: "Duplicated in same file"},
		{Key: 3, Files: []string{"d.pdf", "e.pdf"}, Kind: config.DuplicateMultiFile},
	}

	tbl := KnownDuplicates(known, segments)

	assert.Equal(t, []string{"key", "files", "comment", "detected"}, tbl.Header)
	assert.Equal(t, [][]string{
		{"11", "a.pdf|b.pdf", "Duplicated across 2 files", DetectedYes},
		{"5", "c.pdf", "Duplicated in same file", DetectedNA},
		{"3", "d.pdf|e.pdf", "", DetectedNo},
	}, tbl.Rows)
}

func TestTripTables(t *testing.T) {
	dups := TripDuplicates([]reconcile.TripDuplicate{
		{Trip: filename.TripID{Raw: "2", Number: 2}, Files: []string{"x.pdf", "y.pdf"}},
	})
	assert.Equal(t, []string{"trip", "files_with_duplicate_trip"}, dups.Header)
	assert.Equal(t, [][]string{{"2", "x.pdf|y.pdf"}}, dups.Rows)

	gaps := TripGaps([]reconcile.Segment{
		{Begin: 1, End: 2, Label: reconcile.Normal},
		{Begin: 3, End: 3, Label: reconcile.Gap},
	})
	assert.Equal(t, []string{"trip_begin", "trip_end", "gap_status"}, gaps.Header)
	assert.Equal(t, [][]string{{"1", "2", ""}, {"3", "3", "gap"}}, gaps.Rows)
}

func TestPageTables(t *testing.T) {
	rows := []pagecount.Row{
		{Filename: "a.pdf", Actual: 23, ActualOK: true, Expected: 23, ExpectedOK: true},
		{Filename: "b.pdf", Comment: pagecount.CommentUnreadable, Expected: 5, ExpectedOK: true},
		{Filename: "c.pdf", Actual: 9, ActualOK: true, Comment: pagecount.CommentInsufficient},
	}

	actual := PagesActual(rows)
	assert.Equal(t, []string{"filename", "actual_npages", "comment"}, actual.Header)
	assert.Equal(t, []string{"b.pdf", "", pagecount.CommentUnreadable}, actual.Rows[1])

	expected := PagesExpected(config.ReportNumPagesFileReg, rows)
	assert.Equal(t, config.ReportNumPagesFileReg, expected.Name)
	assert.Equal(t, []string{"filename", "actual_npages", "expected_npages", "comment"}, expected.Header)
	assert.Equal(t, [][]string{
		{"a.pdf", "23", "23", ""},
		{"b.pdf", "", "5", pagecount.CommentUnreadable},
		{"c.pdf", "9", "", pagecount.CommentInsufficient},
	}, expected.Rows)

	failed := PagesError(config.ReportNumPagesFileReg, errors.New("register unavailable"))
	require.Equal(t, 1, failed.Len())
	assert.Equal(t, "error: register unavailable", failed.Rows[0][3])
}

func TestCSVSink(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	sink := NewCSVSink(dir, cfg.OutputFile)

	tbl := NewTable(config.ReportKeyGap, "key_begin", "key_end", "gap_overlap", "files")
	tbl.Add("1", "9", "gap", "")
	tbl.Add("10", "12", "overlap", "a, b.pdf|c.pdf")
	require.NoError(t, sink.Write(tbl))
	require.NoError(t, sink.Write(NewTable(config.ReportNoKeys, "date", "trip", "file_without_keys")))
	require.NoError(t, sink.Close())

	path := filepath.Join(dir, "key_gap.csv")
	assert.Equal(t, []string{path, filepath.Join(dir, "no_keys.csv")}, sink.Written())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, append([][]string{tbl.Header}, tbl.Rows...), records)

	data, err := os.ReadFile(filepath.Join(dir, "no_keys.csv"))
	require.NoError(t, err)
	assert.Equal(t, "date,trip,file_without_keys\n", string(data))
}

func TestCSVSinkDefaultNames(t *testing.T) {
	dir := t.TempDir()
	sink := NewCSVSink(dir, nil)
	require.NoError(t, sink.Write(NewTable("custom", "a")))
	assert.FileExists(t, filepath.Join(dir, "custom.csv"))
}

func TestWorkbookSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.xlsx")
	sink := NewWorkbookSink(path)

	keys := NewTable(config.ReportKeys, "key", "filename", "date", "trip")
	keys.Add("4", "a.pdf", "1986-09-30", "241a")
	require.NoError(t, sink.Write(keys))
	require.NoError(t, sink.Write(NewTable(config.ReportTripGap, "trip_begin", "trip_end", "gap_status")))
	require.NoError(t, sink.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{config.ReportKeys, config.ReportTripGap}, f.GetSheetList())
	rows, err := f.GetRows(config.ReportKeys)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"key", "filename", "date", "trip"}, {"4", "a.pdf", "1986-09-30", "241a"}}, rows)
}

type recordingSink struct {
	names  []string
	closed bool
	err    error
}

func (r *recordingSink) Write(t *Table) error {
	r.names = append(r.names, t.Name)
	return r.err
}

func (r *recordingSink) Close() error {
	r.closed = true
	return r.err
}

func TestMultiSink(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	m := MultiSink{a, b}

	require.NoError(t, m.Write(NewTable("keys")))
	require.NoError(t, m.Close())
	assert.Equal(t, []string{"keys"}, a.names)
	assert.Equal(t, []string{"keys"}, b.names)
	assert.True(t, a.closed && b.closed)

	boom := errors.New("boom")
	failing := MultiSink{&recordingSink{err: boom}, b}
	assert.ErrorIs(t, failing.Write(NewTable("x")), boom)
	assert.ErrorIs(t, failing.Close(), boom)
	assert.Equal(t, []string{"keys"}, b.names, "later sinks are skipped after a write error")
}
