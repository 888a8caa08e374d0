package report

import (
	"strconv"
	"strings"

	"github.com/flinders-library/scanaudit/internal/config"
	"github.com/flinders-library/scanaudit/internal/filename"
	"github.com/flinders-library/scanaudit/internal/pagecount"
	"github.com/flinders-library/scanaudit/internal/reconcile"
)

// Detection states for known duplicates.
const (
	DetectedYes = "yes"
	DetectedNo  = "no"
	DetectedNA  = "n/a"
)

// =============================================================================
// KEY SPACE
// =============================================================================

// Keys lists every key of every keyed record, one row per key, in record
// order.
func Keys(records []filename.Record) *Table {
	t := NewTable(config.ReportKeys, "key", "filename", "date", "trip")
	for _, r := range records {
		if r.Keys.Empty() {
			continue
		}
		date := r.DateString()
		for k := r.Keys.Begin; k <= r.Keys.End; k++ {
			t.Add(strconv.Itoa(k), r.Name, date, r.Trip.String())
		}
	}
	return t
}

// KeyOverlaps lists every pair of files with intersecting key ranges.
func KeyOverlaps(pairs []reconcile.Pair) *Table {
	t := NewTable(config.ReportKeyOverlap, "overlap_file1", "overlap_file2")
	for _, p := range pairs {
		t.Add(p.First, p.Second)
	}
	return t
}

// KeyGaps lists the segments tiling the key universe.
func KeyGaps(segments []reconcile.Segment) *Table {
	t := NewTable(config.ReportKeyGap, "key_begin", "key_end", "gap_overlap", "files")
	for _, s := range segments {
		t.Add(strconv.Itoa(s.Begin), strconv.Itoa(s.End), s.Label.String(), strings.Join(s.Files, FileSeparator))
	}
	return t
}

// NoKeys lists the records that hold no capture sheets.
func NoKeys(records []filename.Record) *Table {
	t := NewTable(config.ReportNoKeys, "date", "trip", "file_without_keys")
	for _, r := range records {
		t.Add(r.DateString(), r.Trip.String(), r.Name)
	}
	return t
}

// KnownDuplicates checks each configured duplicate key against the overlap
// segments. Keys duplicated inside a single file cannot be seen in
// filenames and are reported as n/a.
func KnownDuplicates(known []config.KnownDuplicate, segments []reconcile.Segment) *Table {
	t := NewTable(config.ReportKnownDuplicates, "key", "files", "comment", "detected")
	for _, d := range known {
		detected := DetectedNA
		if d.Kind != config.DuplicateSameFile {
			detected = DetectedNo
			if inOverlap(d.Key, segments) {
				detected = DetectedYes
			}
		}
		t.Add(strconv.Itoa(d.Key), strings.Join(d.Files, FileSeparator), d.Comment, detected)
	}
	return t
}

func inOverlap(key int, segments []reconcile.Segment) bool {
	for _, s := range segments {
		if s.Label == reconcile.Overlap && key >= s.Begin && key <= s.End {
			return true
		}
	}
	return false
}

// =============================================================================
// TRIP SPACE
// =============================================================================

// TripDuplicates lists trip ids shared by several files.
func TripDuplicates(dups []reconcile.TripDuplicate) *Table {
	t := NewTable(config.ReportTripDup, "trip", "files_with_duplicate_trip")
	for _, d := range dups {
		t.Add(d.Trip.String(), strings.Join(d.Files, FileSeparator))
	}
	return t
}

// TripGaps lists the segments tiling the trip universe.
func TripGaps(segments []reconcile.Segment) *Table {
	t := NewTable(config.ReportTripGap, "trip_begin", "trip_end", "gap_status")
	for _, s := range segments {
		t.Add(strconv.Itoa(s.Begin), strconv.Itoa(s.End), s.Label.String())
	}
	return t
}

// =============================================================================
// PAGE COUNTS
// =============================================================================

// PagesActual lists the observed page count of each file.
func PagesActual(rows []pagecount.Row) *Table {
	t := NewTable(config.ReportNumPagesActual, "filename", "actual_npages", "comment")
	for _, r := range rows {
		t.Add(r.Filename, optionalInt(r.Actual, r.ActualOK), r.Comment)
	}
	return t
}

// PagesExpected lists observed and expected page counts under the name of
// the model that produced them (num_pages_expected or num_pages_file_reg).
func PagesExpected(name string, rows []pagecount.Row) *Table {
	t := NewTable(name, "filename", "actual_npages", "expected_npages", "comment")
	for _, r := range rows {
		t.Add(r.Filename, optionalInt(r.Actual, r.ActualOK), optionalInt(r.Expected, r.ExpectedOK), r.Comment)
	}
	return t
}

// PagesError is a page-count table holding one row that explains why the
// report could not be produced.
func PagesError(name string, err error) *Table {
	t := NewTable(name, "filename", "actual_npages", "expected_npages", "comment")
	t.Add("", "", "", "error: "+err.Error())
	return t
}

func optionalInt(n int, ok bool) string {
	if !ok {
		return ""
	}
	return strconv.Itoa(n)
}
