package reconcile

import (
	"github.com/flinders-library/scanaudit/internal/filename"
)

// KeyIntervals maps key-sorted records to key-space intervals. Records
// without keys are skipped; they belong in the no-keys report.
func KeyIntervals(records []filename.Record) []Interval {
	out := make([]Interval, 0, len(records))
	for _, r := range records {
		if r.Keys.Empty() {
			continue
		}
		out = append(out, Interval{Begin: r.Keys.Begin, End: r.Keys.End, Files: []string{r.Name}})
	}
	return out
}

// TripIntervals maps trip-sorted records to one point per trip number,
// carrying the files of every record with that number.
func TripIntervals(records []filename.Record) []Interval {
	var out []Interval
	for _, r := range records {
		n := r.Trip.Number
		if len(out) > 0 && out[len(out)-1].Begin == n {
			last := &out[len(out)-1]
			last.Files = append(last.Files, r.Name)
			continue
		}
		out = append(out, Interval{Begin: n, End: n, Files: []string{r.Name}})
	}
	return out
}

// =============================================================================
// PAIRWISE OVERLAPS
// =============================================================================

// Pair is two files whose key ranges intersect.
type Pair struct {
	First  string
	Second string
}

// OverlapPairs lists every pair of key-sorted records whose ranges
// intersect. Unlike the merged overlap segments of Reconcile, each
// colliding pair is reported on its own.
func OverlapPairs(records []filename.Record) []Pair {
	var pairs []Pair
	for i, a := range records {
		if a.Keys.Empty() {
			continue
		}
		for _, b := range records[i+1:] {
			if b.Keys.Empty() {
				continue
			}
			if b.Keys.Begin > a.Keys.End {
				break
			}
			if a.Keys.Contains(b.Keys.Begin) || a.Keys.Contains(b.Keys.End) {
				pairs = append(pairs, Pair{First: a.Name, Second: b.Name})
			}
		}
	}
	return pairs
}

// =============================================================================
// TRIP DUPLICATES
// =============================================================================

// TripDuplicate is a trip id shared by more than one file.
type TripDuplicate struct {
	Trip  filename.TripID
	Files []string
}

// TripDuplicates lists trip ids (number and suffix) that appear on more
// than one trip-sorted record.
func TripDuplicates(records []filename.Record) []TripDuplicate {
	var out []TripDuplicate
	for i := 0; i < len(records); {
		j := i + 1
		for j < len(records) && records[j].Trip.Compare(records[i].Trip) == 0 {
			j++
		}
		if j-i > 1 {
			files := make([]string, 0, j-i)
			for _, r := range records[i:j] {
				files = append(files, r.Name)
			}
			out = append(out, TripDuplicate{Trip: records[i].Trip, Files: files})
		}
		i = j
	}
	return out
}
