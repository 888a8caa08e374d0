// Package filename parses scanned-document filenames of the form
//
//	slls_d19860930_t241a_k4794-4802.pdf
//
// into typed records, and reports every rule a malformed name breaks.
package filename

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// DateLayout is the layout of Record dates in reports.
const DateLayout = "2006-01-02"

// KeyRange is the closed interval of keys claimed by one file. The zero
// value is the sentinel meaning the file holds no capture sheets.
type KeyRange struct {
	Begin int
	End   int
}

// Empty reports whether r is the no-capture-sheets sentinel [0,0].
func (r KeyRange) Empty() bool {
	return r.Begin == 0 && r.End == 0
}

// Len is the number of keys in the range; 0 for the sentinel.
func (r KeyRange) Len() int {
	if r.Empty() {
		return 0
	}
	return r.End - r.Begin + 1
}

// Contains reports whether key lies within r.
func (r KeyRange) Contains(key int) bool {
	return !r.Empty() && key >= r.Begin && key <= r.End
}

func (r KeyRange) String() string {
	return fmt.Sprintf("%d-%d", r.Begin, r.End)
}

// TripID identifies a trip: a number with an optional single letter suffix.
type TripID struct {
	Raw    string // "241a"
	Number int    // 241
	Suffix string // "a"
}

// Compare orders trips numerically, then by suffix.
func (t TripID) Compare(o TripID) int {
	if c := cmp.Compare(t.Number, o.Number); c != 0 {
		return c
	}
	return cmp.Compare(t.Suffix, o.Suffix)
}

func (t TripID) String() string { return t.Raw }

// Record is one validated scanned file.
type Record struct {
	Name string
	Date time.Time
	Trip TripID
	Keys KeyRange
	Ext  string
}

// DateString returns the date as YYYY-MM-DD.
func (r Record) DateString() string {
	return r.Date.Format(DateLayout)
}

// SortByKey sorts records by key range, then by date and trip for equal
// ranges. The filename is the last tiebreak so the order is deterministic.
func SortByKey(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		if c := cmp.Compare(a.Keys.Begin, b.Keys.Begin); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Keys.End, b.Keys.End); c != 0 {
			return c
		}
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		if c := a.Trip.Compare(b.Trip); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

// SortByTrip groups records by trip, ordered numerically, then by date.
func SortByTrip(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		if c := a.Trip.Compare(b.Trip); c != 0 {
			return c
		}
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}
