// Package reconcile classifies every value of an integer universe as covered
// exactly once, not covered (gap) or covered more than once (overlap), given
// the intervals claimed by a set of files.
//
// The same sweep serves two spaces. In the key space each file claims a
// range of keys. In the trip space each file claims a single trip number and
// files sharing a trip collapse into one point.
package reconcile

import (
	"errors"
	"fmt"
	"slices"
)

// Sentinel errors returned by Reconcile.
var (
	ErrEmptyInput      = errors.New("no intervals to reconcile")
	ErrUnsorted        = errors.New("intervals are not sorted by begin")
	ErrOutsideUniverse = errors.New("interval lies outside the universe")
)

// Label classifies a segment.
type Label int

const (
	Normal Label = iota
	Gap
	Overlap
)

// String returns the text used in reports; normal segments are blank.
func (l Label) String() string {
	switch l {
	case Gap:
		return "gap"
	case Overlap:
		return "overlap"
	default:
		return ""
	}
}

// Mode selects the adjacency rules of the sweep.
type Mode int

const (
	// KeyMode merges intersecting intervals into overlap segments and keeps
	// contiguous intervals as separate normal segments.
	KeyMode Mode = iota

	// TripMode merges equal points and contiguous points into one normal
	// run. It never produces overlaps.
	TripMode
)

// Range is a closed integer interval.
type Range struct {
	Begin int
	End   int
}

// Contains reports whether n lies within r.
func (r Range) Contains(n int) bool {
	return n >= r.Begin && n <= r.End
}

// Interval is a closed range claimed by one or more files.
type Interval struct {
	Begin int
	End   int
	Files []string
}

// Segment is one maximal run of the universe sharing a label. Files is
// empty for gaps.
type Segment struct {
	Begin int
	End   int
	Label Label
	Files []string
}

// Reconcile sweeps intervals (sorted ascending by Begin) across universe
// and returns segments that tile the universe exactly: consecutive segments
// are adjacent and together cover [universe.Begin, universe.End].
func Reconcile(intervals []Interval, universe Range, mode Mode) ([]Segment, error) {
	if len(intervals) == 0 {
		return nil, ErrEmptyInput
	}
	if !slices.IsSortedFunc(intervals, func(a, b Interval) int { return a.Begin - b.Begin }) {
		return nil, ErrUnsorted
	}
	for _, iv := range intervals {
		if iv.End < iv.Begin || !universe.Contains(iv.Begin) || !universe.Contains(iv.End) {
			return nil, fmt.Errorf("%w: [%d,%d] not within [%d,%d]", ErrOutsideUniverse, iv.Begin, iv.End, universe.Begin, universe.End)
		}
	}

	var segments []Segment
	first := intervals[0]
	if universe.Begin < first.Begin {
		segments = append(segments, Segment{Begin: universe.Begin, End: first.Begin - 1, Label: Gap})
	}

	cur := newSegment(first)
	for _, p := range intervals[1:] {
		intersects := cur.contains(p.Begin) || cur.contains(p.End)

		switch {
		case intersects && mode == TripMode:
			cur.End = max(cur.End, p.End)
			cur.Files = append(cur.Files, p.Files...)

		case intersects:
			cur.End = max(cur.End, p.End)
			cur.Label = Overlap
			cur.Files = append(cur.Files, p.Files...)

		case p.Begin == cur.End+1 && mode == TripMode:
			cur.End = p.End
			cur.Files = append(cur.Files, p.Files...)

		case p.Begin == cur.End+1:
			segments = append(segments, cur)
			cur = newSegment(p)

		default:
			segments = append(segments, cur)
			segments = append(segments, Segment{Begin: cur.End + 1, End: p.Begin - 1, Label: Gap})
			cur = newSegment(p)
		}
	}
	segments = append(segments, cur)

	if cur.End < universe.End {
		segments = append(segments, Segment{Begin: cur.End + 1, End: universe.End, Label: Gap})
	}

	return segments, nil
}

func newSegment(iv Interval) Segment {
	return Segment{
		Begin: iv.Begin,
		End:   iv.End,
		Label: Normal,
		Files: slices.Clone(iv.Files),
	}
}

func (s Segment) contains(n int) bool {
	return n >= s.Begin && n <= s.End
}
