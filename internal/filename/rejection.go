package filename

import (
	"fmt"
	"strings"
)

// Reason categorises why a filename was rejected.
type Reason int

// Reasons in display order.
const (
	InvalidExtension Reason = iota
	BadSeparatorCount
	EmptyPart
	BadPrefix
	BadDate
	BadTrip
	BadKeyRange
)

// Reasons lists every reason in display order.
var Reasons = []Reason{
	InvalidExtension,
	BadSeparatorCount,
	EmptyPart,
	BadPrefix,
	BadDate,
	BadTrip,
	BadKeyRange,
}

var reasonInfo = map[Reason]struct {
	name  string
	sort  int
	field int
}{
	InvalidExtension:  {"invalid_extension", 100, -1},
	BadSeparatorCount: {"bad_separator_count", 200, -1},
	EmptyPart:         {"empty_part", 300, -1},
	BadPrefix:         {"bad_prefix", 400, FieldPrefix},
	BadDate:           {"bad_date", 410, FieldDate},
	BadTrip:           {"bad_trip", 420, FieldTrip},
	BadKeyRange:       {"bad_key_range", 430, FieldKeys},
}

func (r Reason) String() string {
	if info, ok := reasonInfo[r]; ok {
		return info.name
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// SortOrder is the display rank of the reason's bucket.
func (r Reason) SortOrder() int { return reasonInfo[r].sort }

// Field is the index of the body field the reason refers to, or -1 for
// structural reasons.
func (r Reason) Field() int {
	if info, ok := reasonInfo[r]; ok {
		return info.field
	}
	return -1
}

// RejectionError is returned by Parse for a malformed filename.
type RejectionError struct {
	Filename string
	Reasons  []Reason
}

func reject(name string, reasons ...Reason) *RejectionError {
	return &RejectionError{Filename: name, Reasons: reasons}
}

func (e *RejectionError) Error() string {
	names := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		names[i] = r.String()
	}
	return fmt.Sprintf("invalid filename %q: %s", e.Filename, strings.Join(names, ", "))
}

// Has reports whether the rejection includes reason r.
func (e *RejectionError) Has(r Reason) bool {
	for _, got := range e.Reasons {
		if got == r {
			return true
		}
	}
	return false
}
