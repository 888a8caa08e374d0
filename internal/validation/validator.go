// =============================================================================
// Scanned File Audit - Filename Validation
// =============================================================================
//
// This module validates the complete listing of scanned filenames before any
// reconciliation runs. Partial validity is not accepted: if a single filename
// is malformed the run stops after printing every problem found.
//
// VALIDATION STRATEGY:
//   - Every filename is parsed; failures are collected, not returned early
//   - Each failure is filed in one bucket per broken rule, so a name with a
//     bad prefix AND a bad date appears under both
//   - Buckets are displayed in a fixed order (extension, separators, empty
//     parts, prefix, date, trip, key range)
//
// =============================================================================

package validation

import (
	"errors"
	"slices"

	"github.com/flinders-library/scanaudit/internal/filename"
)

// =============================================================================
// BUCKETS
// =============================================================================

// Bucket holds the filenames rejected for one reason.
type Bucket struct {
	Reason    filename.Reason
	Filenames []string
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result contains the outcome of validating a filename listing.
type Result struct {
	// Keyed are the valid records that claim at least one key.
	Keyed []filename.Record

	// NoKeys are the valid records carrying the k0-0 sentinel.
	NoKeys []filename.Record

	// Buckets holds one bucket per reason, in display order. Empty
	// buckets are kept so callers can index by reason.
	Buckets []Bucket

	// Rejected is the number of distinct filenames that failed.
	Rejected int
}

// Valid is true when no filename was rejected.
func (r *Result) Valid() bool {
	return r.Rejected == 0
}

// Bucket returns the bucket for a reason.
func (r *Result) Bucket(reason filename.Reason) Bucket {
	for _, b := range r.Buckets {
		if b.Reason == reason {
			return b
		}
	}
	return Bucket{Reason: reason}
}

// NonEmptyBuckets returns the buckets that hold at least one filename.
func (r *Result) NonEmptyBuckets() []Bucket {
	var out []Bucket
	for _, b := range r.Buckets {
		if len(b.Filenames) > 0 {
			out = append(out, b)
		}
	}
	return out
}

// All returns every valid record, keyed records first.
func (r *Result) All() []filename.Record {
	return append(slices.Clone(r.Keyed), r.NoKeys...)
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate parses every filename in order.
//
// PARAMETERS:
//   - parser: The parser built from the naming configuration.
//   - filenames: The listing to validate.
//
// RETURNS:
//   - A Result. Record lists remain in listing order; sorting is up to the
//     caller.
func Validate(parser *filename.Parser, filenames []string) *Result {
	index := make(map[filename.Reason]int, len(filename.Reasons))
	result := &Result{Buckets: make([]Bucket, len(filename.Reasons))}
	for i, reason := range filename.Reasons {
		result.Buckets[i] = Bucket{Reason: reason}
		index[reason] = i
	}

	for _, name := range filenames {
		rec, err := parser.Parse(name)
		if err != nil {
			var rej *filename.RejectionError
			if !errors.As(err, &rej) {
				// Parse only fails with rejections; treat anything else as
				// an unparseable name so it is still reported.
				rej = &filename.RejectionError{Filename: name, Reasons: []filename.Reason{filename.InvalidExtension}}
			}
			for _, reason := range rej.Reasons {
				b := &result.Buckets[index[reason]]
				b.Filenames = append(b.Filenames, name)
			}
			result.Rejected++
			continue
		}

		if rec.Keys.Empty() {
			result.NoKeys = append(result.NoKeys, rec)
		} else {
			result.Keyed = append(result.Keyed, rec)
		}
	}

	return result
}
