package validation

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/flinders-library/scanaudit/internal/filename"
)

// =============================================================================
// DIAGNOSTIC OUTPUT
// =============================================================================

// WriteDiagnostics prints every non-empty bucket, the offending filenames
// and the rule they broke, followed by a reminder of the filename format.
// Nothing is written for a valid result.
//
// Headings are colored when w is a terminal; fatih/color disables itself
// for pipes and when NO_COLOR is set.
func WriteDiagnostics(w io.Writer, result *Result, parser *filename.Parser) {
	if result.Valid() {
		return
	}

	heading := color.New(color.FgRed, color.Bold)
	naming := parser.Naming()

	for _, b := range result.NonEmptyBuckets() {
		fmt.Fprintln(w)
		lines := describe(b.Reason, parser)
		heading.Fprintf(w, "[%d, %s] %s\n", b.Reason.SortOrder(), b.Reason, lines[0])
		for _, line := range lines[1:] {
			fmt.Fprintln(w, line)
		}
		for _, f := range b.Filenames {
			fmt.Fprintf(w, "- %s\n", f)
		}
	}

	sep := naming.Separator
	example := naming.Prefix + sep + "d19860930" + sep + "t241" + sep + "k4794-4802." + naming.Extensions[0]
	noKeys := naming.Prefix + sep + "d19860930" + sep + "t241" + sep + "k0-0." + naming.Extensions[0]

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Filename format must be as follows:")
	fmt.Fprintf(w, "    %s%sdYYYYMMDD%stTRIPNO%skKEYBEGIN-KEYEND.EXT\n", naming.Prefix, sep, sep, sep)
	fmt.Fprintf(w, "Eg. %s\n", example)
	fmt.Fprintln(w, "If there are no capture sheets, KEYBEGIN & KEYEND shall both be zero.")
	fmt.Fprintf(w, "Eg. %s\n", noKeys)
	fmt.Fprintln(w)
	heading.Fprintln(w, "Quitting: Some filenames are invalid!")
}

// describe returns the explanation for a bucket; the first line is the
// heading.
func describe(reason filename.Reason, parser *filename.Parser) []string {
	naming := parser.Naming()
	pattern := parser.Pattern(reason.Field())

	switch reason {
	case filename.InvalidExtension:
		return []string{
			"The following files have an invalid file extension.",
			"Valid file extensions are: " + strings.Join(naming.Extensions, ", "),
		}
	case filename.BadSeparatorCount:
		return []string{fmt.Sprintf("The following files have the wrong number of separators '%s'.", naming.Separator)}
	case filename.EmptyPart:
		return []string{
			fmt.Sprintf("Filenames are divided into parts by the separator '%s'.", naming.Separator),
			"None of the parts (PREFIX, DATE, TRIPNO, KEYBEGIN-KEYEND)",
			"are allowed to be empty.",
		}
	case filename.BadPrefix:
		return []string{"PREFIX is invalid! Must match: /" + pattern + "/"}
	case filename.BadDate:
		return []string{
			"DATE is invalid!",
			"Must match: YYYYMMDD",
			"YYYY must be in range: " + naming.YearRange.String(),
			"Must match: /" + pattern + "/",
		}
	case filename.BadTrip:
		lines := []string{"TRIPNO is invalid! Must match: /" + pattern + "/"}
		if naming.TripRange.End > 0 {
			lines = append(lines, "TRIPNO must be in range: "+naming.TripRange.String())
		}
		return lines
	case filename.BadKeyRange:
		return []string{
			"KEYBEGIN-KEYEND is invalid!",
			"Must be in range: " + naming.KeyRange.String(),
			"KEYEND must not be less than KEYBEGIN",
			"Must match: /" + pattern + "/",
		}
	default:
		return []string{reason.String()}
	}
}
