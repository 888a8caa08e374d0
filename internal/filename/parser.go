package filename

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/flinders-library/scanaudit/internal/config"
)

// Field indexes within the filename body.
const (
	FieldPrefix = iota
	FieldDate
	FieldTrip
	FieldKeys

	numFields
)

// Parser validates filenames against one naming configuration. It is
// immutable after construction and safe for concurrent use.
type Parser struct {
	naming   config.Naming
	extRegex *regexp.Regexp
	patterns [numFields]*regexp.Regexp
}

// NewParser compiles the patterns for the given naming configuration.
func NewParser(naming config.Naming) (*Parser, error) {
	if len([]rune(naming.Separator)) != 1 {
		return nil, fmt.Errorf("separator must be a single character, got %q", naming.Separator)
	}
	if len(naming.Extensions) == 0 {
		return nil, fmt.Errorf("at least one permitted extension is required")
	}

	exts := make([]string, len(naming.Extensions))
	for i, e := range naming.Extensions {
		exts[i] = regexp.QuoteMeta(e)
	}
	extRegex, err := regexp.Compile(`(?i)^(.*)\.(` + strings.Join(exts, "|") + `)$`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile extension pattern: %w", err)
	}

	p := &Parser{naming: naming, extRegex: extRegex}
	p.patterns[FieldPrefix] = regexp.MustCompile(`^` + regexp.QuoteMeta(naming.Prefix) + `$`)
	p.patterns[FieldDate] = regexp.MustCompile(`^d(\d{4})(\d{2})(\d{2})$`)
	p.patterns[FieldTrip] = regexp.MustCompile(`^t((\d+)([a-z]?))$`)
	p.patterns[FieldKeys] = regexp.MustCompile(`^k(\d+)-(\d+)$`)
	return p, nil
}

// Naming returns the configuration the parser was built from.
func (p *Parser) Naming() config.Naming { return p.naming }

// Pattern returns the pattern a body field must match, for diagnostics.
func (p *Parser) Pattern(field int) string {
	if field < 0 || field >= numFields {
		return ""
	}
	return p.patterns[field].String()
}

// Parse turns a filename into a Record. A malformed name yields a
// *RejectionError listing every rule it breaks.
func (p *Parser) Parse(name string) (Record, error) {
	m := p.extRegex.FindStringSubmatch(name)
	if m == nil {
		return Record{}, reject(name, InvalidExtension)
	}
	basename, ext := m[1], m[2]

	parts := strings.Split(basename, p.naming.Separator)
	if len(parts) != numFields {
		return Record{}, reject(name, BadSeparatorCount)
	}
	for _, part := range parts {
		if part == "" {
			return Record{}, reject(name, EmptyPart)
		}
	}

	var reasons []Reason
	if !p.patterns[FieldPrefix].MatchString(parts[FieldPrefix]) {
		reasons = append(reasons, BadPrefix)
	}
	date, dateOK := p.parseDate(parts[FieldDate])
	if !dateOK {
		reasons = append(reasons, BadDate)
	}
	trip, tripOK := p.parseTrip(parts[FieldTrip])
	if !tripOK {
		reasons = append(reasons, BadTrip)
	}
	keys, keysOK := p.parseKeys(parts[FieldKeys])
	if !keysOK {
		reasons = append(reasons, BadKeyRange)
	}
	if len(reasons) > 0 {
		return Record{}, reject(name, reasons...)
	}

	return Record{
		Name: name,
		Date: date,
		Trip: trip,
		Keys: keys,
		Ext:  ext,
	}, nil
}

// parseDate accepts dYYYYMMDD when it names a real calendar day within the
// configured year range.
func (p *Parser) parseDate(field string) (time.Time, bool) {
	m := p.patterns[FieldDate].FindStringSubmatch(field)
	if m == nil {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	iso := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	date, err := time.Parse(DateLayout, iso)
	if err != nil || date.Format(DateLayout) != iso {
		return time.Time{}, false
	}
	if !p.naming.YearRange.Contains(year) {
		return time.Time{}, false
	}
	return date, true
}

func (p *Parser) parseTrip(field string) (TripID, bool) {
	m := p.patterns[FieldTrip].FindStringSubmatch(field)
	if m == nil {
		return TripID{}, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return TripID{}, false
	}
	if tr := p.naming.TripRange; tr.End > 0 && !tr.Contains(n) {
		return TripID{}, false
	}
	return TripID{Raw: m[1], Number: n, Suffix: m[3]}, true
}

// parseKeys accepts kBEGIN-END inside the key universe, or the k0-0
// sentinel for files without capture sheets.
func (p *Parser) parseKeys(field string) (KeyRange, bool) {
	m := p.patterns[FieldKeys].FindStringSubmatch(field)
	if m == nil {
		return KeyRange{}, false
	}
	begin, err1 := strconv.Atoi(m[1])
	end, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return KeyRange{}, false
	}
	if begin == 0 && end == 0 {
		return KeyRange{}, true
	}
	universe := p.naming.KeyRange
	if !universe.Contains(begin) || !universe.Contains(end) || end < begin {
		return KeyRange{}, false
	}
	return KeyRange{Begin: begin, End: end}, true
}

// Format rebuilds the canonical filename of a record.
func (p *Parser) Format(r Record) string {
	sep := p.naming.Separator
	return p.naming.Prefix +
		sep + "d" + r.Date.Format("20060102") +
		sep + "t" + r.Trip.Raw +
		sep + "k" + strconv.Itoa(r.Keys.Begin) + "-" + strconv.Itoa(r.Keys.End) +
		"." + r.Ext
}
