package register

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// CSVLoader reads the register from a CSV file whose first row is the
// header.
type CSVLoader struct {
	Path    string
	Columns Columns
}

// Load reads and converts the whole file.
func (l *CSVLoader) Load() (map[string]Entry, error) {
	file, err := os.Open(l.Path)
	if err != nil {
		return nil, unavailable(l.Path, err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))

	// Registers are edited by hand; allow ragged rows and stray quotes.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read register %s: %w", l.Path, err)
	}
	if len(allRows) == 0 {
		return nil, fmt.Errorf("register %s is empty", l.Path)
	}

	header := allRows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	entries, err := FromRows(header, allRows[1:], l.Columns)
	if err != nil {
		return nil, fmt.Errorf("failed to parse register %s: %w", l.Path, err)
	}
	return entries, nil
}
