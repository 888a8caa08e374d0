package pagecount

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/flinders-library/scanaudit/internal/filename"
)

// Report comments.
const (
	CommentUnreadable   = "unreadable page count"
	CommentUnexpected   = "unexpected page count"
	CommentInsufficient = "insufficient info in file register"
)

// Observation is the page count read for one file.
type Observation struct {
	Record filename.Record

	// Pages is valid only when Err is nil.
	Pages int
	Err   error
}

// Readable reports whether the page count was obtained.
func (o Observation) Readable() bool { return o.Err == nil }

// Observe asks the oracle for the page count of every record in dir.
// Lookups are independent, so up to workers run at once; the result keeps
// the order of records.
func Observe(ctx context.Context, oracle Oracle, dir string, records []filename.Record, workers int) []Observation {
	out := make([]Observation, len(records))
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(workers, len(records)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rec := records[i]
				pages, err := oracle.PageCount(ctx, filepath.Join(dir, rec.Name))
				out[i] = Observation{Record: rec, Pages: pages, Err: err}
			}
		}()
	}

	for i := range records {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return out
}

// Row is one line of a page-count report.
type Row struct {
	Filename string

	Actual   int
	ActualOK bool

	Expected   int
	ExpectedOK bool

	Comment string
}

// Actual builds rows that report only the observed count.
func Actual(observations []Observation) []Row {
	rows := make([]Row, len(observations))
	for i, o := range observations {
		rows[i] = Row{Filename: o.Record.Name, Actual: o.Pages, ActualOK: o.Readable()}
		if !o.Readable() {
			rows[i].Comment = CommentUnreadable
		}
	}
	return rows
}

// Check compares every observation with the model's expectation.
func Check(observations []Observation, model Expectation) []Row {
	rows := make([]Row, len(observations))
	for i, o := range observations {
		row := Row{Filename: o.Record.Name, Actual: o.Pages, ActualOK: o.Readable()}
		row.Expected, row.ExpectedOK = model.Expected(o.Record)

		switch {
		case !row.ActualOK:
			row.Comment = CommentUnreadable
		case !row.ExpectedOK:
			row.Comment = CommentInsufficient
		case row.Actual != row.Expected:
			row.Comment = CommentUnexpected
		}
		rows[i] = row
	}
	return rows
}
