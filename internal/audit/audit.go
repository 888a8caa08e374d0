// =============================================================================
// Scan Audit - Audit Module
// =============================================================================
//
// This module drives one audit run over a listing of scanned filenames.
//
// AUDIT PIPELINE:
//   1. Validate every filename (any rejection stops the run)
//   2. Sort the records by key range and by trip
//   3. Build each enabled report in a fixed order
//   4. Hand each report to the sink
//   5. Return a summary of the run
//
// Reports share intermediate results (segments, page counts) which are
// computed at most once per run.
//
// =============================================================================

package audit

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/flinders-library/scanaudit/internal/config"
	"github.com/flinders-library/scanaudit/internal/filename"
	"github.com/flinders-library/scanaudit/internal/logger"
	"github.com/flinders-library/scanaudit/internal/pagecount"
	"github.com/flinders-library/scanaudit/internal/reconcile"
	"github.com/flinders-library/scanaudit/internal/register"
	"github.com/flinders-library/scanaudit/internal/report"
	"github.com/flinders-library/scanaudit/internal/validation"
)

// =============================================================================
// ERRORS
// =============================================================================

// InvalidFilenamesError is returned when at least one filename failed
// validation. No report is written in that case.
type InvalidFilenamesError struct {
	Result *validation.Result
}

func (e *InvalidFilenamesError) Error() string {
	return fmt.Sprintf("%d invalid filenames", e.Result.Rejected)
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary describes a completed run.
type Summary struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time

	TotalFiles int
	KeyedFiles int
	NoKeyFiles int

	// Reports lists the reports written, in order.
	Reports []ReportStat

	// Warnings are non-fatal conditions met during the run.
	Warnings []string
}

// ReportStat is the name and row count of one written report.
type ReportStat struct {
	Name string
	Rows int
}

// =============================================================================
// AUDITOR
// =============================================================================

// Auditor runs audits with a fixed configuration.
type Auditor struct {
	cfg      *config.Config
	parser   *filename.Parser
	sink     report.Sink
	logger   logger.Logger
	oracle   pagecount.Oracle
	register register.Loader
}

// Option customises an Auditor.
type Option func(*Auditor)

// WithLogger sets the logger. The default discards messages.
func WithLogger(l logger.Logger) Option {
	return func(a *Auditor) { a.logger = l }
}

// WithOracle replaces the pdfinfo page-count oracle.
func WithOracle(o pagecount.Oracle) Option {
	return func(a *Auditor) { a.oracle = o }
}

// WithRegister replaces the register loader chosen from the config.
func WithRegister(r register.Loader) Option {
	return func(a *Auditor) { a.register = r }
}

// New creates an Auditor.
//
// PARAMETERS:
//   - cfg: A validated configuration.
//   - sink: Receives every report table.
//   - opts: Optional collaborators.
//
// RETURNS:
//   - The Auditor, or an error if the naming settings are unusable.
func New(cfg *config.Config, sink report.Sink, opts ...Option) (*Auditor, error) {
	parser, err := filename.NewParser(cfg.Naming)
	if err != nil {
		return nil, fmt.Errorf("failed to create filename parser: %w", err)
	}

	a := &Auditor{
		cfg:      cfg,
		parser:   parser,
		sink:     sink,
		logger:   logger.Nop{},
		oracle:   pagecount.NewPdfInfo(cfg.PageCount.Command, cfg.PageCount.Args),
		register: register.Open(cfg.ResolvedRegister()),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Parser is the filename parser built from the naming settings.
func (a *Auditor) Parser() *filename.Parser { return a.parser }

// Validate checks filenames without producing any report.
func (a *Auditor) Validate(filenames []string) *validation.Result {
	return validation.Validate(a.parser, filenames)
}

// =============================================================================
// RUN
// =============================================================================

// run holds the state shared by the reports of one audit.
type run struct {
	*Auditor
	ctx     context.Context
	summary *Summary

	byKey  []filename.Record
	noKeys []filename.Record
	byTrip []filename.Record

	keySegments  []reconcile.Segment
	keysDone     bool
	observations []pagecount.Observation
	observed     bool
}

// Run audits filenames and writes every enabled report to the sink.
//
// RETURNS:
//   - The run summary.
//   - *InvalidFilenamesError if any filename is invalid, or the first
//     error met while writing a report.
func (a *Auditor) Run(ctx context.Context, filenames []string) (*Summary, error) {
	summary := &Summary{
		RunID:      uuid.New().String(),
		StartTime:  time.Now(),
		TotalFiles: len(filenames),
	}
	a.logger.Info("Run %s: auditing %d files", summary.RunID, len(filenames))

	result := a.Validate(filenames)
	if !result.Valid() {
		a.logger.Error("%d of %d filenames are invalid", result.Rejected, len(filenames))
		return nil, &InvalidFilenamesError{Result: result}
	}

	r := &run{
		Auditor: a,
		ctx:     ctx,
		summary: summary,
		byKey:   slices.Clone(result.Keyed),
		noKeys:  slices.Clone(result.NoKeys),
		byTrip:  result.All(),
	}
	filename.SortByKey(r.byKey)
	filename.SortByKey(r.noKeys)
	filename.SortByTrip(r.byTrip)
	summary.KeyedFiles = len(r.byKey)
	summary.NoKeyFiles = len(r.noKeys)
	a.logger.Debug("%d files with keys, %d without", len(r.byKey), len(r.noKeys))

	if len(r.byKey) == 0 {
		r.warn("no files with keys: key space reports are empty")
	}

	for _, name := range config.AllReports {
		if !a.cfg.ReportEnabled(name) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		t, err := r.build(name)
		if err != nil {
			return nil, fmt.Errorf("failed to build report %s: %w", name, err)
		}
		if err := a.sink.Write(t); err != nil {
			return nil, err
		}
		summary.Reports = append(summary.Reports, ReportStat{Name: name, Rows: t.Len()})
		a.logger.Info("Created %s report (%d rows)", name, t.Len())
	}

	summary.EndTime = time.Now()
	return summary, nil
}

func (r *run) warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.summary.Warnings = append(r.summary.Warnings, msg)
	r.logger.Warn("%s", msg)
}

func (r *run) build(name string) (*report.Table, error) {
	switch name {
	case config.ReportKeys:
		return report.Keys(r.byKey), nil
	case config.ReportKeyOverlap:
		return report.KeyOverlaps(reconcile.OverlapPairs(r.byKey)), nil
	case config.ReportKeyGap:
		segments, err := r.keyGaps()
		return report.KeyGaps(segments), err
	case config.ReportNoKeys:
		return report.NoKeys(r.noKeys), nil
	case config.ReportKnownDuplicates:
		segments, err := r.keyGaps()
		return report.KnownDuplicates(r.cfg.KnownDuplicates, segments), err
	case config.ReportTripDup:
		return report.TripDuplicates(reconcile.TripDuplicates(r.byTrip)), nil
	case config.ReportTripGap:
		segments, err := r.tripGaps()
		return report.TripGaps(segments), err
	case config.ReportNumPagesActual:
		return report.PagesActual(pagecount.Actual(r.pages())), nil
	case config.ReportNumPagesExpected:
		model := pagecount.FormulaModel{FixedSheets: r.cfg.PageCount.FixedSheets}
		return report.PagesExpected(name, pagecount.Check(r.pages(), model)), nil
	case config.ReportNumPagesFileReg:
		entries, err := r.register.Load()
		if err != nil {
			r.warn("%s: %v", name, err)
			return report.PagesError(name, err), nil
		}
		model := pagecount.RegisterModel{Entries: entries}
		return report.PagesExpected(name, pagecount.Check(r.pages(), model)), nil
	}
	return nil, fmt.Errorf("unknown report %q", name)
}

// keyGaps reconciles the key space once per run. An empty key list yields
// no segments.
func (r *run) keyGaps() ([]reconcile.Segment, error) {
	if r.keysDone || len(r.byKey) == 0 {
		return r.keySegments, nil
	}
	universe := reconcile.Range{Begin: r.cfg.Naming.KeyRange.Begin, End: r.cfg.Naming.KeyRange.End}
	segments, err := reconcile.Reconcile(reconcile.KeyIntervals(r.byKey), universe, reconcile.KeyMode)
	if err != nil {
		return nil, err
	}
	r.keySegments, r.keysDone = segments, true
	return segments, nil
}

// tripGaps reconciles the trip space. Without a configured end the
// universe stretches to the largest trip seen.
func (r *run) tripGaps() ([]reconcile.Segment, error) {
	intervals := reconcile.TripIntervals(r.byTrip)
	if len(intervals) == 0 {
		return nil, nil
	}

	universe := reconcile.Range{Begin: r.cfg.Naming.TripRange.Begin, End: r.cfg.Naming.TripRange.End}
	if universe.End == 0 {
		universe.Begin = min(universe.Begin, intervals[0].Begin)
		universe.End = intervals[len(intervals)-1].End
	}

	segments, err := reconcile.Reconcile(intervals, universe, reconcile.TripMode)
	if errors.Is(err, reconcile.ErrEmptyInput) {
		return nil, nil
	}
	return segments, err
}

// pages observes every file once per run: keyed files first, then files
// without keys.
func (r *run) pages() []pagecount.Observation {
	if r.observed {
		return r.observations
	}

	records := append(slices.Clone(r.byKey), r.noKeys...)
	r.logger.Info("Counting pages of %d files", len(records))
	r.observations = pagecount.Observe(r.ctx, r.oracle, r.cfg.InputDir, records, r.cfg.MaxConcurrency)
	r.observed = true

	for _, o := range r.observations {
		if !o.Readable() {
			r.logger.Debug("Unreadable page count for %s: %v", o.Record.Name, o.Err)
		}
	}
	return r.observations
}
