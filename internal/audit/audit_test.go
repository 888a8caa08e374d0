package audit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flinders-library/scanaudit/internal/config"
	"github.com/flinders-library/scanaudit/internal/filename"
	"github.com/flinders-library/scanaudit/internal/logger"
	"github.com/flinders-library/scanaudit/internal/pagecount"
	"github.com/flinders-library/scanaudit/internal/register"
	"github.com/flinders-library/scanaudit/internal/report"
)

type memorySink struct {
	tables map[string]*report.Table
	order  []string
}

func newMemorySink() *memorySink {
	return &memorySink{tables: map[string]*report.Table{}}
}

func (m *memorySink) Write(t *report.Table) error {
	m.tables[t.Name] = t
	m.order = append(m.order, t.Name)
	return nil
}

func (m *memorySink) Close() error { return nil }

type stubOracle map[string]int

func (s stubOracle) PageCount(ctx context.Context, path string) (int, error) {
	n, ok := s[filepath.Base(path)]
	if !ok {
		return 0, errors.New("no such file")
	}
	return n, nil
}

type stubRegister struct {
	entries map[string]register.Entry
	err     error
}

func (s stubRegister) Load() (map[string]register.Entry, error) { return s.entries, s.err }

var listing = []string{
	"slls_d19861013_t251_k4989-5009.pdf",
	"slls_d19861010_t250_k4965-4989.pdf",
	"slls_d19861020_t253_k5020-5030.pdf",
	"slls_d19861021_t253_k0-0.pdf",
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.InputDir = "/scans"
	cfg.Naming.KeyRange = config.Range{Begin: 4960, End: 5035}
	cfg.Naming.TripRange = config.Range{Begin: 249}
	cfg.MaxConcurrency = 2
	cfg.KnownDuplicates = []config.KnownDuplicate{
		{Key: 4989, Files: []string{listing[1], listing[0]}, Kind: config.DuplicateMultiFile, Comment: "Duplicated across 2 files"},
		{Key: 5025, Files: []string{listing[2]}, Kind: config.DuplicateSameFile, Comment: "Duplicated in same file"},
	}
	return cfg
}

func newAuditor(t *testing.T, cfg *config.Config, sink report.Sink, opts ...Option) *Auditor {
	t.Helper()
	a, err := New(cfg, sink, opts...)
	require.NoError(t, err)
	return a
}

func TestRunWritesAllReports(t *testing.T) {
	sink := newMemorySink()
	oracle := stubOracle{
		listing[1]: 2*25 + 3,
		listing[0]: 2*21 + 3,
		listing[2]: 10,
		listing[3]: 3,
	}
	reg := stubRegister{entries: map[string]register.Entry{
		listing[1]: {Filename: listing[1], FrontSheets: 1, BackSheets: 1, Valid: true},
	}}

	a := newAuditor(t, testConfig(), sink, WithOracle(oracle), WithRegister(reg))
	summary, err := a.Run(context.Background(), listing)
	require.NoError(t, err)

	assert.Equal(t, config.AllReports, sink.order)
	assert.Equal(t, 4, summary.TotalFiles)
	assert.Equal(t, 3, summary.KeyedFiles)
	assert.Equal(t, 1, summary.NoKeyFiles)
	assert.NotEmpty(t, summary.RunID)
	assert.Empty(t, summary.Warnings)
	require.Len(t, summary.Reports, len(config.AllReports))

	keys := sink.tables[config.ReportKeys]
	assert.Equal(t, 25+21+11, keys.Len())
	assert.Equal(t, []string{"4965", listing[1], "1986-10-10", "250"}, keys.Rows[0])

	assert.Equal(t, [][]string{{listing[1], listing[0]}}, sink.tables[config.ReportKeyOverlap].Rows)

	assert.Equal(t, [][]string{
		{"4960", "4964", "gap", ""},
		{"4965", "5009", "overlap", listing[1] + "|" + listing[0]},
		{"5010", "5019", "gap", ""},
		{"5020", "5030", "", listing[2]},
		{"5031", "5035", "gap", ""},
	}, sink.tables[config.ReportKeyGap].Rows)

	assert.Equal(t, [][]string{{"1986-10-21", "253", listing[3]}}, sink.tables[config.ReportNoKeys].Rows)

	assert.Equal(t, [][]string{
		{"4989", listing[1] + "|" + listing[0], "Duplicated across 2 files", "yes"},
		{"5025", listing[2], "Duplicated in same file", "n/a"},
	}, sink.tables[config.ReportKnownDuplicates].Rows)

	assert.Equal(t, [][]string{{"253", listing[2] + "|" + listing[3]}}, sink.tables[config.ReportTripDup].Rows)
	assert.Equal(t, [][]string{
		{"249", "249", "gap"},
		{"250", "251", ""},
		{"252", "252", "gap"},
		{"253", "253", ""},
	}, sink.tables[config.ReportTripGap].Rows)

	actual := sink.tables[config.ReportNumPagesActual]
	assert.Equal(t, []string{listing[1], "53", ""}, actual.Rows[0])
	assert.Equal(t, listing[3], actual.Rows[3][0], "files without keys come last")

	expected := sink.tables[config.ReportNumPagesExpected]
	assert.Equal(t, [][]string{
		{listing[1], "53", "53", ""},
		{listing[0], "45", "45", ""},
		{listing[2], "10", "25", pagecount.CommentUnexpected},
		{listing[3], "3", "3", ""},
	}, expected.Rows)

	fileReg := sink.tables[config.ReportNumPagesFileReg]
	assert.Equal(t, []string{listing[1], "53", "53", ""}, fileReg.Rows[0])
	assert.Equal(t, pagecount.CommentInsufficient, fileReg.Rows[1][3])
}

func TestRunRejectsInvalidFilenames(t *testing.T) {
	sink := newMemorySink()
	a := newAuditor(t, testConfig(), sink, WithOracle(stubOracle{}))

	_, err := a.Run(context.Background(), append([]string{"slls_d20200230_t1_k4970-4971.pdf", "notes.txt"}, listing...))

	var invalid *InvalidFilenamesError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 2, invalid.Result.Rejected)
	assert.Equal(t, []string{"slls_d20200230_t1_k4970-4971.pdf"}, invalid.Result.Bucket(filename.BadDate).Filenames)
	assert.Empty(t, sink.order, "no report is written")
}

func TestRunMissingRegister(t *testing.T) {
	sink := newMemorySink()
	cfg := testConfig()
	cfg.Reports = []string{config.ReportNumPagesFileReg}
	missing := fmt.Errorf("%w: register.csv", register.ErrUnavailable)

	a := newAuditor(t, cfg, sink, WithOracle(stubOracle{}), WithRegister(stubRegister{err: missing}))
	summary, err := a.Run(context.Background(), listing)
	require.NoError(t, err)

	tbl := sink.tables[config.ReportNumPagesFileReg]
	require.Equal(t, 1, tbl.Len())
	assert.Contains(t, tbl.Rows[0][3], "register.csv")
	require.Len(t, summary.Warnings, 1)
	assert.Contains(t, summary.Warnings[0], config.ReportNumPagesFileReg)
}

func TestRunOnlyFilesWithoutKeys(t *testing.T) {
	sink := newMemorySink()
	buf := &bytes.Buffer{}
	a := newAuditor(t, testConfig(), sink,
		WithOracle(stubOracle{}),
		WithRegister(stubRegister{}),
		WithLogger(logger.NewConsoleLogger(buf, "info")))

	summary, err := a.Run(context.Background(), []string{"slls_d19861021_t253_k0-0.pdf"})
	require.NoError(t, err)

	assert.Equal(t, 0, sink.tables[config.ReportKeys].Len())
	assert.Equal(t, 0, sink.tables[config.ReportKeyGap].Len())
	assert.Equal(t, []string{"key_begin", "key_end", "gap_overlap", "files"}, sink.tables[config.ReportKeyGap].Header)
	assert.Equal(t, 1, sink.tables[config.ReportNoKeys].Len())
	assert.Equal(t, "no", sink.tables[config.ReportKnownDuplicates].Rows[0][3])
	require.Len(t, summary.Warnings, 1)
	assert.Contains(t, buf.String(), "[WARN] no files with keys")
}

func TestRunSelectedReports(t *testing.T) {
	sink := newMemorySink()
	cfg := testConfig()
	cfg.Reports = []string{config.ReportTripGap, config.ReportKeys}

	a := newAuditor(t, cfg, sink, WithOracle(stubOracle{}))
	_, err := a.Run(context.Background(), listing)
	require.NoError(t, err)

	assert.Equal(t, []string{config.ReportKeys, config.ReportTripGap}, sink.order, "reports keep their fixed order")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newAuditor(t, testConfig(), newMemorySink(), WithOracle(stubOracle{}))
	_, err := a.Run(ctx, listing)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTripUniverseFromConfig(t *testing.T) {
	sink := newMemorySink()
	cfg := testConfig()
	cfg.Naming.TripRange = config.Range{Begin: 250, End: 255}
	cfg.Reports = []string{config.ReportTripGap}

	a := newAuditor(t, cfg, sink)
	_, err := a.Run(context.Background(), listing)
	require.NoError(t, err)

	rows := sink.tables[config.ReportTripGap].Rows
	assert.Equal(t, []string{"254", "255", "gap"}, rows[len(rows)-1])
}
