package register

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/flinders-library/scanaudit/internal/config"
)

func defaultColumns() Columns {
	return ColumnsFrom(config.Default().Register)
}

func TestFromRows(t *testing.T) {
	header := []string{"Filename", "notes", "front_sheets", "back_sheets", "missing_keys"}
	rows := [][]string{
		{"a.pdf", "", "1", "2", ""},
		{"b.pdf", "x", "1", "1", "12|13|20"},
		{"c.pdf", "", "one", "1", ""},
		{"d.pdf", "", "1", "-1", ""},
		{"e.pdf", "", "1", "1", "12|x"},
		{"", "", "1", "1", ""},
		{"f.pdf", "", "2"},
	}

	entries, err := FromRows(header, rows, defaultColumns())
	require.NoError(t, err)

	assert.Len(t, entries, 6)
	assert.Equal(t, Entry{Filename: "a.pdf", FrontSheets: 1, BackSheets: 2, MissingKeys: 0, Valid: true}, entries["a.pdf"])
	assert.Equal(t, Entry{Filename: "b.pdf", FrontSheets: 1, BackSheets: 1, MissingKeys: 3, Valid: true}, entries["b.pdf"])
	assert.False(t, entries["c.pdf"].Valid)
	assert.False(t, entries["d.pdf"].Valid)
	assert.False(t, entries["e.pdf"].Valid)
	assert.False(t, entries["f.pdf"].Valid, "row missing required cells")
}

func TestFromRowsMissingColumn(t *testing.T) {
	_, err := FromRows([]string{"filename", "front_sheets"}, nil, defaultColumns())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "back_sheets")
}

func TestCSVLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "register.csv")
	content := "\ufefffilename,front_sheets,back_sheets,missing_keys\n" +
		"slls_d19861010_t250_k4965-4989.pdf,1,1,4970|4971\n" +
		"slls_d19861013_t251_k4989-5009.pdf, 2 ,1,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	entries, err := (&CSVLoader{Path: path, Columns: defaultColumns()}).Load()
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, 2, entries["slls_d19861010_t250_k4965-4989.pdf"].MissingKeys)
	assert.Equal(t, 2, entries["slls_d19861013_t251_k4989-5009.pdf"].FrontSheets)
	assert.True(t, entries["slls_d19861013_t251_k4989-5009.pdf"].Valid)
}

func TestCSVLoaderMissingFile(t *testing.T) {
	_, err := (&CSVLoader{Path: filepath.Join(t.TempDir(), "none.csv"), Columns: defaultColumns()}).Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestCSVLoaderEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "register.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	_, err := (&CSVLoader{Path: path, Columns: defaultColumns()}).Load()
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestXLSXLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "register.xlsx")

	f := excelize.NewFile()
	sheet := "Register"
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	rows := [][]interface{}{
		{"filename", "front_sheets", "back_sheets", "missing_keys"},
		{"a.pdf", 1, 1, ""},
		{"b.pdf", 1, 2, "7|8"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	entries, err := (&XLSXLoader{Path: path, Columns: defaultColumns()}).Load()
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Filename: "b.pdf", FrontSheets: 1, BackSheets: 2, MissingKeys: 2, Valid: true}, entries["b.pdf"])

	_, err = (&XLSXLoader{Path: path, Sheet: "Nope", Columns: defaultColumns()}).Load()
	assert.Error(t, err)
}

func TestXLSXLoaderMissingFile(t *testing.T) {
	_, err := (&XLSXLoader{Path: filepath.Join(t.TempDir(), "none.xlsx"), Columns: defaultColumns()}).Load()
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenSelectsLoader(t *testing.T) {
	r := config.Default().Register

	r.Path = "register.XLSX"
	_, ok := Open(r).(*XLSXLoader)
	assert.True(t, ok)

	r.Path = "register.csv"
	_, ok = Open(r).(*CSVLoader)
	assert.True(t, ok)
}
