package dataprocessing

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "energymix/internal/errors"
	"energymix/internal/shared/testutil"
	"energymix/pkg/contracts/domain"
)

var fixtureHeaders = []string{
	"Month",
	"Coal Production",
	"Natural Gas (Dry) Production",
	"Natural Gas Plant Liquids Production",
	"Crude Oil Production",
	"Nuclear Electric Power Production",
	"Hydroelectric Power Production",
	"Geothermal Energy Production",
	"Solar Energy Production",
	"Wind Energy Production",
	"Biomass Energy Production",
}

// writeFixture builds a workbook with the EIA table layout: title matter,
// header at row 11 (1-based), units row under it, data from row 13.
func writeFixture(t *testing.T, headers []string, units []any, data [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	require.NoError(t, f.SetCellValue(sheet, "A1", "U.S. Energy Information Administration"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "Table 1.2  Primary Energy Production by Source"))

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, headerRowIndex+1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, header))
	}

	if units == nil {
		units = []any{"", "(Quadrillion Btu)"}
	}
	for col, value := range units {
		cell, err := excelize.CoordinatesToCellName(col+1, headerRowIndex+2)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, value))
	}

	for r, dataRow := range data {
		for c, value := range dataRow {
			cell, err := excelize.CoordinatesToCellName(c+1, dataRowIndex+1+r)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	path := filepath.Join(t.TempDir(), "Mix.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// fullRow builds one data row: a date cell plus ten production values
// derived from base in column order.
func fullRow(date any, base float64) []any {
	row := []any{date}
	for i := 0; i < 10; i++ {
		row = append(row, base+float64(i)/100)
	}
	return row
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestParseFile_MissingFile(t *testing.T) {
	_, _, err := ParseFile(filepath.Join(t.TempDir(), "absent.xlsx"), testLogger())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSourceFileNotFound)
}

func TestParseFile_NotAWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Mix.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0o644))

	_, _, err := ParseFile(path, testLogger())
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeParsing, appErr.Type)
}

func TestParseFile_ParsesRows(t *testing.T) {
	path := writeFixture(t, fixtureHeaders, nil, [][]any{
		fullRow("1973-01-01", 1.0),
		fullRow("1973-02-01", 2.0),
		fullRow("1973-03-01", 3.0),
	})

	samples, stats, err := ParseFile(path, testLogger())
	require.NoError(t, err)
	require.Len(t, samples, 3)

	assert.Equal(t, 3, stats.Rows)
	assert.Zero(t, stats.CoercionFallbacks)
	assert.Zero(t, stats.SkippedDates)

	first := samples[0]
	assert.Equal(t, "1973-01", first.Month())
	assert.Equal(t, 1.0, first.Coal)
	assert.Equal(t, 1.01, first.GasDry)
	assert.Equal(t, 1.02, first.GasLiquid)
	assert.Equal(t, 1.03, first.CrudeOil)
	assert.Equal(t, 1.04, first.Nuclear)
	assert.Equal(t, 1.05, first.Hydro)
	assert.Equal(t, 1.06, first.Geothermal)
	assert.Equal(t, 1.07, first.Solar)
	assert.Equal(t, 1.08, first.Wind)
	assert.Equal(t, 1.09, first.Biomass)

	assert.Equal(t, "1973-02", samples[1].Month())
	assert.Equal(t, "1973-03", samples[2].Month())
}

func TestParseFile_DateForms(t *testing.T) {
	// The month column shows up differently depending on how the cell was
	// styled when the workbook was saved: ISO text, datetime text, slash
	// forms, month-name forms, or a raw Excel serial.
	path := writeFixture(t, fixtureHeaders, nil, [][]any{
		fullRow("1973-01-01", 1.0),
		fullRow("1973-02-01 00:00:00", 1.0),
		fullRow("3/1/1973", 1.0),
		fullRow("4/1/73", 1.0),
		fullRow("May-73", 1.0),
		fullRow(26665, 1.0), // Excel serial for 1973-01-01
	})

	samples, stats, err := ParseFile(path, testLogger())
	require.NoError(t, err)
	require.Len(t, samples, 6)
	assert.Zero(t, stats.SkippedDates)

	assert.Equal(t, "1973-01", samples[0].Month())
	assert.Equal(t, "1973-02", samples[1].Month())
	assert.Equal(t, "1973-03", samples[2].Month())
	assert.Equal(t, "1973-04", samples[3].Month())
	assert.Equal(t, "1973-05", samples[4].Month())
	assert.Equal(t, "1973-01", samples[5].Month())
}

func TestParseFile_CoercesNonNumericCells(t *testing.T) {
	row := fullRow("1973-01-01", 1.0)
	row[1] = "Not Available" // coal
	row[8] = ""              // solar
	path := writeFixture(t, fixtureHeaders, nil, [][]any{row})

	samples, stats, err := ParseFile(path, testLogger())
	require.NoError(t, err)
	require.Len(t, samples, 1)

	assert.Zero(t, samples[0].Coal)
	assert.Zero(t, samples[0].Solar)
	assert.Equal(t, 1.01, samples[0].GasDry)
	assert.Equal(t, 2, stats.CoercionFallbacks)
}

func TestParseFile_CoercesNonFiniteCells(t *testing.T) {
	// strconv accepts "NaN" and "Inf" spellings that pandas-era exports
	// occasionally carry; they must coerce to zero like any other
	// unusable cell instead of reaching the store.
	row := fullRow("1973-01-01", 1.0)
	row[1] = "NaN"       // coal
	row[5] = "Inf"       // nuclear
	row[9] = "-Infinity" // wind
	path := writeFixture(t, fixtureHeaders, nil, [][]any{row})

	samples, stats, err := ParseFile(path, testLogger())
	require.NoError(t, err)
	require.Len(t, samples, 1)

	assert.False(t, math.IsNaN(samples[0].Coal))
	assert.Zero(t, samples[0].Coal)
	assert.Zero(t, samples[0].Nuclear)
	assert.Zero(t, samples[0].Wind)
	assert.Equal(t, 1.01, samples[0].GasDry)
	assert.Equal(t, 3, stats.CoercionFallbacks)
}

func TestParseFile_SkipsUnparseableDates(t *testing.T) {
	path := writeFixture(t, fixtureHeaders, nil, [][]any{
		fullRow("1973-01-01", 1.0),
		fullRow("Annual Total", 99.0),
		{"Source: U.S. Energy Information Administration"},
		fullRow("1973-02-01", 2.0),
	})

	samples, stats, err := ParseFile(path, testLogger())
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 2, stats.SkippedDates)
	assert.Equal(t, "1973-01", samples[0].Month())
	assert.Equal(t, "1973-02", samples[1].Month())
}

func TestParseFile_SchemaMismatch(t *testing.T) {
	var headers []string
	for _, h := range fixtureHeaders {
		if h == "Solar Energy Production" || h == "Wind Energy Production" {
			continue
		}
		headers = append(headers, h)
	}
	path := writeFixture(t, headers, nil, [][]any{fullRow("1973-01-01", 1.0)})

	_, _, err := ParseFile(path, testLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "Solar Energy Production")
	assert.Contains(t, err.Error(), "Wind Energy Production")
}

func TestParseFile_WorkbookTooShortForHeader(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "just a title"))

	path := filepath.Join(t.TempDir(), "Mix.xlsx")
	require.NoError(t, f.SaveAs(path))

	_, _, err := ParseFile(path, testLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSchemaMismatch)
}

func TestParseFile_IgnoresExtraColumns(t *testing.T) {
	headers := append(append([]string{}, fixtureHeaders...), "Total Primary Energy Production")
	row := append(fullRow("1973-01-01", 1.0), 12.34)
	path := writeFixture(t, headers, nil, [][]any{row})

	samples, stats, err := ParseFile(path, testLogger())
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 1.0, samples[0].Coal)
	assert.Zero(t, stats.CoercionFallbacks)
}

func TestParseFile_UnitsRowNeverParsed(t *testing.T) {
	// Even a units row that happens to look like data stays skipped; the
	// row under the header is structural, not data.
	units := fullRow("1900-01-01", 5.0)
	path := writeFixture(t, fixtureHeaders, units, [][]any{fullRow("1973-01-01", 1.0)})

	samples, _, err := ParseFile(path, testLogger())
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, "1973-01", samples[0].Month())
}

func TestParseFile_LogsSkippedRows(t *testing.T) {
	path := writeFixture(t, fixtureHeaders, nil, [][]any{
		fullRow("1973-01-01", 1.0),
		fullRow("Annual Total", 99.0),
	})

	handler := testutil.NewBufferedSlogHandler(t)
	_, _, err := ParseFile(path, slog.New(handler))
	require.NoError(t, err)

	assert.True(t, handler.ContainsMessage("skipping row with unparseable date"))
	assert.True(t, handler.ContainsAttr("cell", "Annual Total"))
	assert.Len(t, handler.GetRecordsByLevel(slog.LevelWarn), 1)
}

func TestParseFile_EmptyDataSection(t *testing.T) {
	path := writeFixture(t, fixtureHeaders, nil, nil)

	samples, stats, err := ParseFile(path, testLogger())
	require.NoError(t, err)
	assert.Empty(t, samples)
	assert.Zero(t, stats.Rows)
}

func TestParseFile_ValuesRoundTrip(t *testing.T) {
	// Awkward magnitudes survive the cell round trip unchanged.
	row := fullRow("1973-01-01", 0.0)
	row[1] = 1.1542
	row[2] = 0.000873
	row[3] = 22.19
	path := writeFixture(t, fixtureHeaders, nil, [][]any{row})

	samples, _, err := ParseFile(path, testLogger())
	require.NoError(t, err)
	require.Len(t, samples, 1)

	assert.Equal(t, 1.1542, samples[0].Coal)
	assert.Equal(t, 0.000873, samples[0].GasDry)
	assert.Equal(t, 22.19, samples[0].GasLiquid)

	values := samples[0].Values()
	assert.Len(t, values, len(domain.AllSources()))
}
