package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "energymix/internal/errors"
	"energymix/pkg/contracts/domain"
)

// Workbook layout of the EIA monthly primary energy production table
// (Table 1.2). Rows above the header carry title matter; the row directly
// under the header carries units.
const (
	headerRowIndex = 10
	dataRowIndex   = headerRowIndex + 2
)

// requiredColumns maps the exact workbook header text to the production
// column it feeds. All ten must be present; anything else in the sheet is
// ignored.
var requiredColumns = map[string]string{
	"Coal Production":                      domain.SourceCoal,
	"Natural Gas (Dry) Production":         domain.SourceGasDry,
	"Natural Gas Plant Liquids Production": domain.SourceGasLiquid,
	"Crude Oil Production":                 domain.SourceCrudeOil,
	"Nuclear Electric Power Production":    domain.SourceNuclear,
	"Hydroelectric Power Production":       domain.SourceHydro,
	"Geothermal Energy Production":         domain.SourceGeothermal,
	"Solar Energy Production":              domain.SourceSolar,
	"Wind Energy Production":               domain.SourceWind,
	"Biomass Energy Production":            domain.SourceBiomass,
}

// ParseStats reports what one parse run saw. CoercionFallbacks counts cells
// that were not numeric (the workbook marks pre-instrumentation months
// "Not Available") and were stored as zero instead.
type ParseStats struct {
	Rows              int `json:"rows"`
	CoercionFallbacks int `json:"coercion_fallbacks"`
	SkippedDates      int `json:"skipped_dates"`
}

// dateLayouts covers the forms the month column shows up in, depending on
// how the cell was styled when the workbook was saved.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"1/2/2006",
	"1/2/06",
	"Jan-06",
	"Jan 2006",
	"January 2006",
}

// ParseFile reads the monthly production workbook at path and returns one
// sample per data row, in workbook order. A missing file surfaces
// ErrSourceFileNotFound before anything is opened; missing production
// columns surface ErrSchemaMismatch naming them.
func ParseFile(path string, logger *slog.Logger) ([]domain.EnergySample, *ParseStats, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil, apperrors.NewParsingError(
				fmt.Sprintf("input workbook %q", path), apperrors.ErrSourceFileNotFound)
		}
		return nil, nil, apperrors.NewParsingError(
			fmt.Sprintf("stat input workbook %q", path), err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, apperrors.NewParsingError(
			fmt.Sprintf("open workbook %q", path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, apperrors.NewParsingError(
			fmt.Sprintf("workbook %q has no sheets", path), nil)
	}
	sheetName := sheets[0]

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, apperrors.NewParsingError(
			fmt.Sprintf("read sheet %q", sheetName), err)
	}

	columns, err := mapColumns(rows)
	if err != nil {
		return nil, nil, err
	}

	stats := &ParseStats{}
	var samples []domain.EnergySample

	for i := dataRowIndex; i < len(rows); i++ {
		row := rows[i]
		if rowIsEmpty(row) {
			continue
		}

		date, err := parseMonth(cellAt(row, 0))
		if err != nil {
			stats.SkippedDates++
			logger.Warn("skipping row with unparseable date",
				slog.Int("row", i+1),
				slog.String("cell", cellAt(row, 0)))
			continue
		}

		sample := domain.EnergySample{Date: date}
		for source, col := range columns {
			value, ok := parseValue(cellAt(row, col))
			if !ok {
				stats.CoercionFallbacks++
			}
			sample.Set(source, value)
		}

		samples = append(samples, sample)
		stats.Rows++
	}

	logger.Info("workbook parsed",
		slog.String("path", path),
		slog.String("sheet", sheetName),
		slog.Int("rows", stats.Rows),
		slog.Int("coercion_fallbacks", stats.CoercionFallbacks),
		slog.Int("skipped_dates", stats.SkippedDates))

	return samples, stats, nil
}

// mapColumns resolves each required header to its column index. The header
// row sits at a fixed offset in this table, so no searching happens; a
// short workbook or renamed headers fail as a schema mismatch.
func mapColumns(rows [][]string) (map[string]int, error) {
	if len(rows) <= headerRowIndex {
		return nil, apperrors.NewSchemaError(
			fmt.Sprintf("workbook has %d rows, header expected at row %d", len(rows), headerRowIndex+1), nil)
	}

	columns := make(map[string]int, len(requiredColumns))
	for idx, header := range rows[headerRowIndex] {
		if source, ok := requiredColumns[strings.TrimSpace(header)]; ok {
			columns[source] = idx
		}
	}

	if len(columns) < len(requiredColumns) {
		var missing []string
		for header, source := range requiredColumns {
			if _, ok := columns[source]; !ok {
				missing = append(missing, header)
			}
		}
		sort.Strings(missing)
		return nil, apperrors.NewSchemaError(
			fmt.Sprintf("missing columns: %s", strings.Join(missing, ", ")), nil)
	}

	return columns, nil
}

// parseMonth accepts the date forms listed in dateLayouts plus raw Excel
// serial numbers, normalized to the first of the month in UTC.
func parseMonth(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, fmt.Errorf("empty date cell")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
		}
	}

	if serial, err := strconv.ParseFloat(cell, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("excel serial %q: %w", cell, err)
		}
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", cell)
}

// parseValue converts one production cell. Non-numeric content coerces to
// zero; the second return reports whether the cell parsed cleanly.
func parseValue(cell string) (float64, bool) {
	cell = strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if cell == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	// ParseFloat accepts "NaN" and "Inf" spellings; a non-finite value
	// would poison every sum downstream, so it coerces like any other
	// unusable cell.
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
