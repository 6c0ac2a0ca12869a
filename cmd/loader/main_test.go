package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"energymix/internal/config"
	apperrors "energymix/internal/errors"
	"energymix/internal/storage"
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

// writeFixture builds a minimal workbook in the EIA table layout: header
// at row 11 (1-based), units row below it, data from row 13.
func writeFixture(t *testing.T, data [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for col, header := range fixtureHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 11)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, header))
	}
	require.NoError(t, f.SetCellValue(sheet, "B12", "(Quadrillion Btu)"))

	for r, dataRow := range data {
		for c, value := range dataRow {
			cell, err := excelize.CoordinatesToCellName(c+1, 13+r)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	path := filepath.Join(t.TempDir(), "Mix.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func testConfig(t *testing.T, inputPath string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Ingest.InputPath = inputPath
	cfg.Database.Path = filepath.Join(t.TempDir(), "energy.db")
	cfg.Logging.Output = "stdout"
	return cfg
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_LoadsWorkbookIntoStore(t *testing.T) {
	path := writeFixture(t, [][]any{
		{"2020-01-01", 1.1, 2.2, 0.3, 0.9, 0.7, 0.2, "Not Available", 0.05, 0.3, 0.4},
		{"2020-02-01", 1.0, 2.1, 0.3, 0.9, 0.7, 0.2, 0.01, 0.05, 0.3, 0.4},
	})
	cfg := testConfig(t, path)

	require.NoError(t, run(context.Background(), cfg, discard()))

	store, err := storage.Open(cfg.Database.Path, cfg.Database.BusyTimeout, discard())
	require.NoError(t, err)
	defer store.Close()

	samples, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.InDelta(t, 1.1, samples[0].Coal, 1e-9)
	assert.Zero(t, samples[0].Geothermal, "Not Available coerces to zero")

	load, err := store.LatestLoad(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, load.RecordCount)
	assert.Equal(t, 1, load.CoercionFallbacks)
}

func TestRun_IsIdempotent(t *testing.T) {
	path := writeFixture(t, [][]any{
		{"2020-01-01", 1.1, 2.2, 0.3, 0.9, 0.7, 0.2, 0.1, 0.05, 0.3, 0.4},
	})
	cfg := testConfig(t, path)

	require.NoError(t, run(context.Background(), cfg, discard()))
	require.NoError(t, run(context.Background(), cfg, discard()))

	store, err := storage.Open(cfg.Database.Path, cfg.Database.BusyTimeout, discard())
	require.NoError(t, err)
	defer store.Close()

	count, err := store.RowCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count, "replace, not merge")

	history, err := store.LoadHistory(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, history, 2, "each run appends one journal row")
}

func TestRun_MissingWorkbookTouchesNothing(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "absent.xlsx"))

	err := run(context.Background(), cfg, discard())
	require.Error(t, err)

	_, statErr := filepath.Glob(cfg.Database.Path)
	require.NoError(t, statErr)
	assert.NoFileExists(t, cfg.Database.Path, "store must not be created on a missing input")
}

func TestRun_SchemaMismatchFailsFast(t *testing.T) {
	// Build a workbook whose header row lacks the wind column.
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for col, header := range fixtureHeaders[:9] {
		cell, err := excelize.CoordinatesToCellName(col+1, 11)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, header))
	}
	path := filepath.Join(t.TempDir(), "Mix.xlsx")
	require.NoError(t, f.SaveAs(path))
	f.Close()

	cfg := testConfig(t, path)
	err := run(context.Background(), cfg, discard())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSchemaMismatch)
	assert.NoFileExists(t, cfg.Database.Path)
}
