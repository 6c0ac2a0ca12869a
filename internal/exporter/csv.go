package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"energymix/pkg/contracts/domain"
)

// utf8BOM helps Excel recognize the encoding of a downloaded file.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SeriesWriter renders presentation rows as CSV.
type SeriesWriter struct {
	logger *slog.Logger
}

// NewSeriesWriter creates a series CSV writer.
func NewSeriesWriter(logger *slog.Logger) *SeriesWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SeriesWriter{logger: logger.With(slog.String("component", "exporter"))}
}

// Write streams rows to out as CSV. The column order follows sources so
// the file matches the query that produced it; rows missing a column get
// an empty cell. Monthly rows are dated YYYY-MM, annual rows by year.
func (w *SeriesWriter) Write(out io.Writer, rows []domain.Row, sources []string, resolution domain.Resolution) error {
	if _, err := out.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(out)

	header := make([]string, 0, len(sources)+1)
	header = append(header, "date")
	header = append(header, sources...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(header))
	for _, row := range rows {
		if resolution == domain.ResolutionAnnual {
			record[0] = strconv.Itoa(row.Date.Year())
		} else {
			record[0] = row.Date.Format(domain.MonthLayout)
		}
		for i, source := range sources {
			value, ok := row.Values[source]
			if !ok {
				record[i+1] = ""
				continue
			}
			record[i+1] = strconv.FormatFloat(value, 'f', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", record[0], err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	w.logger.Debug("series exported",
		slog.Int("rows", len(rows)),
		slog.Int("columns", len(sources)))

	return nil
}
