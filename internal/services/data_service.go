package services

import (
	"context"
	"fmt"
	"log/slog"

	"energymix/internal/dataprocessing"
	apperrors "energymix/internal/errors"
	"energymix/internal/infrastructure"
	"energymix/internal/storage"
	"energymix/pkg/contracts/domain"
)

// DataStore is the slice of the storage layer the data service reads.
// *storage.Store satisfies it; tests substitute a stub.
type DataStore interface {
	ReadAll(ctx context.Context) ([]domain.EnergySample, error)
	RowCount(ctx context.Context) (int, error)
	LatestLoad(ctx context.Context) (*storage.LoadRecord, error)
	Ping(ctx context.Context) error
}

// DataService serves presentation queries over the loaded production
// table. Every query re-reads the store and recomputes its derived rows;
// nothing is cached, so a loader run is visible on the next request.
type DataService struct {
	store   DataStore
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
}

// NewDataService creates a data service with injected dependencies.
// metrics may be nil when OpenTelemetry is disabled.
func NewDataService(store DataStore, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{
		store:   store,
		logger:  logger.With(slog.String("service", "data")),
		metrics: metrics,
	}
}

// Sources returns the production sources the API reports on, in storage
// order. Crude oil is excluded here and everywhere downstream.
func (s *DataService) Sources() []string {
	return domain.ReportableSources()
}

// Years returns the inclusive year bounds of the loaded dataset. An empty
// table yields a zero range, not an error.
func (s *DataService) Years(ctx context.Context) (domain.YearRange, error) {
	rows, err := s.dataset(ctx)
	if err != nil {
		return domain.YearRange{}, err
	}

	bounds, ok := dataprocessing.YearBounds(rows)
	if !ok {
		return domain.YearRange{}, nil
	}
	return bounds, nil
}

// Series answers one charting query. Pipeline order is fixed: filter the
// year range, aggregate to annual resolution when asked, convert to
// percent-of-row when asked, then project the selected sources. The
// aggregate and percent steps each run exactly once; swapping or
// repeating them changes the numbers.
//
// A nil source list selects every reportable source; an explicitly empty
// one selects nothing and yields an empty series. An empty table or a
// range with no data yields an empty series too.
func (s *DataService) Series(ctx context.Context, query domain.SeriesQuery) ([]domain.Row, error) {
	sources := query.Sources
	if sources == nil {
		sources = domain.ReportableSources()
	}
	if len(sources) == 0 {
		return []domain.Row{}, nil
	}
	if err := validateSources(sources); err != nil {
		return nil, err
	}

	rows, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}

	from, to := query.FromYear, query.ToYear
	if bounds, ok := dataprocessing.YearBounds(rows); ok {
		if from == 0 {
			from = bounds.Min
		}
		if to == 0 {
			to = bounds.Max
		}
	}
	if from > to && to != 0 {
		return nil, fmt.Errorf("%w: from %d after to %d", ErrInvalidYearRange, from, to)
	}

	rows = dataprocessing.FilterYears(rows, from, to)
	if query.Resolution == domain.ResolutionAnnual {
		rows = dataprocessing.AggregateAnnual(rows)
	}
	if query.Mode == domain.ValueModePercent {
		rows = dataprocessing.MixFraction(rows)
	}
	rows = dataprocessing.ProjectSources(rows, sources)

	infrastructure.RecordSeriesQuery(ctx, s.metrics, string(query.Resolution), string(query.Mode))

	s.logger.DebugContext(ctx, "series query served",
		slog.Int("points", len(rows)),
		slog.String("resolution", string(query.Resolution)),
		slog.String("mode", string(query.Mode)),
		slog.Int("from", from),
		slog.Int("to", to))

	return rows, nil
}

// Mix returns the six-category breakdown of one year's production totals.
// A year with no data comes back as a zero breakdown; the dashboard
// renders it as an empty pie.
func (s *DataService) Mix(ctx context.Context, year int) (domain.MixBreakdown, error) {
	rows, err := s.dataset(ctx)
	if err != nil {
		return domain.MixBreakdown{}, err
	}

	annual := dataprocessing.AggregateAnnual(dataprocessing.FilterYears(rows, year, year))
	if len(annual) == 0 {
		return domain.MixBreakdown{Year: year}, nil
	}
	return dataprocessing.CategorizeMix(annual[0]), nil
}

// dataset reads the production table and converts it to presentation
// rows, dropping crude oil.
func (s *DataService) dataset(ctx context.Context) ([]domain.Row, error) {
	samples, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError("read production table", err)
	}
	return dataprocessing.ReportableRows(samples), nil
}

func validateSources(sources []string) error {
	known := make(map[string]bool, len(domain.ReportableSources()))
	for _, source := range domain.ReportableSources() {
		known[source] = true
	}
	for _, source := range sources {
		if !known[source] {
			return fmt.Errorf("%w: %q", ErrUnknownSource, source)
		}
	}
	return nil
}
