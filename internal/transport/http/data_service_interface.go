package http

import (
	"context"

	"energymix/pkg/contracts/domain"
)

// DataServiceInterface is what the data handler needs from the services
// layer. *services.DataService satisfies it; tests substitute a stub.
type DataServiceInterface interface {
	Series(ctx context.Context, query domain.SeriesQuery) ([]domain.Row, error)
	Mix(ctx context.Context, year int) (domain.MixBreakdown, error)
	Sources() []string
	Years(ctx context.Context) (domain.YearRange, error)
}
