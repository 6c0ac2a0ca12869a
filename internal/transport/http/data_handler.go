package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "energymix/internal/errors"
	"energymix/internal/exporter"
	custommiddleware "energymix/internal/middleware"
	"energymix/internal/services"
	apiv1 "energymix/pkg/contracts/api/v1"
	"energymix/pkg/contracts/domain"
)

// DataHandler serves the presentation boundary of the dashboard.
type DataHandler struct {
	service      DataServiceInterface
	exporter     *exporter.SeriesWriter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	query        *custommiddleware.QueryParamValidator
	validation   *custommiddleware.ValidationMiddleware
}

// NewDataHandler creates a new data handler.
func NewDataHandler(service DataServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataHandler{
		service:      service,
		exporter:     exporter.NewSeriesWriter(logger),
		logger:       logger.With(slog.String("handler", "data")),
		errorHandler: errorHandler,
		query:        custommiddleware.NewQueryParamValidator(logger, errorHandler),
		validation:   custommiddleware.NewValidationMiddleware(logger, errorHandler),
	}
}

// Routes sets up the data API routes.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.validation.ValidateRequest)

	r.Get("/series", h.GetSeries)
	r.Get("/series/export", h.ExportSeries)
	r.Get("/mix/{year}", h.GetMix)
	r.Get("/sources", h.GetSources)
	r.Get("/years", h.GetYears)

	return r
}

// GetSeries handles GET /api/series.
func (h *DataHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	query, ok := h.parseSeriesQuery(w, r)
	if !ok {
		return
	}

	rows, err := h.service.Series(r.Context(), query)
	if err != nil {
		h.handleSeriesError(w, r, err)
		return
	}

	custommiddleware.RecordSeriesQueryMetrics(r.Context(), string(query.Resolution), string(query.Mode))

	render.JSON(w, r, map[string]interface{}{
		"status":     "success",
		"data":       rows,
		"count":      len(rows),
		"resolution": query.Resolution,
		"mode":       query.Mode,
	})
}

// ExportSeries handles GET /api/series/export: the same query surface as
// GET /api/series, rendered as a CSV attachment for the dashboard's
// download affordance. An optional filename parameter names the
// attachment; it must not carry path separators.
func (h *DataHandler) ExportSeries(w http.ResponseWriter, r *http.Request) {
	query, ok := h.parseSeriesQuery(w, r)
	if !ok {
		return
	}

	export := apiv1.SeriesExportRequest{Filename: r.URL.Query().Get("filename")}
	if err := h.validation.ValidateStruct(export); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rows, err := h.service.Series(r.Context(), query)
	if err != nil {
		h.handleSeriesError(w, r, err)
		return
	}

	filename := export.Filename
	if filename == "" {
		filename = fmt.Sprintf("energymix_%s_%s.csv", query.Resolution, query.Mode)
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.exporter.Write(w, rows, query.Sources, query.Resolution); err != nil {
		// Headers are out by now; all we can do is log.
		h.logger.ErrorContext(r.Context(), "csv export failed mid-stream",
			slog.String("error", err.Error()))
		return
	}

	custommiddleware.RecordExportMetrics(r.Context(), "csv")
}

// GetMix handles GET /api/mix/{year}. Any numeric year is accepted; a
// year absent from the dataset yields a zero breakdown, which the
// dashboard renders as an empty pie.
func (h *DataHandler) GetMix(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("year", "year must be an integer"))
		return
	}

	mix, err := h.service.Mix(r.Context(), year)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "mix query failed",
			slog.Int("year", year),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   mix,
	})
}

// GetSources handles GET /api/sources.
func (h *DataHandler) GetSources(w http.ResponseWriter, r *http.Request) {
	sources := h.service.Sources()
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   sources,
		"count":  len(sources),
	})
}

// GetYears handles GET /api/years.
func (h *DataHandler) GetYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.Years(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "years query failed",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   years,
	})
}

// parseSeriesQuery validates the shared query surface of /api/series and
// /api/series/export. Source names pass through the query validator so
// unknown names come back with the allowed list; everything else is
// checked against the SeriesRequest contract tags. On failure a problem
// document has already been rendered and the second return is false.
func (h *DataHandler) parseSeriesQuery(w http.ResponseWriter, r *http.Request) (domain.SeriesQuery, bool) {
	sources, ok := h.query.ValidateSources(w, r, "sources",
		h.service.Sources(), h.service.Sources())
	if !ok {
		return domain.SeriesQuery{}, false
	}

	from, ok := h.query.ValidateInt(w, r, "from", 1900, 2200, 0)
	if !ok {
		return domain.SeriesQuery{}, false
	}
	to, ok := h.query.ValidateInt(w, r, "to", 1900, 2200, 0)
	if !ok {
		return domain.SeriesQuery{}, false
	}

	req := apiv1.SeriesRequest{
		Sources:    sources,
		Resolution: r.URL.Query().Get("resolution"),
		Mode:       r.URL.Query().Get("mode"),
		From:       from,
		To:         to,
	}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return domain.SeriesQuery{}, false
	}

	if req.Resolution == "" {
		req.Resolution = string(domain.ResolutionMonthly)
	}
	if req.Mode == "" {
		req.Mode = string(domain.ValueModeRaw)
	}

	return domain.SeriesQuery{
		Sources:    req.Sources,
		Resolution: domain.Resolution(req.Resolution),
		Mode:       domain.ValueMode(req.Mode),
		FromYear:   req.From,
		ToYear:     req.To,
	}, true
}

func (h *DataHandler) handleSeriesError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownSource):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("sources", err.Error()))
	case errors.Is(err, services.ErrInvalidYearRange):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("from", err.Error()))
	default:
		h.logger.ErrorContext(r.Context(), "series query failed",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
	}
}
