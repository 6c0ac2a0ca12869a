package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energymix/internal/services"
	"energymix/internal/storage"
	"energymix/pkg/contracts"
	"energymix/pkg/contracts/domain"
)

type stubHealthStore struct {
	samples []domain.EnergySample
	pingErr error
}

func (s *stubHealthStore) ReadAll(ctx context.Context) ([]domain.EnergySample, error) {
	return s.samples, nil
}

func (s *stubHealthStore) RowCount(ctx context.Context) (int, error) {
	return len(s.samples), nil
}

func (s *stubHealthStore) LatestLoad(ctx context.Context) (*storage.LoadRecord, error) {
	return nil, storage.ErrNoLoads
}

func (s *stubHealthStore) Ping(ctx context.Context) error {
	return s.pingErr
}

func newHealthRouter(store services.DataStore) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHealthHandler(services.NewHealthService(store, nil, logger), logger)

	r := chi.NewRouter()
	r.Mount("/api/health", handler.Routes())
	r.Get("/api/version", handler.Version)
	return r
}

func TestHealthHandler_HealthCheck(t *testing.T) {
	router := newHealthRouter(&stubHealthStore{
		samples: []domain.EnergySample{{}},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, 1, status.Store.Rows)
}

func TestHealthHandler_HealthCheck_Unhealthy(t *testing.T) {
	router := newHealthRouter(&stubHealthStore{pingErr: errors.New("locked")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthHandler_ReadinessAndLiveness(t *testing.T) {
	router := newHealthRouter(&stubHealthStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthHandler_Version(t *testing.T) {
	router := newHealthRouter(&stubHealthStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var info contracts.VersionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, contracts.Version, info.Version)
}
