package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"energymix/internal/infrastructure"
	"energymix/internal/storage"
	ws "energymix/internal/websocket"
	"energymix/pkg/contracts"
)

// RuntimeStats is the slice of the metrics collector the health report
// reads. *infrastructure.SystemMetricsCollector satisfies it.
type RuntimeStats interface {
	CurrentStats(ctx context.Context) *infrastructure.SystemStats
}

// HealthService provides the health, readiness and version surface of the
// dashboard server.
type HealthService struct {
	store     DataStore
	hub       *ws.Hub
	stats     RuntimeStats
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health check response.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Store     StoreHealth            `json:"store"`
	Clients   int                    `json:"websocket_clients"`
}

// StoreHealth reports what the server can see of the shared database.
type StoreHealth struct {
	Status    string    `json:"status"`
	Rows      int       `json:"rows"`
	LastLoad  time.Time `json:"last_load,omitempty"`
	LoadCount int       `json:"last_load_records,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// NewHealthService creates a health service. The hub may be nil when the
// WebSocket channel is disabled.
func NewHealthService(store DataStore, hub *ws.Hub, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		store:     store,
		hub:       hub,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// WithRuntimeStats attaches the system metrics collector so health
// reports include the same runtime snapshot /metrics exposes.
func (s *HealthService) WithRuntimeStats(stats RuntimeStats) *HealthService {
	s.stats = stats
	return s
}

// HealthCheck handles the full health report. The server is healthy when
// the store is reachable; a reachable but never-loaded store degrades
// rather than fails, because the web process legitimately boots before
// the first loader run.
func (s *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	store := s.storeHealth(ctx)

	status := "healthy"
	if store.Status == "unreachable" {
		status = "unhealthy"
	} else if store.Rows == 0 {
		status = "degraded"
	}

	clients := 0
	if s.hub != nil {
		clients = s.hub.ClientCount()
	}

	rt := map[string]interface{}{
		"go_version": runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
	}
	if s.stats != nil {
		snapshot := s.stats.CurrentStats(ctx)
		rt["goroutines"] = snapshot.GoRoutines
		rt["memory_usage_bytes"] = snapshot.MemoryUsage
		rt["gc_count"] = snapshot.GCCount
	}

	return HealthStatus{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Version:   contracts.Version,
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Runtime:   rt,
		Store:     store,
		Clients:   clients,
	}
}

// ReadinessCheck reports whether the server can serve queries.
func (s *HealthService) ReadinessCheck(ctx context.Context) map[string]interface{} {
	ready := true
	message := "ready"
	if err := s.store.Ping(ctx); err != nil {
		ready = false
		message = fmt.Sprintf("store unreachable: %v", err)
	}

	return map[string]interface{}{
		"ready":     ready,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}
}

// LivenessCheck reports that the process is alive.
func (s *HealthService) LivenessCheck(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{
		"alive":     true,
		"uptime":    time.Since(s.startTime).Round(time.Second).String(),
		"timestamp": time.Now().UTC(),
	}
}

// Version returns build and API version information.
func (s *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}

func (s *HealthService) storeHealth(ctx context.Context) StoreHealth {
	if err := s.store.Ping(ctx); err != nil {
		return StoreHealth{Status: "unreachable", Message: err.Error()}
	}

	health := StoreHealth{Status: "reachable"}

	rows, err := s.store.RowCount(ctx)
	if err != nil {
		health.Message = err.Error()
		return health
	}
	health.Rows = rows

	load, err := s.store.LatestLoad(ctx)
	switch {
	case errors.Is(err, storage.ErrNoLoads):
		health.Message = "no loads recorded"
	case err != nil:
		health.Message = err.Error()
	default:
		health.LastLoad = load.LoadedAt
		health.LoadCount = load.RecordCount
	}

	return health
}
