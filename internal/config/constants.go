package config

import "time"

// Application constants for the EnergyMix system
const (
	// Application Info
	AppName = "EnergyMix"

	// EnvPrefix namespaces every environment variable, e.g.
	// ENERGYMIX_SERVER_PORT, ENERGYMIX_DATABASE_PATH.
	EnvPrefix = "ENERGYMIX"

	// Store Defaults
	DefaultDatabaseFile = "Energy.db"
	DefaultInputFile    = "Mix.xlsx"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultHTTPTimeout  = 30 * time.Second
	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second

	// WebSocket Buffer Sizes
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// API Endpoints (internal)
	APIBasePath     = "/api"
	SeriesEndpoint  = "/api/series"
	MixEndpoint     = "/api/mix"
	SourcesEndpoint = "/api/sources"
	YearsEndpoint   = "/api/years"
	HealthEndpoint  = "/api/health"
	MetricsEndpoint = "/metrics"

	// WebSocket Endpoints
	WebSocketEndpoint = "/ws"
)
