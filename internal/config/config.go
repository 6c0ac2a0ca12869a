package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Database  DatabaseConfig  `yaml:"database" envconfig:"DATABASE"`
	Ingest    IngestConfig    `yaml:"ingest" envconfig:"INGEST"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
	Watcher   WatcherConfig   `yaml:"watcher" envconfig:"WATCHER"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"min=1"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s" validate:"min=1"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"60s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080" validate:"min=1"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// DatabaseConfig contains SQLite store configuration. Both binaries point
// at the same file; it is the only thing they share.
type DatabaseConfig struct {
	Path        string        `yaml:"path" envconfig:"PATH" default:"Energy.db" validate:"required"`
	BusyTimeout time.Duration `yaml:"busy_timeout" envconfig:"BUSY_TIMEOUT" default:"5s"`
}

// IngestConfig contains loader configuration
type IngestConfig struct {
	InputPath string `yaml:"input_path" envconfig:"INPUT_PATH" default:"Mix.xlsx" validate:"required"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" default:"1024"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" default:"1024"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" default:"30s"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" default:"60s"`
}

// WatcherConfig controls how the server notices loader runs. The watcher
// polls the load journal and broadcasts a refresh event on change.
type WatcherConfig struct {
	Enabled  bool          `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	Interval time.Duration `yaml:"interval" envconfig:"INTERVAL" default:"10s" validate:"required_if=Enabled true"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	configFile := getConfigFilePath()
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from an explicit YAML file, applying
// defaults for anything the file omits. Used by the -config flag.
func LoadFromFile(path string) (*Config, error) {
	fileConfig, err := loadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from file: %w", err)
	}

	cfg := mergeConfigs(*Default(), *fileConfig)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges a base config into an overriding one: zero values in
// the override are filled from the base.
func mergeConfigs(base, override Config) Config {
	// Server
	if override.Server.Port == 0 {
		override.Server.Port = base.Server.Port
	}
	if override.Server.ReadTimeout == 0 {
		override.Server.ReadTimeout = base.Server.ReadTimeout
	}
	if override.Server.WriteTimeout == 0 {
		override.Server.WriteTimeout = base.Server.WriteTimeout
	}
	if override.Server.IdleTimeout == 0 {
		override.Server.IdleTimeout = base.Server.IdleTimeout
	}
	if override.Server.MaxHeaderBytes == 0 {
		override.Server.MaxHeaderBytes = base.Server.MaxHeaderBytes
	}
	if override.Server.ShutdownTimeout == 0 {
		override.Server.ShutdownTimeout = base.Server.ShutdownTimeout
	}
	if override.Server.RequestTimeout == 0 {
		override.Server.RequestTimeout = base.Server.RequestTimeout
	}

	// Security
	if len(override.Security.AllowedOrigins) == 0 {
		override.Security.AllowedOrigins = base.Security.AllowedOrigins
	}
	if override.Security.RateLimit.RPS == 0 {
		override.Security.RateLimit.RPS = base.Security.RateLimit.RPS
	}
	if override.Security.RateLimit.Burst == 0 {
		override.Security.RateLimit.Burst = base.Security.RateLimit.Burst
	}

	// Logging
	if override.Logging.Level == "" {
		override.Logging.Level = base.Logging.Level
	}
	if override.Logging.Format == "" {
		override.Logging.Format = base.Logging.Format
	}
	if override.Logging.Output == "" {
		override.Logging.Output = base.Logging.Output
	}
	if override.Logging.FilePath == "" {
		override.Logging.FilePath = base.Logging.FilePath
	}

	// Database
	if override.Database.Path == "" {
		override.Database.Path = base.Database.Path
	}
	if override.Database.BusyTimeout == 0 {
		override.Database.BusyTimeout = base.Database.BusyTimeout
	}

	// Ingest
	if override.Ingest.InputPath == "" {
		override.Ingest.InputPath = base.Ingest.InputPath
	}

	// WebSocket
	if override.WebSocket.ReadBufferSize == 0 {
		override.WebSocket.ReadBufferSize = base.WebSocket.ReadBufferSize
	}
	if override.WebSocket.WriteBufferSize == 0 {
		override.WebSocket.WriteBufferSize = base.WebSocket.WriteBufferSize
	}
	if override.WebSocket.PingPeriod == 0 {
		override.WebSocket.PingPeriod = base.WebSocket.PingPeriod
	}
	if override.WebSocket.PongWait == 0 {
		override.WebSocket.PongWait = base.WebSocket.PongWait
	}

	// Watcher
	if override.Watcher.Interval == 0 {
		override.Watcher.Interval = base.Watcher.Interval
	}

	return override
}

// validate checks the configuration against its validate tags and
// normalizes the logging surface.
func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			return validationMessage(fieldErrors[0])
		}
		return err
	}

	// The log surface is JSON-only; anything else silently degrades
	// structured log queries downstream.
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Logging.Output != "stdout" && c.Logging.Output != "file" && c.Logging.Output != "both" {
		c.Logging.Output = "both"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// validationMessage maps a tag failure to an operator-readable message.
func validationMessage(fieldError validator.FieldError) error {
	switch fieldError.StructNamespace() {
	case "Config.Server.Port":
		return fmt.Errorf("invalid server port: %v", fieldError.Value())
	case "Config.Server.ReadTimeout":
		return fmt.Errorf("server read timeout must be positive")
	case "Config.Server.WriteTimeout":
		return fmt.Errorf("server write timeout must be positive")
	case "Config.Security.AllowedOrigins":
		return fmt.Errorf("at least one allowed origin must be specified")
	case "Config.Database.Path":
		return fmt.Errorf("database path must not be empty")
	case "Config.Ingest.InputPath":
		return fmt.Errorf("ingest input path must not be empty")
	case "Config.Watcher.Interval":
		return fmt.Errorf("watcher interval must be positive when the watcher is enabled")
	default:
		return fmt.Errorf("%s failed %s validation", fieldError.StructNamespace(), fieldError.Tag())
	}
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	// Check for config file in common locations
	locations := []string{
		"energymix.yaml",
		"configs/energymix.yaml",
		"../configs/energymix.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/app.log",
		},
		Database: DatabaseConfig{
			Path:        DefaultDatabaseFile,
			BusyTimeout: 5 * time.Second,
		},
		Ingest: IngestConfig{
			InputPath: DefaultInputFile,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
		Watcher: WatcherConfig{
			Enabled:  true,
			Interval: 10 * time.Second,
		},
	}
}
