// Package config provides centralized configuration management for the
// application. It loads settings from environment variables with sensible
// defaults and validates everything on startup to fail fast on
// misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Generate GenerateConfig
	SMTP     SMTPConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Cleanup  CleanupConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 0 for SSE)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// MaxConns is the maximum number of connections in the pool (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" default:"20"`

	// MinConns is the minimum number of connections to keep open (default: 4)
	MinConns int `env:"DB_MIN_CONNS" default:"4"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// UploadConfig holds upload settings for rosters and template images.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed upload size in bytes (default: 10MB).
	// Applies to roster CSVs and event template images alike.
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`

	// PreviewRows is how many parsed recipients preview responses include (default: 10)
	PreviewRows int `env:"UPLOAD_PREVIEW_ROWS" default:"10"`
}

// GenerateConfig holds certificate generation settings.
type GenerateConfig struct {
	// MaxConcurrent is the maximum number of parallel generation jobs (default: 3)
	MaxConcurrent int `env:"GENERATE_MAX_CONCURRENT" default:"3"`

	// MaxWaitTime is how long to wait for a job slot (default: 30s)
	MaxWaitTime time.Duration `env:"GENERATE_MAX_WAIT_TIME" default:"30s"`

	// Timeout is the maximum duration for a single generation job (default: 15m)
	Timeout time.Duration `env:"GENERATE_TIMEOUT" default:"15m"`

	// Workers is the render parallelism inside one job (default: 4)
	Workers int `env:"GENERATE_WORKERS" default:"4"`

	// OutputDir is where finished certificate archives are written (default: ./data/artifacts)
	OutputDir string `env:"GENERATE_OUTPUT_DIR" default:"./data/artifacts"`

	// FontPath is an optional TrueType font for certificate text.
	// When empty the built-in Go Regular face is used.
	FontPath string `env:"GENERATE_FONT_PATH"`
}

// SMTPConfig holds outgoing mail settings. Leaving Host empty disables
// email delivery; certificates are then download-only.
type SMTPConfig struct {
	// Host is the SMTP server hostname (default: empty, email disabled)
	Host string `env:"SMTP_HOST"`

	// Port is the SMTP server port (default: 587)
	Port int `env:"SMTP_PORT" default:"587"`

	// Username authenticates against the SMTP server
	Username string `env:"SMTP_USERNAME"`

	// Password authenticates against the SMTP server
	Password string `env:"SMTP_PASSWORD"`

	// From is the sender address on certificate emails (default: certificates@localhost)
	From string `env:"SMTP_FROM" default:"certificates@localhost"`
}

// Enabled reports whether email delivery is configured.
func (c *SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit is requests per minute for upload and generate endpoints (default: 10)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey gates the API behind X-API-Key auth (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// CleanupConfig holds retention settings for generated artifacts and audit
// entries.
type CleanupConfig struct {
	// ArtifactRetention is how long finished archives stay on disk (default: 720h)
	ArtifactRetention time.Duration `env:"CLEANUP_ARTIFACT_RETENTION" default:"720h"`

	// AuditRetentionDays is days to keep audit log entries (default: 90)
	AuditRetentionDays int `env:"CLEANUP_AUDIT_RETENTION_DAYS" default:"90"`

	// BatchSize is rows to delete per cleanup batch (default: 5000)
	BatchSize int `env:"CLEANUP_BATCH_SIZE" default:"5000"`

	// CheckInterval is how often the cleanup job runs (default: 1h)
	CheckInterval time.Duration `env:"CLEANUP_CHECK_INTERVAL" default:"1h"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
