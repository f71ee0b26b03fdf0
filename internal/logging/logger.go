// Package logging configures structured logging with log/slog.
//
// It integrates with chi's RequestID middleware so every log line emitted
// while serving a request carries the same request_id, and offers a helper
// for loggers scoped to a long-running generation job.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// Use "json" in production for machine parsing, "text" in development.
func Setup(level, format string) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FromContext returns a logger enriched with request context.
//
// When the context carries a chi RequestID, the returned logger includes
// request_id on every entry, so all lines for one request correlate.
//
//	logger := logging.FromContext(r.Context())
//	logger.Info("roster uploaded", "event_id", eventID, "recipients", n)
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	// Chi's RequestID middleware stores the ID in context
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}

	return logger
}

// ForJob returns a logger scoped to a generation job. Job goroutines
// outlive the request that started them, so the job id rather than the
// request id is the correlation key.
//
//	logger := logging.ForJob(ctx, job.ID)
//	logger.Info("rendering certificates", "total", total)
func ForJob(ctx context.Context, jobID uuid.UUID) *slog.Logger {
	return FromContext(ctx).With("job_id", jobID.String())
}
