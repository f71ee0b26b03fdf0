// Package web provides the HTTP API for the certificate service.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/certforge/certforge/internal/config"
	"github.com/certforge/certforge/internal/core"
	"github.com/certforge/certforge/internal/web/middleware"
)

// Server is the HTTP server for the certificate API.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server

	limiter       *ipLimiter // nil when rate limiting is disabled
	uploadLimiter *ipLimiter // tighter limit for upload and generation endpoints
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	if cfg.Rate.Enabled {
		s.limiter = newIPLimiter(cfg.Rate.RequestsPerMinute, time.Minute)
		s.uploadLimiter = newIPLimiter(cfg.Rate.UploadLimit, time.Minute)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures the middleware chain for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
	s.router.Use(s.limiter.middleware)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealthz)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(&s.cfg.Security))

		// Standard request/response endpoints share the request timeout.
		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))

			r.Get("/events", s.handleListEvents)
			r.Post("/events", s.handleCreateEvent)
			r.Get("/events/{eventID}", s.handleGetEvent)
			r.Get("/events/{eventID}/recipients", s.handleListRecipients)
			r.Get("/events/{eventID}/history", s.handleEventHistory)
			r.With(s.uploadLimiter.middleware).Post("/events/{eventID}/roster", s.handleUploadRoster)
			r.With(s.uploadLimiter.middleware).Post("/events/{eventID}/template", s.handleUploadTemplate)
			r.Delete("/events/{eventID}/template", s.handleRemoveTemplate)
			r.With(s.uploadLimiter.middleware).Post("/events/{eventID}/generate", s.handleStartGeneration)

			r.With(s.uploadLimiter.middleware).Post("/roster/preview", s.handlePreviewRoster)
			r.Get("/roster/template", s.handleRosterTemplate)

			r.Get("/jobs", s.handleListJobs)
			r.Get("/jobs/{jobID}/result", s.handleJobResult)
			r.Post("/jobs/{jobID}/cancel", s.handleCancelJob)

			r.Get("/audit", s.handleAuditTrail)
			r.Get("/audit/export", s.handleAuditExport)
		})

		// Streaming and delivery endpoints manage their own deadlines, so
		// the timeout middleware stays off this group.
		r.Group(func(r chi.Router) {
			r.Get("/jobs/{jobID}/progress", s.handleJobProgress)
			r.Get("/jobs/{jobID}/download", s.handleDownloadArchive)
			r.With(s.uploadLimiter.middleware).Post("/jobs/{jobID}/send", s.handleSendCertificates)
		})
	})
}

// handleHealthz reports liveness plus the generation slots in use.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"email_enabled": s.service.EmailEnabled(),
		"jobs":          s.service.Limiter().Status(),
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout, // zero keeps SSE streams open
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("http server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders sets hardening headers on every response. The policy is
// strict because the service serves JSON and file downloads only.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ipLimiter is a token bucket rate limiter keyed by client IP.
type ipLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    int
	window  time.Duration
}

type bucket struct {
	tokens    int
	lastReset time.Time
}

// newIPLimiter creates a limiter allowing rate requests per window per IP.
func newIPLimiter(rate int, window time.Duration) *ipLimiter {
	rl := &ipLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		window:  window,
	}
	go rl.evictStale()
	return rl
}

// evictStale drops buckets that have been idle for two windows.
func (rl *ipLimiter) evictStale() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, b := range rl.buckets {
			if time.Since(b.lastReset) > rl.window*2 {
				delete(rl.buckets, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// allow consumes a token for ip, reporting whether the request may pass.
func (rl *ipLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[ip]
	if !ok {
		rl.buckets[ip] = &bucket{tokens: rl.rate - 1, lastReset: time.Now()}
		return true
	}

	if time.Since(b.lastReset) > rl.window {
		b.tokens = rl.rate - 1
		b.lastReset = time.Now()
		return true
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// middleware rejects requests over the limit with 429. A nil limiter
// passes everything through, which is how disabled rate limiting works.
func (rl *ipLimiter) middleware(next http.Handler) http.Handler {
	if rl == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
