package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/certforge/certforge/internal/config"
)

// APIKeyAuth gates requests on the X-API-Key header. When RequireAPIKey is
// off every request passes through. When it is on with an empty key list,
// every request is rejected rather than silently open.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("X-API-Key")
			if key == "" {
				slog.Warn("missing API key",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				deny(w, http.StatusUnauthorized, `{"error":"missing API key","code":"AUTH001"}`)
				return
			}

			if !keyAccepted(key, cfg.APIKeys) {
				slog.Warn("invalid API key",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				deny(w, http.StatusForbidden, `{"error":"invalid API key","code":"AUTH002"}`)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// keyAccepted compares the presented key against every configured key, so
// the time taken does not depend on which key matches or whether any does.
func keyAccepted(key string, accepted []string) bool {
	valid := 0
	for _, k := range accepted {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(k))
	}
	return valid == 1
}

func deny(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
