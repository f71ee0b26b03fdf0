package web

import (
	"context"
	"net"
	"net/http"

	"github.com/certforge/certforge/internal/core"
)

// withActor tags the context with the client IP for the audit log.
// TrustedRealIP has already resolved RemoteAddr to the real client.
func withActor(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithActorIP(ctx, clientIP(r))
}

// clientIP strips the port from RemoteAddr when one is present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
