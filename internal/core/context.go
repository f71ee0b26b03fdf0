package core

import "context"

type contextKey string

const ctxKeyActorIP contextKey = "actor_ip"

// ContextWithActorIP adds the client IP to the context for audit logging.
func ContextWithActorIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyActorIP, ip)
}

// ActorIPFromContext extracts the client IP from the context.
func ActorIPFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyActorIP).(string); ok {
		return v
	}
	return ""
}
