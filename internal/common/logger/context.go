package logger

import "context"

type sessionKey struct{}

type sessionScope struct {
	sessionID string
	intent    string
}

// ContextWithSession marks ctx as belonging to one pipeline run. Loggers
// passed through FromContext pick up its session id and intent.
func ContextWithSession(ctx context.Context, sessionID, intent string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionScope{sessionID: sessionID, intent: intent})
}

// SessionFromContext returns the session id set by ContextWithSession.
func SessionFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(sessionKey{}).(sessionScope)
	return s.sessionID, ok
}

// FromContext returns l scoped to the run carried by ctx, or l unchanged
// outside a run.
func FromContext(ctx context.Context, l Logger) Logger {
	s, ok := ctx.Value(sessionKey{}).(sessionScope)
	if !ok {
		return l
	}
	return ForSession(l, s.sessionID, s.intent)
}
