package auth

import "context"

type ctxKey string

const (
	ctxKeySub      ctxKey = "sub"
	ctxKeyUsername ctxKey = "username"
)

// WithSubject stores the authenticated user id and name on ctx.
func WithSubject(ctx context.Context, userID, username string) context.Context {
	ctx = context.WithValue(ctx, ctxKeySub, userID)
	return context.WithValue(ctx, ctxKeyUsername, username)
}

// SubjectFromContext returns the authenticated user id, or "".
func SubjectFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKeySub).(string); ok {
		return s
	}
	return ""
}

// UsernameFromContext returns the authenticated username, or "".
func UsernameFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKeyUsername).(string); ok {
		return s
	}
	return ""
}
