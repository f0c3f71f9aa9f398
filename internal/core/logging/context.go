package logging

import "context"

type contextKey string

const (
	caseIDKey contextKey = "case_id"
	screenKey contextKey = "screen"
)

// WithCaseID adds a case ID to the context.
func WithCaseID(ctx context.Context, caseID string) context.Context {
	return context.WithValue(ctx, caseIDKey, caseID)
}

// WithScreen adds the name of the screen handling the request to the context.
func WithScreen(ctx context.Context, screen string) context.Context {
	return context.WithValue(ctx, screenKey, screen)
}

// GetCaseID retrieves the case ID from the context.
// Returns empty string if not present.
func GetCaseID(ctx context.Context) string {
	if id, ok := ctx.Value(caseIDKey).(string); ok {
		return id
	}
	return ""
}

// GetScreen retrieves the screen name from the context.
// Returns empty string if not present.
func GetScreen(ctx context.Context) string {
	if s, ok := ctx.Value(screenKey).(string); ok {
		return s
	}
	return ""
}
