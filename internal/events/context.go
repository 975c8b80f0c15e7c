package events

import "context"

type runIDKey struct{}

// WithRunID attaches a run identifier to a context. The executor does not
// assign run IDs itself; the job store tags the run context before execution
// so published events can be correlated.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunID extracts the run identifier from a context, or "" if none was set.
func RunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey{}).(string); ok {
		return id
	}
	return ""
}
