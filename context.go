package godispatch

import "context"

type contextKey string

func (c contextKey) String() string {
	return "godispatch-ctx-key" + string(c)
}

var (
	ctxRequestIDKey contextKey = "request-id"
	ctxAttemptKey   contextKey = "attempt"
)

// WithRequestID sets the logical request ID on the context, every runner of
// the chain can get it back to identify the request it's working on.
func WithRequestID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, id)
}

// RequestIDFromContext returns the request ID set with WithRequestID.
func RequestIDFromContext(ctx context.Context) (id int, ok bool) {
	id, ok = ctx.Value(ctxRequestIDKey).(int)
	return id, ok
}

// WithAttempt sets the attempt number (starting at 1) of the current execution.
func WithAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, ctxAttemptKey, attempt)
}

// AttemptFromContext returns the attempt number, if there is no attempt on
// the context it will return 1, an execution without retries is always the first
// attempt.
func AttemptFromContext(ctx context.Context) int {
	attempt, ok := ctx.Value(ctxAttemptKey).(int)
	if !ok || attempt < 1 {
		return 1
	}
	return attempt
}
