package remote

import "context"

// Caller knows how to make a call to the remote endpoint for a logical request.
// A nil error is a success and the returned string is the payload, any error
// is a failed attempt.
type Caller interface {
	Call(ctx context.Context, requestID int) (string, error)
}

// CallerFunc is a helper that will satisfies Caller interface by using a function.
type CallerFunc func(ctx context.Context, requestID int) (string, error)

// Call satisfies Caller interface.
func (c CallerFunc) Call(ctx context.Context, requestID int) (string, error) {
	return c(ctx, requestID)
}
