package metrics

import (
	"context"
	"time"

	"github.com/slok/godispatch"
	runnerutils "github.com/slok/godispatch/internal/util/runner"
)

var ctxRecorderKey contextKey = "recorder"

type contextKey string

func (c contextKey) String() string {
	return "metrics-ctx-key" + string(c)
}

// RecorderFromContext will get the metrics recorder from the context.
// If there is not context it will return also a dummy recorder that is
// safe to use it.
func RecorderFromContext(ctx context.Context) (recorder Recorder, ok bool) {
	rec, ok := ctx.Value(ctxRecorderKey).(Recorder)

	if !ok {
		return Dummy, false
	}

	return rec, true
}

func setRecorderOnContext(ctx context.Context, r Recorder) context.Context {
	return context.WithValue(ctx, ctxRecorderKey, r)
}

// NewMiddleware returns a middleware that measures the execution of the
// wrapped chain and sets the recorder on the context so the runners of the
// chain (gate, retry, timeout...) measure using the same recorder.
func NewMiddleware(id string, rec Recorder) godispatch.Middleware {
	return func(next godispatch.Runner) godispatch.Runner {
		return NewMeasuredRunner(id, rec, next)
	}
}

// NewMeasuredRunner is a decorator that will measure the execution of the
// runner r identified with id.
func NewMeasuredRunner(id string, rec Recorder, r godispatch.Runner) godispatch.Runner {
	if rec == nil {
		rec = Dummy
	}
	rec = rec.WithID(id)

	r = runnerutils.Sanitize(r)

	return godispatch.RunnerFunc(func(ctx context.Context, f godispatch.Func) (err error) {
		defer func(start time.Time) {
			rec.ObserveRequestExecution(start, err == nil)
		}(time.Now())

		// Set the recorder.
		ctx = setRecorderOnContext(ctx, rec)

		err = r.Run(ctx, f)

		return err
	})
}
