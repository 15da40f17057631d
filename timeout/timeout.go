package timeout

import (
	"context"
	"errors"
	"time"

	"github.com/slok/godispatch"
	gderrors "github.com/slok/godispatch/errors"
	runnerutils "github.com/slok/godispatch/internal/util/runner"
	"github.com/slok/godispatch/metrics"
)

const (
	defaultTimeout = 1 * time.Second
)

// Config is the configuration of the timeout.
type Config struct {
	// Timeout is the duration that will be waited before giving up on the execution.
	Timeout time.Duration
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// New will wrap a execution unit that will cut the execution of
// a runner when some time passes using the context.
// use 0 timeout for default timeout.
func New(cfg Config) godispatch.Runner {
	return NewMiddleware(cfg)(nil)
}

// NewMiddleware returns a middleware that gives the next runner a context
// with a deadline. The Func is expected to honour the context. The runner
// waits for the Func to return so whatever is wrapping it (e.g. a gate
// admission) is not released while the Func is still in flight. An execution
// that fails after the deadline returns errors.ErrTimeout.
func NewMiddleware(cfg Config) godispatch.Middleware {
	cfg.defaults()

	return func(next godispatch.Runner) godispatch.Runner {
		next = runnerutils.Sanitize(next)

		return godispatch.RunnerFunc(func(ctx context.Context, f godispatch.Func) error {
			metricsRecorder, _ := metrics.RecorderFromContext(ctx)

			tctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()

			err := next.Run(tctx, f)
			if err == nil {
				return nil
			}

			// Only our deadline is a timeout, the parent cancellation is not.
			if ctx.Err() == nil && errors.Is(tctx.Err(), context.DeadlineExceeded) {
				metricsRecorder.IncTimeout()
				return gderrors.ErrTimeout
			}

			return err
		})
	}
}
