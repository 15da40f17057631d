package retry

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/slok/godispatch"
	gderrors "github.com/slok/godispatch/errors"
	"github.com/slok/godispatch/metrics"
)

// SleepFunc waits d or until the context is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config is the configuration used for the retry Runner.
type Config struct {
	// WaitBase is the base unit duration to wait on the retries, the wait
	// after the Nth failure is WaitBase * 2^N.
	WaitBase time.Duration
	// Logger logs a line for every failed attempt that is going to be retried.
	Logger *zap.Logger
	// Sleep is the function used to wait between attempts.
	Sleep SleepFunc
}

func (c *Config) defaults() {
	if c.WaitBase <= 0 {
		c.WaitBase = 1 * time.Second
	}

	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	if c.Sleep == nil {
		c.Sleep = sleep
	}
}

// Backoff returns the time to wait before retrying after the attempt-th
// consecutive failure: base * 2^attempt. It is not capped.
func Backoff(base time.Duration, attempt int) time.Duration {
	wait := float64(base) * math.Exp2(float64(attempt))
	// Out of the Duration range, this is hundreds of years with any sane base.
	if wait >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(wait)
}

// New returns a new retry ready executor, the execution will be retried
// until it succeeds.
func New(cfg Config) godispatch.Runner {
	return NewMiddleware(cfg)(nil)
}

// NewMiddleware returns a new retry middleware, every failed execution of the
// next runner will be retried after an exponential backoff until it
// succeeds. Only a done context or a handler defect stop the retries.
func NewMiddleware(cfg Config) godispatch.Middleware {
	cfg.defaults()

	return func(next godispatch.Runner) godispatch.Runner {
		next = godispatch.SanitizeRunner(next)

		return godispatch.RunnerFunc(func(ctx context.Context, f godispatch.Func) error {
			metricsRecorder, _ := metrics.RecorderFromContext(ctx)
			logger := cfg.Logger
			if id, ok := godispatch.RequestIDFromContext(ctx); ok {
				logger = logger.With(zap.Int("request", id))
			}

			// attempt is the number of failed attempts so far.
			attempt := 0
			for {
				start := time.Now()
				err := next.Run(godispatch.WithAttempt(ctx, attempt+1), f)
				metricsRecorder.ObserveAttempt(start, err == nil)
				if err == nil {
					return nil
				}

				if !retryable(ctx, err) {
					return err
				}

				attempt++
				wait := Backoff(cfg.WaitBase, attempt)
				logger.Info("request failed, retrying",
					zap.Int("retry", attempt),
					zap.Duration("backoff", wait),
					zap.Error(err))
				metricsRecorder.IncRetry()
				metricsRecorder.ObserveRetryBackoff(wait)

				// We need to sleep before making a retry.
				if err := cfg.Sleep(ctx, wait); err != nil {
					return err
				}
			}
		})
	}
}

// retryable reports if a failed attempt can be retried. Cancellation is
// decided by the retry context, not by the error of the attempt.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	return !errors.Is(err, gderrors.ErrHandlerDefect)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return gderrors.ErrContextCanceled
	case <-timer.C:
		return nil
	}
}
