package dispatch

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/slok/godispatch/errors"
	"github.com/slok/godispatch/gate"
	"github.com/slok/godispatch/metrics"
	"github.com/slok/godispatch/remote"
	"github.com/slok/godispatch/retry"
)

const (
	defaultRequests    = 20
	defaultConcurrency = 5

	metricsID = "dispatch"
)

// Config is the configuration of the Dispatcher.
type Config struct {
	// Requests is the number of logical requests to dispatch, their IDs
	// go from 1 to Requests.
	Requests int
	// Concurrency is the max number of calls in flight at the same time.
	Concurrency int
	// Caller is the remote endpoint. By default the remote simulator.
	Caller remote.Caller
	// WaitBase is the base of the exponential backoff between attempts.
	WaitBase time.Duration
	// AttemptTimeout is the max duration of a single attempt, a timed out
	// attempt is retried like any other failure. Disabled when 0.
	AttemptTimeout time.Duration
	// Logger is the logger used for the status lines.
	Logger *zap.Logger
	// MetricsRecorder is the recorder used to measure the dispatch.
	MetricsRecorder metrics.Recorder
	// Tracer is the tracer used to create a span per attempt.
	Tracer trace.Tracer
	// Sleep is the function used to wait the backoff between attempts.
	Sleep retry.SleepFunc
}

func (c *Config) defaults() {
	if c.Requests <= 0 {
		c.Requests = defaultRequests
	}

	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}

	if c.Caller == nil {
		c.Caller = remote.NewSimulator(remote.SimulatorConfig{})
	}

	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	if c.MetricsRecorder == nil {
		c.MetricsRecorder = metrics.Dummy
	}
}

// Dispatcher fans out the logical requests to the remote endpoint limiting
// the calls in flight and retrying every failed request until it succeeds.
type Dispatcher struct {
	cfg Config
}

// New returns a new Dispatcher.
func New(cfg Config) *Dispatcher {
	cfg.defaults()

	return &Dispatcher{cfg: cfg}
}

// Run dispatches all the requests through one gate and waits until all of
// them have succeeded. The payloads are returned in request ID order.
//
// If a request handler terminates abnormally the whole run is aborted and
// an error wrapping errors.ErrHandlerDefect is returned, a done context
// aborts the run too. There are no partial results.
func (d *Dispatcher) Run(ctx context.Context) ([]string, error) {
	g := gate.New(d.cfg.Concurrency)
	h := d.newHandler(g)

	results := make([]string, d.cfg.Requests)
	eg, ctx := errgroup.WithContext(ctx)
	for i := 1; i <= d.cfg.Requests; i++ {
		id := i
		eg.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("request %d: %w: %v", id, errors.ErrHandlerDefect, r)
				}
			}()

			payload, err := h.handle(ctx, id)
			if err != nil {
				return fmt.Errorf("request %d: %w", id, err)
			}

			// Each handler owns its own slot.
			results[id-1] = payload
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	d.cfg.Logger.Info("all requests completed", zap.Int("requests", d.cfg.Requests))

	return results, nil
}

// Handle drives a single request through the gate until it succeeds.
func (d *Dispatcher) Handle(ctx context.Context, g *gate.Gate, requestID int) (string, error) {
	return d.newHandler(g).handle(ctx, requestID)
}

// Run is a helper to dispatch totalRequests against the remote simulator
// with concurrencyLimit calls in flight at most.
func Run(ctx context.Context, totalRequests, concurrencyLimit int) ([]string, error) {
	return New(Config{
		Requests:    totalRequests,
		Concurrency: concurrencyLimit,
	}).Run(ctx)
}
