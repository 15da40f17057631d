package dispatch

import (
	"context"

	"go.uber.org/zap"

	"github.com/slok/godispatch"
	"github.com/slok/godispatch/gate"
	"github.com/slok/godispatch/metrics"
	"github.com/slok/godispatch/remote"
	"github.com/slok/godispatch/retry"
	"github.com/slok/godispatch/timeout"
	"github.com/slok/godispatch/tracing"
)

// handler is the retry loop of one logical request. The gate is inside the
// retry so the admission is only held during the call and not while backing off.
type handler struct {
	runner godispatch.Runner
	caller remote.Caller
	logger *zap.Logger
}

func (d *Dispatcher) newHandler(g *gate.Gate) *handler {
	middlewares := []godispatch.Middleware{
		metrics.NewMiddleware(metricsID, d.cfg.MetricsRecorder),
		retry.NewMiddleware(retry.Config{
			WaitBase: d.cfg.WaitBase,
			Logger:   d.cfg.Logger,
			Sleep:    d.cfg.Sleep,
		}),
		gate.NewMiddleware(g),
		tracing.NewMiddleware(tracing.Config{Tracer: d.cfg.Tracer}),
	}

	if d.cfg.AttemptTimeout > 0 {
		middlewares = append(middlewares, timeout.NewMiddleware(timeout.Config{Timeout: d.cfg.AttemptTimeout}))
	}

	return &handler{
		runner: godispatch.RunnerChain(middlewares...),
		caller: d.cfg.Caller,
		logger: d.cfg.Logger,
	}
}

func (h *handler) handle(ctx context.Context, requestID int) (string, error) {
	ctx = godispatch.WithRequestID(ctx, requestID)

	var payload string
	var attempts int
	err := h.runner.Run(ctx, func(ctx context.Context) error {
		attempts = godispatch.AttemptFromContext(ctx)

		resp, err := h.caller.Call(ctx, requestID)
		if err != nil {
			return err
		}
		payload = resp
		return nil
	})
	if err != nil {
		return "", err
	}

	h.logger.Info("request succeeded",
		zap.Int("request", requestID),
		zap.Int("attempts", attempts),
		zap.String("response", payload))

	return payload, nil
}
