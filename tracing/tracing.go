package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/slok/godispatch"
	runnerutils "github.com/slok/godispatch/internal/util/runner"
)

// tracerName is the instrumentation scope name for godispatch tracing.
const tracerName = "github.com/slok/godispatch"

// AttemptSpanName is the name of the span created for every attempt.
const AttemptSpanName = "godispatch.attempt"

// Config is the configuration of the tracing runner.
type Config struct {
	// Tracer is the tracer used to create the spans. If not set the global
	// TracerProvider is used, that is a noop one unless configured.
	Tracer trace.Tracer
}

func (c *Config) defaults() {
	if c.Tracer == nil {
		c.Tracer = otel.Tracer(tracerName)
	}
}

// New returns a runner that wraps the execution in a span.
func New(cfg Config) godispatch.Runner {
	return NewMiddleware(cfg)(nil)
}

// NewMiddleware returns a middleware that wraps the execution of the next
// runner in an OpenTelemetry span. The request ID and attempt number of the
// context are set as span attributes. On error the span status is set to
// codes.Error.
func NewMiddleware(cfg Config) godispatch.Middleware {
	cfg.defaults()

	return func(next godispatch.Runner) godispatch.Runner {
		next = runnerutils.Sanitize(next)

		return godispatch.RunnerFunc(func(ctx context.Context, f godispatch.Func) error {
			attrs := []attribute.KeyValue{
				attribute.Int("godispatch.attempt", godispatch.AttemptFromContext(ctx)),
			}
			if id, ok := godispatch.RequestIDFromContext(ctx); ok {
				attrs = append(attrs, attribute.Int("godispatch.request.id", id))
			}

			ctx, span := cfg.Tracer.Start(ctx, AttemptSpanName,
				trace.WithAttributes(attrs...),
				trace.WithSpanKind(trace.SpanKindClient),
			)
			defer span.End()

			err := next.Run(ctx, f)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
			}

			return err
		})
	}
}
