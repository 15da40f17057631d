package godispatch

import (
	"context"

	"github.com/slok/godispatch/errors"
)

// Func is the function to execute as one unit of work, usually a single
// attempt against the remote endpoint.
type Func func(ctx context.Context) error

// Command is the end of every runner chain, it executes the Func.
type Command struct{}

// Run satisfies Runner interface.
func (Command) Run(ctx context.Context, f Func) error {
	// Only execute if we reached to the execution and the context has not been cancelled.
	select {
	case <-ctx.Done():
		return errors.ErrContextCanceled
	default:
		return f(ctx)
	}
}

// Runner knows how to execute a execution logic and returns error if errors.
type Runner interface {
	// Run will run the unit of execution passed on f.
	Run(ctx context.Context, f Func) error
}

// RunnerFunc is a helper that will satisfies Runner interface by using a function.
type RunnerFunc func(ctx context.Context, f Func) error

// Run satisfies Runner interface.
func (r RunnerFunc) Run(ctx context.Context, f Func) error {
	// Only execute if we reached to the execution and the context has not been cancelled.
	select {
	case <-ctx.Done():
		return errors.ErrContextCanceled
	default:
		return r(ctx, f)
	}
}

// Middleware wraps a Runner with another Runner, this is how the gate,
// retry, tracing... are stacked on top of each other.
type Middleware func(next Runner) Runner

// RunnerChain will get N middlewares and will create a Runner chain with them
// in the order that have been passed, the first middleware is the outermost.
func RunnerChain(middlewares ...Middleware) Runner {
	// The bottom one is the one that calls the Func.
	var runner Runner = &Command{}
	for i := len(middlewares) - 1; i >= 0; i-- {
		runner = middlewares[i](runner)
	}

	return runner
}

// SanitizeRunner returns a safe Runner if the runner is nil, the returned
// runner will be the end of the chain.
func SanitizeRunner(r Runner) Runner {
	if r == nil {
		return &Command{}
	}
	return r
}
