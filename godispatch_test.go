package godispatch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/godispatch"
	"github.com/slok/godispatch/errors"
)

type spy struct {
	next   godispatch.Runner
	called bool
	order  *[]int
	id     int
}

func (s *spy) Run(ctx context.Context, f godispatch.Func) error {
	s.called = true
	*s.order = append(*s.order, s.id)
	return s.next.Run(ctx, f)
}

func newSpyMiddleware(spy *spy) godispatch.Middleware {
	return func(next godispatch.Runner) godispatch.Runner {
		spy.next = next
		return spy
	}
}

func TestRunnerChain(t *testing.T) {
	tests := []struct {
		name    string
		runners int
	}{
		{
			name:    "A chain of 5 runners should call all of them in order.",
			runners: 5,
		},
		{
			name:    "An empty chain should call the func directly.",
			runners: 0,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert := assert.New(t)

			// Create the middleware of runners.
			order := []int{}
			spies := []*spy{}
			middlewares := []godispatch.Middleware{}
			expOrder := []int{}

			for i := 0; i < test.runners; i++ {
				spy := &spy{id: i, order: &order}
				spies = append(spies, spy)
				middlewares = append(middlewares, newSpyMiddleware(spy))
				expOrder = append(expOrder, i)
			}

			// Call all our chain.
			called := false
			runner := godispatch.RunnerChain(middlewares...)
			err := runner.Run(context.TODO(), func(ctx context.Context) error {
				called = true
				return nil
			})

			assert.NoError(err)
			assert.True(called)
			assert.Equal(expOrder, order)
			for _, spy := range spies {
				assert.True(spy.called)
			}
		})
	}
}

func TestCommandCanceledContext(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := godispatch.SanitizeRunner(nil).Run(ctx, func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.Equal(errors.ErrContextCanceled, err)
	assert.False(called)
}

func TestContextMetadata(t *testing.T) {
	assert := assert.New(t)

	ctx := context.Background()
	_, ok := godispatch.RequestIDFromContext(ctx)
	assert.False(ok)
	assert.Equal(1, godispatch.AttemptFromContext(ctx))

	ctx = godispatch.WithRequestID(ctx, 7)
	ctx = godispatch.WithAttempt(ctx, 3)

	id, ok := godispatch.RequestIDFromContext(ctx)
	assert.True(ok)
	assert.Equal(7, id)
	assert.Equal(3, godispatch.AttemptFromContext(ctx))
}
