package godispatch_test

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/godispatch"
	"github.com/slok/godispatch/dispatch"
	"github.com/slok/godispatch/gate"
	"github.com/slok/godispatch/remote"
	"github.com/slok/godispatch/retry"
)

// Will use only one of the utilities, the retry with the default settings
// this will make the `godispatch.Func` to be executed and retried until it succeeds.
func Example_basic() {
	// Create our func `runner`.
	cmd := retry.New(retry.Config{})
	sim := remote.NewSimulator(remote.SimulatorConfig{})

	// Execute.
	var result string
	err := cmd.Run(context.TODO(), func(ctx context.Context) error {
		resp, err := sim.Call(ctx, 1)
		if err != nil {
			return err
		}

		result = resp
		return nil
	})

	if err != nil {
		result = "context canceled"
	}

	fmt.Printf("result is: %s\n", result)
}

// Will chain the retry with a shared gate so no more than 2 attempts are in flight
// at the same time no matter how many goroutines use the runner.
func Example_chain() {
	cmd := godispatch.RunnerChain(
		retry.NewMiddleware(retry.Config{WaitBase: 10 * time.Millisecond}),
		gate.NewMiddleware(gate.New(2)),
	)

	err := cmd.Run(context.TODO(), func(ctx context.Context) error {
		return nil
	})

	if err != nil {
		fmt.Printf("error: %s\n", err)
	}
}

// Dispatches 20 requests against the remote simulator with a max of 5 calls
// in flight and prints the responses in request order.
func Example_dispatch() {
	results, err := dispatch.Run(context.TODO(), 20, 5)
	if err != nil {
		fmt.Printf("error: %s\n", err)
		return
	}

	for _, result := range results {
		fmt.Println(result)
	}
}
