package main

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gderrors "github.com/slok/godispatch/errors"
	"github.com/slok/godispatch/remote"
)

func TestNewCmdConfig(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		expCfg cmdConfig
		expErr bool
	}{
		{
			name: "Running without arguments should use the compiled defaults.",
			args: []string{},
			expCfg: cmdConfig{
				requests:    20,
				concurrency: 5,
			},
		},
		{
			name: "Flags should override the defaults.",
			args: []string{"--requests", "3", "--concurrency", "1", "--metrics.listen-address", ":8081", "--debug"},
			expCfg: cmdConfig{
				requests:      3,
				concurrency:   1,
				metricsListen: ":8081",
				debug:         true,
			},
		},
		{
			name:   "Unknown flags should fail.",
			args:   []string{"--wrong"},
			expErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert := assert.New(t)

			cfg, err := newCmdConfig(test.args)

			if test.expErr {
				assert.Error(err)
			} else if assert.NoError(err) {
				assert.Equal(test.expCfg, cfg)
			}
		})
	}
}

func TestRunSummary(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		caller func() remote.Caller
		expOut string
	}{
		{
			name: "Completed requests should be listed in request order after the summary line.",
			args: []string{"--requests", "3", "--concurrency", "2"},
			caller: func() remote.Caller {
				return remote.CallerFunc(func(_ context.Context, id int) (string, error) {
					return fmt.Sprintf("Response for request %d", id), nil
				})
			},
			expOut: "All requests completed.\nResponse for request 1\nResponse for request 2\nResponse for request 3\n",
		},
		{
			name: "Failed calls should be retried before listing the results.",
			args: []string{"--requests", "1", "--concurrency", "1"},
			caller: func() remote.Caller {
				var mu sync.Mutex
				calls := 0
				return remote.CallerFunc(func(_ context.Context, id int) (string, error) {
					mu.Lock()
					defer mu.Unlock()
					calls++
					if calls == 1 {
						return "", fmt.Errorf("request %d failed: %w", id, gderrors.ErrRemoteFailure)
					}
					return fmt.Sprintf("Response for request %d", id), nil
				})
			},
			expOut: "All requests completed.\nResponse for request 1\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			var out bytes.Buffer
			r := runner{caller: test.caller(), out: &out, waitBase: time.Millisecond}

			require.NoError(r.run(context.TODO(), test.args))
			assert.Equal(test.expOut, out.String())
		})
	}
}

func TestRunCanceled(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	r := runner{
		caller: remote.CallerFunc(func(_ context.Context, id int) (string, error) {
			return fmt.Sprintf("Response for request %d", id), nil
		}),
		out: &out,
	}

	assert.Error(r.run(ctx, []string{"--requests", "2"}))
	assert.Empty(out.String())
}
