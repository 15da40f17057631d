package remote

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/slok/godispatch/errors"
)

const (
	defaultMinDelay       = 100 * time.Millisecond
	defaultMaxDelay       = 500 * time.Millisecond
	defaultFailurePercent = 20
)

// SimulatorConfig is the configuration of the Simulator.
type SimulatorConfig struct {
	// MinDelay is the minimum latency of a call.
	MinDelay time.Duration
	// MaxDelay is the maximum latency (exclusive) of a call.
	MaxDelay time.Duration
	// FailurePercent is the percent of calls that will fail.
	FailurePercent int
	// DisableFailures makes every call succeed.
	DisableFailures bool
	// Rand is the source of randomness, useful to have deterministic runs.
	Rand *rand.Rand
}

func (c *SimulatorConfig) defaults() {
	if c.MinDelay < 0 {
		c.MinDelay = 0
	}

	if c.MinDelay == 0 && c.MaxDelay == 0 {
		c.MinDelay = defaultMinDelay
		c.MaxDelay = defaultMaxDelay
	}

	if c.MaxDelay < c.MinDelay {
		c.MaxDelay = c.MinDelay
	}

	if c.FailurePercent <= 0 || c.FailurePercent > 100 {
		c.FailurePercent = defaultFailurePercent
	}

	if c.DisableFailures {
		c.FailurePercent = 0
	}

	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
}

// Simulator is a fictional remote endpoint. Every call waits a random latency
// and then fails or succeeds randomly. It doesn't retry nor timeout, that is
// the job of the caller.
type Simulator struct {
	minDelay       time.Duration
	maxDelay       time.Duration
	failurePercent int
	rand           *rand.Rand
	mu             sync.Mutex
}

// NewSimulator returns a new Simulator. By default the calls take between
// 100ms and 500ms and 20% of them fail.
func NewSimulator(cfg SimulatorConfig) *Simulator {
	cfg.defaults()

	return &Simulator{
		minDelay:       cfg.MinDelay,
		maxDelay:       cfg.MaxDelay,
		failurePercent: cfg.FailurePercent,
		rand:           cfg.Rand,
	}
}

// SetLatency will set the latency range of the calls.
func (s *Simulator) SetLatency(minDelay, maxDelay time.Duration) error {
	if minDelay < 0 || maxDelay < minDelay {
		return fmt.Errorf("[%s, %s) is not a valid latency range", minDelay, maxDelay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minDelay = minDelay
	s.maxDelay = maxDelay
	return nil
}

// SetFailurePercent will set the failure percent of the calls.
func (s *Simulator) SetFailurePercent(percent int) error {
	if percent > 100 || percent < 0 {
		return fmt.Errorf("%d is not a valid percent", percent)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failurePercent = percent
	return nil
}

// Call satisfies Caller interface.
func (s *Simulator) Call(ctx context.Context, requestID int) (string, error) {
	// math/rand sources are not safe for concurrent use.
	s.mu.Lock()
	delay := s.minDelay
	if s.maxDelay > s.minDelay {
		delay += time.Duration(s.rand.Int63n(int64(s.maxDelay - s.minDelay)))
	}
	fail := s.rand.Intn(100) < s.failurePercent
	s.mu.Unlock()

	// Network latency.
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", errors.ErrContextCanceled
		case <-timer.C:
		}
	}

	if fail {
		return "", fmt.Errorf("request %d failed: %w", requestID, errors.ErrRemoteFailure)
	}

	return fmt.Sprintf("Response for request %d", requestID), nil
}
