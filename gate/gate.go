package gate

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/slok/godispatch"
	"github.com/slok/godispatch/errors"
	runnerutils "github.com/slok/godispatch/internal/util/runner"
	"github.com/slok/godispatch/metrics"
)

// Gate is a counting admission control that limits the number of executions
// in flight at the same time. Waiters are admitted in arrival order.
type Gate struct {
	capacity int
	sem      *semaphore.Weighted
	held     heldCounter
}

// New returns a new Gate with capacity free slots. A capacity lower than 1
// will be set to 1.
func New(capacity int) *Gate {
	if capacity < 1 {
		capacity = 1
	}

	return &Gate{
		capacity: capacity,
		sem:      semaphore.NewWeighted(int64(capacity)),
	}
}

// Capacity returns the number of slots of the gate.
func (g *Gate) Capacity() int { return g.capacity }

// Held returns the number of admissions currently held.
func (g *Gate) Held() int { return g.held.Get() }

// Admission is a held slot of the gate. It must be released once the holder
// has finished.
type Admission struct {
	gate *Gate
	rec  metrics.Recorder
	once sync.Once
}

// Release returns the slot to the gate and unblocks at most one waiter.
// Only the first call releases the slot.
func (a *Admission) Release() {
	a.once.Do(func() {
		a.gate.held.Dec(a.rec)
		a.gate.sem.Release(1)
	})
}

// Acquire blocks until a slot is free and returns the admission of that slot.
// It only fails if the context is done before a slot is free.
func (g *Gate) Acquire(ctx context.Context) (*Admission, error) {
	metricsRecorder, _ := metrics.RecorderFromContext(ctx)

	metricsRecorder.IncGateQueued()
	start := time.Now()
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.ErrContextCanceled
	}
	metricsRecorder.ObserveGateWait(start)
	metricsRecorder.IncGateAdmitted()

	g.held.Inc(metricsRecorder)

	return &Admission{gate: g, rec: metricsRecorder}, nil
}

// Run executes f holding an admission. The admission is released when f
// returns, fails or panics.
func (g *Gate) Run(ctx context.Context, f godispatch.Func) error {
	adm, err := g.Acquire(ctx)
	if err != nil {
		return err
	}
	defer adm.Release()

	return f(ctx)
}

// NewMiddleware returns a new middleware that will execute the next runner of
// the chain holding an admission of g. The same gate can be shared by multiple
// chains to limit all of them together.
func NewMiddleware(g *Gate) godispatch.Middleware {
	return func(next godispatch.Runner) godispatch.Runner {
		next = runnerutils.Sanitize(next)

		return godispatch.RunnerFunc(func(ctx context.Context, f godispatch.Func) error {
			return g.Run(ctx, func(ctx context.Context) error {
				return next.Run(ctx, f)
			})
		})
	}
}

// heldCounter counts the held admissions. The inflight gauge is set while
// holding the lock so concurrent updates are measured in order.
type heldCounter struct {
	c  int
	mu sync.Mutex
}

func (h *heldCounter) Inc(rec metrics.Recorder) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.c++
	rec.SetGateInflight(h.c)
}

func (h *heldCounter) Dec(rec metrics.Recorder) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.c--
	rec.SetGateInflight(h.c)
}

func (h *heldCounter) Get() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.c
}
