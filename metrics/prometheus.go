package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	promNamespace = "godispatch"

	promRequestSubsystem = "request"
	promAttemptSubsystem = "attempt"
	promRetrySubsystem   = "retry"
	promTimeoutSubsystem = "timeout"
	promGateSubsystem    = "gate"
)

type prometheusRec struct {
	// Metrics.
	reqExecutionDuration *prometheus.HistogramVec
	attemptDuration      *prometheus.HistogramVec
	retryRetries         *prometheus.CounterVec
	retryBackoff         *prometheus.HistogramVec
	timeoutTimeouts      *prometheus.CounterVec
	gateQueued           *prometheus.CounterVec
	gateAdmitted         *prometheus.CounterVec
	gateWaitDuration     *prometheus.HistogramVec
	gateInflight         *prometheus.GaugeVec

	id  string
	reg prometheus.Registerer
}

// NewPrometheusRecorder returns a new Recorder that knows how to measure
// using Prometheus kind metrics.
func NewPrometheusRecorder(reg prometheus.Registerer) Recorder {
	p := &prometheusRec{
		reg: reg,
	}

	p.registerMetrics()
	return p
}

func (p prometheusRec) WithID(id string) Recorder {
	return &prometheusRec{
		reqExecutionDuration: p.reqExecutionDuration,
		attemptDuration:      p.attemptDuration,
		retryRetries:         p.retryRetries,
		retryBackoff:         p.retryBackoff,
		timeoutTimeouts:      p.timeoutTimeouts,
		gateQueued:           p.gateQueued,
		gateAdmitted:         p.gateAdmitted,
		gateWaitDuration:     p.gateWaitDuration,
		gateInflight:         p.gateInflight,

		id:  id,
		reg: p.reg,
	}
}

func (p *prometheusRec) registerMetrics() {
	p.reqExecutionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: promNamespace,
		Subsystem: promRequestSubsystem,
		Name:      "execution_duration_seconds",
		Help:      "The duration of the logical request execution (all attempts and backoffs) in seconds.",
	}, []string{"id", "success"})

	p.attemptDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: promNamespace,
		Subsystem: promAttemptSubsystem,
		Name:      "duration_seconds",
		Help:      "The duration of a single attempt against the remote endpoint in seconds.",
	}, []string{"id", "success"})

	p.retryRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: promNamespace,
		Subsystem: promRetrySubsystem,
		Name:      "retries_total",
		Help:      "Total number of retries made by the retry runner.",
	}, []string{"id"})

	p.retryBackoff = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: promNamespace,
		Subsystem: promRetrySubsystem,
		Name:      "backoff_seconds",
		Help:      "The backoff waited by the retry runner before retrying in seconds.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
	}, []string{"id"})

	p.timeoutTimeouts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: promNamespace,
		Subsystem: promTimeoutSubsystem,
		Name:      "timeouts_total",
		Help:      "Total number of timeouts made by the timeout runner.",
	}, []string{"id"})

	p.gateQueued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: promNamespace,
		Subsystem: promGateSubsystem,
		Name:      "queued_total",
		Help:      "Total number of funcs that asked the gate for an admission.",
	}, []string{"id"})

	p.gateAdmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: promNamespace,
		Subsystem: promGateSubsystem,
		Name:      "admitted_total",
		Help:      "Total number of funcs admitted by the gate.",
	}, []string{"id"})

	p.gateWaitDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: promNamespace,
		Subsystem: promGateSubsystem,
		Name:      "wait_duration_seconds",
		Help:      "The time waited for a gate admission in seconds.",
	}, []string{"id"})

	p.gateInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: promNamespace,
		Subsystem: promGateSubsystem,
		Name:      "inflight_executions",
		Help:      "The number of admissions currently held on the gate.",
	}, []string{"id"})

	p.reg.MustRegister(p.reqExecutionDuration,
		p.attemptDuration,
		p.retryRetries,
		p.retryBackoff,
		p.timeoutTimeouts,
		p.gateQueued,
		p.gateAdmitted,
		p.gateWaitDuration,
		p.gateInflight,
	)
}

func (p prometheusRec) ObserveRequestExecution(start time.Time, success bool) {
	secs := time.Since(start).Seconds()
	p.reqExecutionDuration.WithLabelValues(p.id, fmt.Sprintf("%t", success)).Observe(secs)
}

func (p prometheusRec) ObserveAttempt(start time.Time, success bool) {
	secs := time.Since(start).Seconds()
	p.attemptDuration.WithLabelValues(p.id, fmt.Sprintf("%t", success)).Observe(secs)
}

func (p prometheusRec) IncRetry() {
	p.retryRetries.WithLabelValues(p.id).Inc()
}

func (p prometheusRec) ObserveRetryBackoff(wait time.Duration) {
	p.retryBackoff.WithLabelValues(p.id).Observe(wait.Seconds())
}

func (p prometheusRec) IncTimeout() {
	p.timeoutTimeouts.WithLabelValues(p.id).Inc()
}

func (p prometheusRec) IncGateQueued() {
	p.gateQueued.WithLabelValues(p.id).Inc()
}

func (p prometheusRec) IncGateAdmitted() {
	p.gateAdmitted.WithLabelValues(p.id).Inc()
}

func (p prometheusRec) ObserveGateWait(start time.Time) {
	secs := time.Since(start).Seconds()
	p.gateWaitDuration.WithLabelValues(p.id).Observe(secs)
}

func (p prometheusRec) SetGateInflight(inflight int) {
	p.gateInflight.WithLabelValues(p.id).Set(float64(inflight))
}
