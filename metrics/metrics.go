package metrics

import "time"

// Recorder knows how to measure different kind of metrics.
type Recorder interface {
	// WithID will set the ID name to the recorde and every metric
	// measured with the obtained recorder will be identified with
	// the name.
	WithID(id string) Recorder
	// ObserveRequestExecution will measure the execution of a full logical
	// request, from the first attempt until it finishes.
	ObserveRequestExecution(start time.Time, success bool)
	// ObserveAttempt will measure a single attempt against the remote endpoint.
	ObserveAttempt(start time.Time, success bool)
	// IncRetry will increment the number of retries.
	IncRetry()
	// ObserveRetryBackoff will measure the backoff slept before a retry.
	ObserveRetryBackoff(wait time.Duration)
	// IncTimeout will increment the number of attempt timeouts.
	IncTimeout()
	// IncGateQueued increments the number of Funcs waiting for a gate admission.
	IncGateQueued()
	// IncGateAdmitted increments the number of Funcs admitted by the gate.
	IncGateAdmitted()
	// ObserveGateWait will measure the time waited for a gate admission.
	ObserveGateWait(start time.Time)
	// SetGateInflight sets the number of admissions currently held on the gate.
	SetGateInflight(inflight int)
}

// Dummy is a dummy recorder.
var Dummy = &dummy{}

type dummy struct{}

func (d dummy) WithID(id string) Recorder                 { return d }
func (dummy) ObserveRequestExecution(_ time.Time, _ bool) {}
func (dummy) ObserveAttempt(_ time.Time, _ bool)          {}
func (dummy) IncRetry()                                   {}
func (dummy) ObserveRetryBackoff(_ time.Duration)         {}
func (dummy) IncTimeout()                                 {}
func (dummy) IncGateQueued()                              {}
func (dummy) IncGateAdmitted()                            {}
func (dummy) ObserveGateWait(_ time.Time)                 {}
func (dummy) SetGateInflight(_ int)                       {}
