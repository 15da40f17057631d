package errors

import "errors"

var (
	// ErrTimeout will be used when an attempt times out.
	ErrTimeout = errors.New("timeout while executing")
	// ErrContextCanceled will be used when the execution has not been executed due to the
	// context cancelation.
	ErrContextCanceled = errors.New("context canceled, logic not executed")
	// ErrRemoteFailure will be used when the remote endpoint reports a failed call.
	// These are transient and the retry runner will retry them.
	ErrRemoteFailure = errors.New("remote call failed")
	// ErrHandlerDefect will be used when a request handler terminates abnormally
	// outside the retry loop (e.g. a panic). It's fatal for the whole dispatch.
	ErrHandlerDefect = errors.New("request handler defect")
)
