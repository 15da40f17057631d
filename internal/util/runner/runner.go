package runner

import (
	"github.com/slok/godispatch"
)

// Sanitize returns a safe Runner if the runner is wrong.
func Sanitize(r godispatch.Runner) godispatch.Runner {
	// In case of end of execution chain.
	if r == nil {
		return &godispatch.Command{}
	}
	return r
}
