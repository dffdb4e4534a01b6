package runstate

import (
	"sync/atomic"
)

// Status is the outcome of a run. Its numeric value is the process exit code.
type Status int32

const (
	OK                 Status = 0
	ExecutableNotFound Status = 1
	SourceNotFound     Status = 2
	ExecutableInvalid  Status = 3
	FormatterFailed    Status = 4
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case ExecutableNotFound:
		return "executable not found"
	case SourceNotFound:
		return "source directory not valid"
	case ExecutableInvalid:
		return "executable not valid"
	case FormatterFailed:
		return "formatter failed"
	default:
		return "unknown"
	}
}

// Combine folds two statuses: the first failure observed is kept, OK never replaces a failure.
func Combine(current, next Status) Status {
	if current != OK {
		return current
	}
	return next
}

// StatusCell aggregates statuses reported by concurrent workers.
type StatusCell struct {
	v atomic.Int32
}

// Merge records s unless a failure has already been recorded.
func (c *StatusCell) Merge(s Status) {
	if s == OK {
		return
	}
	c.v.CompareAndSwap(int32(OK), int32(s))
}

func (c *StatusCell) Load() Status {
	return Status(c.v.Load())
}

// Counters are written by the running stage and read by the progress reporter.
type Counters struct {
	Discovered atomic.Int64
	Completed  atomic.Int64
}

// State is the shared context handed to every stage of a run.
type State struct {
	Counters Counters
	Cancel   *Flag
}

func New() *State {
	return &State{Cancel: &Flag{}}
}
