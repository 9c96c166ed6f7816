package slot

import "github.com/pkg/errors"

type State int

const (
	Idle State = iota
	Busy
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Busy:
		return "busy"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is the tagged state of a slot. Message is set only for Succeeded and Failed.
type Status struct {
	State   State
	Message string
}

func (s Status) String() string {
	if s.Message == "" {
		return s.State.String()
	}
	return s.State.String() + ": " + s.Message
}

func idle() Status { return Status{State: Idle} }

func busy() Status { return Status{State: Busy} }

func succeeded(message string) Status { return Status{State: Succeeded, Message: message} }

func failed(message string) Status { return Status{State: Failed, Message: message} }

var (
	// ErrBusy rejects an operation on a slot with a transfer in flight.
	ErrBusy = errors.New("slot is busy")
	// ErrNoFile rejects a submit with nothing selected.
	ErrNoFile = errors.New("no file selected")
)
