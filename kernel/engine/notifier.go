package engine

import (
	"github.com/mamameal/docgenctl/kernel/model"
)

type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// Notice is a user-facing confirmation or error for one kind.
type Notice struct {
	Kind    model.Kind
	Label   string
	Level   Level
	Message string
}

// Notifier delivers notices. Notify blocks until the notice has been presented.
type Notifier interface {
	Notify(n Notice)
}

type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) {
	f(n)
}

func successNotice(spec *model.KindSpec, result model.TransferResult) Notice {
	n := Notice{Kind: spec.Kind, Label: spec.Label, Level: LevelInfo}
	switch spec.Group {
	case model.GroupMaster:
		n.Message = spec.Label + " updated"
	case model.GroupTemplate:
		n.Message = result.Message
		if n.Message == "" {
			n.Message = spec.Label + " updated"
		}
	default:
		n.Message = spec.Label + " completed"
	}
	return n
}

func failureNotice(spec model.KindSpec, message string) Notice {
	return Notice{Kind: spec.Kind, Label: spec.Label, Level: LevelError, Message: "error: " + message}
}
