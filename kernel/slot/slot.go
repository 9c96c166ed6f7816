package slot

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mamameal/docgenctl/kernel/gateway"
	"github.com/mamameal/docgenctl/kernel/model"
	"github.com/michaelquigley/pfxlog"
)

const (
	genericUpdateFailure     = "update failed"
	genericConversionFailure = "conversion failed; check that the backend is running"
)

// TransferFunc performs the network part of a submit.
type TransferFunc func(ctx context.Context, spec *model.KindSpec, src model.Source) (model.TransferResult, error)

// SuccessHook runs after a slot reaches Succeeded and before it returns to Idle.
type SuccessHook func(ctx context.Context, spec *model.KindSpec, result model.TransferResult)

// Transition is reported for every state change of a slot.
type Transition struct {
	Kind         model.Kind
	SubmissionId string
	From         Status
	To           Status
	At           time.Time
}

type Observer func(Transition)

// Slot is the upload state of one resource kind.
type Slot struct {
	spec      *model.KindSpec
	transfer  TransferFunc
	onSuccess SuccessHook
	observe   Observer

	mu     sync.Mutex
	file   model.Source
	status Status
	last   *model.TransferResult
	seq    uint64
}

func newSlot(spec *model.KindSpec, transfer TransferFunc, onSuccess SuccessHook, observe Observer) *Slot {
	return &Slot{
		spec:      spec,
		transfer:  transfer,
		onSuccess: onSuccess,
		observe:   observe,
		status:    idle(),
	}
}

func (s *Slot) Kind() model.Kind {
	return s.spec.Kind
}

func (s *Slot) Spec() model.KindSpec {
	return *s.spec
}

func (s *Slot) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Slot) SelectedFile() model.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file
}

// LastResult returns the result of the most recent successful submit.
func (s *Slot) LastResult() (model.TransferResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return model.TransferResult{}, false
	}
	return *s.last, true
}

// Select replaces the selected file. A stale Succeeded or Failed outcome is cleared to Idle.
func (s *Slot) Select(src model.Source) error {
	s.mu.Lock()
	if s.status.State == Busy {
		s.mu.Unlock()
		return ErrBusy
	}
	from := s.status
	s.file = src
	s.status = idle()
	s.mu.Unlock()

	if from.State != Idle {
		s.emit("", from, idle())
	}
	return nil
}

// Submit transfers the selected file. It is a no-op returning ErrBusy or ErrNoFile when the
// slot is busy or empty. Transfer failures are not returned: they leave the slot Failed with
// the file still selected.
func (s *Slot) Submit(ctx context.Context) (Status, error) {
	s.mu.Lock()
	if s.status.State == Busy {
		s.mu.Unlock()
		return Status{}, ErrBusy
	}
	if s.file == nil {
		s.mu.Unlock()
		return Status{}, ErrNoFile
	}
	from := s.status
	src := s.file
	s.seq++
	seq := s.seq
	s.status = busy()
	s.mu.Unlock()

	id := uuid.NewString()
	log := pfxlog.ContextLogger(string(s.spec.Kind)).WithField("submission", id)
	s.emit(id, from, busy())

	log.WithField("file", src.Name()).Info("submitting")
	result, err := s.transfer(ctx, s.spec, src)
	if err != nil {
		msg := s.failureMessage(err)
		log.WithError(err).Warn("transfer failed")
		s.mu.Lock()
		s.status = failed(msg)
		s.mu.Unlock()
		s.emit(id, busy(), failed(msg))
		return failed(msg), nil
	}

	done := succeeded(result.Message)
	s.mu.Lock()
	s.status = done
	s.file = nil
	s.last = &result
	s.mu.Unlock()
	s.emit(id, busy(), done)
	log.Info("transfer succeeded")

	if s.onSuccess != nil {
		s.onSuccess(ctx, s.spec, result)
	}

	s.mu.Lock()
	reset := s.seq == seq && s.status.State == Succeeded
	if reset {
		s.status = idle()
	}
	s.mu.Unlock()
	if reset {
		s.emit(id, done, idle())
	}
	return done, nil
}

func (s *Slot) failureMessage(err error) string {
	if detail := strings.TrimSpace(gateway.Detail(err)); detail != "" {
		return detail
	}
	if s.spec.Group == model.GroupConversion {
		return genericConversionFailure
	}
	return genericUpdateFailure
}

func (s *Slot) emit(id string, from, to Status) {
	if s.observe == nil {
		return
	}
	s.observe(Transition{
		Kind:         s.spec.Kind,
		SubmissionId: id,
		From:         from,
		To:           to,
		At:           time.Now(),
	})
}
