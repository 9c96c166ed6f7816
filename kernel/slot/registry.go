package slot

import (
	"fmt"

	"github.com/mamameal/docgenctl/kernel/model"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// Registry holds the fixed set of slots of a console. Slots are only reachable one kind
// at a time; there is no bulk submit.
type Registry struct {
	kinds []model.Kind
	slots cmap.ConcurrentMap[string, *Slot]
}

type Option func(*options)

type options struct {
	onSuccess SuccessHook
	observe   Observer
}

func WithSuccessHook(hook SuccessHook) Option {
	return func(o *options) { o.onSuccess = hook }
}

func WithObserver(observe Observer) Option {
	return func(o *options) { o.observe = observe }
}

func NewRegistry(kinds []model.Kind, transfer TransferFunc, opts ...Option) (*Registry, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	r := &Registry{slots: cmap.New[*Slot]()}
	for _, kind := range kinds {
		spec, err := model.GetKind(kind)
		if err != nil {
			return nil, err
		}
		if r.slots.Has(string(kind)) {
			return nil, fmt.Errorf("duplicate slot for kind '%s'", kind)
		}
		r.slots.Set(string(kind), newSlot(spec, transfer, o.onSuccess, o.observe))
		r.kinds = append(r.kinds, kind)
	}
	return r, nil
}

func (r *Registry) Slot(kind model.Kind) (*Slot, error) {
	s, ok := r.slots.Get(string(kind))
	if !ok {
		return nil, fmt.Errorf("no slot for kind '%s'", kind)
	}
	return s, nil
}

// Kinds returns the slot kinds in registration order.
func (r *Registry) Kinds() []model.Kind {
	out := make([]model.Kind, len(r.kinds))
	copy(out, r.kinds)
	return out
}

func (r *Registry) Statuses() map[model.Kind]Status {
	out := make(map[model.Kind]Status, r.slots.Count())
	for k, s := range r.slots.Items() {
		out[model.Kind(k)] = s.Status()
	}
	return out
}
