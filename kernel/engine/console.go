package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/mamameal/docgenctl/kernel/codec"
	"github.com/mamameal/docgenctl/kernel/model"
	"github.com/mamameal/docgenctl/kernel/slot"
	"github.com/mamameal/docgenctl/kernel/store"
	"github.com/michaelquigley/pfxlog"
)

// Gateway is the backend as seen by the console.
type Gateway interface {
	MetadataSource
	Transfer(ctx context.Context, spec *model.KindSpec, src model.Source) (model.TransferResult, error)
}

// Materializer saves decoded artifacts.
type Materializer interface {
	Materialize(ctx context.Context, art model.GeneratedArtifact) (codec.Download, error)
}

// Console wires slots, metadata sync and notifications together.
type Console struct {
	registry *slot.Registry
	store    store.MetadataStore
	sync     *MetadataSync
	notifier Notifier
	codec    Materializer
}

type ConsoleOption func(*consoleOptions)

type consoleOptions struct {
	kinds    []model.Kind
	notifier Notifier
	observer slot.Observer
	codec    Materializer
}

// WithKinds limits the console to the given slots. Defaults to every registered kind.
func WithKinds(kinds ...model.Kind) ConsoleOption {
	return func(o *consoleOptions) { o.kinds = kinds }
}

func WithNotifier(n Notifier) ConsoleOption {
	return func(o *consoleOptions) { o.notifier = n }
}

func WithObserver(observe slot.Observer) ConsoleOption {
	return func(o *consoleOptions) { o.observer = observe }
}

func WithMaterializer(m Materializer) ConsoleOption {
	return func(o *consoleOptions) { o.codec = m }
}

func AllKinds() []model.Kind {
	var kinds []model.Kind
	for _, g := range []model.Group{model.GroupMaster, model.GroupTemplate, model.GroupConversion} {
		kinds = append(kinds, model.KindsInGroup(g)...)
	}
	return kinds
}

func NewConsole(gw Gateway, opts ...ConsoleOption) (*Console, error) {
	o := &consoleOptions{
		kinds:    AllKinds(),
		notifier: NotifierFunc(func(Notice) {}),
	}
	for _, opt := range opts {
		opt(o)
	}

	c := &Console{
		store:    store.NewMemoryStore(model.GroupMaster, model.GroupTemplate),
		notifier: o.notifier,
		codec:    o.codec,
	}
	c.sync = NewMetadataSync(gw, c.store)

	registryOpts := []slot.Option{slot.WithSuccessHook(c.onSuccess)}
	if o.observer != nil {
		registryOpts = append(registryOpts, slot.WithObserver(o.observer))
	}
	registry, err := slot.NewRegistry(o.kinds, gw.Transfer, registryOpts...)
	if err != nil {
		return nil, err
	}
	c.registry = registry
	return c, nil
}

// Mount loads both metadata groups. Fetch failures are reflected in the snapshots, not returned.
func (c *Console) Mount(ctx context.Context) {
	if err := c.sync.Mount(ctx); err != nil {
		pfxlog.Logger().WithError(err).Warn("initial metadata fetch incomplete")
	}
}

func (c *Console) Slot(kind model.Kind) (*slot.Slot, error) {
	return c.registry.Slot(kind)
}

func (c *Console) Kinds() []model.Kind {
	return c.registry.Kinds()
}

func (c *Console) Select(kind model.Kind, src model.Source) error {
	s, err := c.registry.Slot(kind)
	if err != nil {
		return err
	}
	return s.Select(src)
}

// Submit runs one slot's transfer. Only precondition rejections are returned as errors.
func (c *Console) Submit(ctx context.Context, kind model.Kind) (slot.Status, error) {
	s, err := c.registry.Slot(kind)
	if err != nil {
		return slot.Status{}, err
	}
	status, err := s.Submit(ctx)
	if err != nil {
		return status, err
	}
	if status.State == slot.Failed {
		c.notifier.Notify(failureNotice(s.Spec(), status.Message))
	}
	return status, nil
}

func (c *Console) Metadata(group model.Group) *model.Snapshot {
	return c.store.Snapshot(group)
}

func (c *Console) Statuses() map[model.Kind]slot.Status {
	return c.registry.Statuses()
}

// Materialize saves every artifact of kind's last successful result. Artifacts are independent:
// one that fails to decode or save gets its own error notice and does not stop the others. The
// returned error joins the per-artifact failures. Calling it again saves again.
func (c *Console) Materialize(ctx context.Context, kind model.Kind) ([]codec.Download, error) {
	if c.codec == nil {
		return nil, fmt.Errorf("no materializer configured")
	}
	s, err := c.registry.Slot(kind)
	if err != nil {
		return nil, err
	}
	result, ok := s.LastResult()
	if !ok {
		return nil, fmt.Errorf("%s has no result to materialize", kind)
	}
	var downloads []codec.Download
	var failures []error
	for _, art := range result.Artifacts {
		dl, err := c.codec.Materialize(ctx, art)
		if err != nil {
			c.notifier.Notify(failureNotice(s.Spec(), err.Error()))
			failures = append(failures, err)
			continue
		}
		downloads = append(downloads, dl)
	}
	return downloads, errors.Join(failures...)
}

func (c *Console) onSuccess(ctx context.Context, spec *model.KindSpec, result model.TransferResult) {
	if spec.Group.HasMetadata() {
		if err := c.sync.Refresh(ctx, spec.Group); err != nil {
			pfxlog.ContextLogger(string(spec.Kind)).WithError(err).Warn("refresh after upload failed")
		}
	}
	c.notifier.Notify(successNotice(spec, result))
}
