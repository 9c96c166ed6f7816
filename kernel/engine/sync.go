package engine

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mamameal/docgenctl/kernel/model"
	"github.com/mamameal/docgenctl/kernel/store"
	"github.com/michaelquigley/pfxlog"
	"golang.org/x/sync/errgroup"
)

// MetadataSource is the read side of the backend.
type MetadataSource interface {
	MasterInfo(ctx context.Context) (model.MasterInfo, error)
	TemplateInfo(ctx context.Context) (map[string]model.TemplateDescriptor, error)
}

// MetadataSync is the only writer of the metadata store. A successful fetch replaces the
// group's snapshot; a failed fetch keeps the last known values and marks the snapshot stale.
//
// Every fetch takes a sequence number before it starts. A result is applied only if no later
// fetch of the same group has been applied already, so overlapping refreshes settle on the
// newest one.
type MetadataSync struct {
	source MetadataSource
	store  store.MetadataStore
	now    func() time.Time
	seq    atomic.Uint64
}

func NewMetadataSync(source MetadataSource, s store.MetadataStore) *MetadataSync {
	return &MetadataSync{source: source, store: s, now: time.Now}
}

// Mount fetches both groups once, concurrently. Both fetches run to completion; the first
// failure is returned.
func (m *MetadataSync) Mount(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		return m.RefreshMasters(ctx)
	})
	g.Go(func() error {
		return m.RefreshTemplates(ctx)
	})
	return g.Wait()
}

func (m *MetadataSync) Refresh(ctx context.Context, group model.Group) error {
	switch group {
	case model.GroupMaster:
		return m.RefreshMasters(ctx)
	case model.GroupTemplate:
		return m.RefreshTemplates(ctx)
	default:
		return fmt.Errorf("group '%s' has no metadata", group)
	}
}

func (m *MetadataSync) RefreshMasters(ctx context.Context) error {
	seq := m.seq.Add(1)
	info, err := m.source.MasterInfo(ctx)
	if err != nil {
		m.markStale(model.GroupMaster, seq, err)
		return fmt.Errorf("failed to fetch master metadata: %w", err)
	}

	next := &model.Snapshot{
		Group:     model.GroupMaster,
		Entries:   make(map[model.Kind]model.ResourceMetadata),
		FetchedAt: m.now(),
	}
	next.Entries[model.ProductMaster] = masterEntry(model.ProductMaster, info.Product)
	next.Entries[model.CustomerMaster] = masterEntry(model.CustomerMaster, info.Customer)
	m.apply(next, seq)
	return nil
}

func (m *MetadataSync) RefreshTemplates(ctx context.Context) error {
	seq := m.seq.Add(1)
	info, err := m.source.TemplateInfo(ctx)
	if err != nil {
		m.markStale(model.GroupTemplate, seq, err)
		return fmt.Errorf("failed to fetch template metadata: %w", err)
	}

	next := &model.Snapshot{
		Group:     model.GroupTemplate,
		Entries:   make(map[model.Kind]model.ResourceMetadata),
		FetchedAt: m.now(),
	}
	for _, k := range model.KindsInGroup(model.GroupTemplate) {
		spec, _ := model.GetKind(k)
		next.Entries[k] = model.ResourceMetadata{Label: spec.Label, Identifier: model.SentinelIdentifier(model.NotConfigured)}
	}
	for wireType, desc := range info {
		kind, err := model.KindByWireType(model.GroupTemplate, wireType)
		label := desc.Label
		if err != nil {
			// served by the backend but unknown here; still shown
			kind = model.Kind(wireType)
		} else if label == "" {
			spec, _ := model.GetKind(kind)
			label = spec.Label
		}
		if label == "" {
			label = wireType
		}
		id := model.SentinelIdentifier(model.NotConfigured)
		if desc.Exists && desc.Filename != "" {
			id = model.Identifier{Sentinel: model.Present, Filename: desc.Filename, Modified: desc.Modified}
		}
		next.Entries[kind] = model.ResourceMetadata{Label: label, Identifier: id}
	}
	m.apply(next, seq)
	return nil
}

// apply replaces the group's snapshot with next unless a later fetch already landed.
func (m *MetadataSync) apply(next *model.Snapshot, seq uint64) {
	next.Seq = seq
	m.store.Update(next.Group, func(current *model.Snapshot) *model.Snapshot {
		if current.Seq > seq {
			pfxlog.Logger().Debugf("dropping %s metadata of fetch %d, %d already applied", next.Group, seq, current.Seq)
			return nil
		}
		return next
	})
}

func (m *MetadataSync) markStale(group model.Group, seq uint64, err error) {
	applied := false
	m.store.Update(group, func(current *model.Snapshot) *model.Snapshot {
		if current.Seq > seq {
			return nil
		}
		current.Stale = true
		current.Err = err.Error()
		current.Seq = seq
		for k, entry := range current.Entries {
			if entry.Identifier.Sentinel == model.NotLoaded {
				entry.Identifier = model.SentinelIdentifier(model.FetchFailed)
				current.Entries[k] = entry
			}
		}
		applied = true
		return current
	})
	if applied {
		pfxlog.Logger().WithError(err).Warnf("%s metadata is stale", group)
	}
}

func masterEntry(kind model.Kind, filename string) model.ResourceMetadata {
	spec, _ := model.GetKind(kind)
	id := model.IdentifierOf(filename)
	if strings.TrimSpace(filename) == "" {
		id = model.SentinelIdentifier(model.NotConfigured)
	}
	return model.ResourceMetadata{Label: spec.Label, Identifier: id}
}
