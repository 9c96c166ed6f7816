package store

import "github.com/mamameal/docgenctl/kernel/model"

// MetadataStore holds the displayed metadata snapshot of each group.
type MetadataStore interface {
	// Snapshot returns a copy of the group's current snapshot.
	Snapshot(group model.Group) *model.Snapshot
	// Replace swaps the group's snapshot as a whole.
	Replace(snapshot *model.Snapshot)
	// Update applies fn to a copy of the group's snapshot under the store lock. A nil result
	// leaves the stored snapshot unchanged.
	Update(group model.Group, fn func(current *model.Snapshot) *model.Snapshot)
	Groups() []model.Group
}
