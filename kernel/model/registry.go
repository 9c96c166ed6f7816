package model

import (
	"fmt"
	"sort"
	"sync"
)

// KindFactory describes a resource kind. Called on every lookup so callers never share a KindSpec.
type KindFactory func() *KindSpec

var (
	registryMu sync.RWMutex
	registry   = make(map[Kind]KindFactory)
)

// RegisterKind registers a factory for a given resource kind.
// e.g. RegisterKind(ProductMaster, func() *KindSpec { return &KindSpec{...} })
func RegisterKind(kind Kind, factory KindFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[kind]; dup {
		panic("RegisterKind called twice for " + string(kind))
	}
	registry[kind] = factory
}

// GetKind returns the description of a registered kind.
func GetKind(kind Kind) (*KindSpec, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("resource kind '%s' not found in registry", kind)
	}
	return factory(), nil
}

// KindsInGroup lists registered kinds belonging to group, sorted by name.
func KindsInGroup(group Group) []Kind {
	registryMu.RLock()
	defer registryMu.RUnlock()
	var kinds []Kind
	for k, factory := range registry {
		if factory().Group == group {
			kinds = append(kinds, k)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// KindByWireType finds the kind of group addressed by the backend's type parameter.
func KindByWireType(group Group, wireType string) (Kind, error) {
	for _, k := range KindsInGroup(group) {
		spec, _ := GetKind(k)
		if spec.WireType == wireType {
			return k, nil
		}
	}
	return "", fmt.Errorf("no %s kind with type '%s'", group, wireType)
}
