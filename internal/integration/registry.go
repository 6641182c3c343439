package integration

import (
	"fmt"
	"sort"
	"sync"

	"github.com/outboundhq/courier/internal/dispatch"
)

// Factory creates an adapter bound to a dispatch coordinator. Vendor
// packages register one in their init(); see the vendor packages for the
// registration side.
type Factory func(d *dispatch.Coordinator) Integration

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes a vendor type available to New. It panics on duplicate
// registration, which would mean two packages claim the same vendor type.
func Register(vendorType string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if _, dup := factories[vendorType]; dup {
		panic(fmt.Sprintf("integration: duplicate registration for %q", vendorType))
	}
	factories[vendorType] = factory
}

// New creates an adapter for the given vendor type.
func New(vendorType string, d *dispatch.Coordinator) (Integration, error) {
	factoriesMu.RLock()
	factory, ok := factories[vendorType]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown vendor type %q (registered: %v)", vendorType, Registered())
	}
	return factory(d), nil
}

// Registered returns the registered vendor types, sorted.
func Registered() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	types := make([]string, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
