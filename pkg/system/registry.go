package system

import (
	"math"
	"sort"
	"sync"
)

// Prioritized is any capability implementation a Registry orders:
// version schemes, repository layouts, selectors, and the like
// (spec.md §9 "Polymorphism": capability interfaces ordered by
// priority).
type Prioritized interface {
	Priority() float64
}

// Registry holds competing implementations of one capability and
// resolves them into priority order. A NaN priority always disables an
// entry -- the Open Question in spec.md §9 is resolved in favor of "NaN
// always disables regardless of mode", since a caller that wants an
// entry gone has no use for a mode-dependent half-measure.
type Registry struct {
	mu      sync.Mutex
	entries []Prioritized
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry { return &Registry{} }

// Register adds e to the registry.
func (r *Registry) Register(e Prioritized) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// Ordered returns every registered entry whose Priority is not NaN,
// highest priority first; ties keep registration order (sort.SliceStable).
func (r *Registry) Ordered() []Prioritized {
	r.mu.Lock()
	entries := make([]Prioritized, len(r.entries))
	copy(entries, r.entries)
	r.mu.Unlock()

	out := entries[:0:0]
	for _, e := range entries {
		if math.IsNaN(e.Priority()) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority() > out[j].Priority() })
	return out
}
