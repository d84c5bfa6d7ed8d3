// Package sink resolves and runs the outputs a finished snapshot is published to.
package sink

import (
	"fmt"

	"PopulationSnapshot/internal/ports"
)

// Registry keeps a mapping from sink names to their implementations.
type Registry struct {
	sinks map[string]ports.SnapshotSink
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sinks: map[string]ports.SnapshotSink{}}
}

// Register adds or replaces a sink implementation.
func (r *Registry) Register(s ports.SnapshotSink) {
	if r.sinks == nil {
		r.sinks = map[string]ports.SnapshotSink{}
	}
	r.sinks[s.Name()] = s
}

// Resolve returns a sink by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.SnapshotSink, error) {
	if s, ok := r.sinks[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("sink %s is not registered", name)
}

// ResolveAll resolves names in order, rejecting duplicates.
func (r *Registry) ResolveAll(names []string) ([]ports.SnapshotSink, error) {
	seen := make(map[string]struct{}, len(names))
	resolved := make([]ports.SnapshotSink, 0, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("sink %s listed twice", name)
		}
		seen[name] = struct{}{}

		s, err := r.Resolve(name)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, s)
	}
	return resolved, nil
}
