// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package plugin

import (
	"slices"
	"sync"
)

// Info is a host-facing snapshot of one installed plugin.
type Info struct {
	Manifest Manifest
	Active   bool
}

// Registry is the table of installed plugins and the active set.
// It is safe for concurrent use.
type Registry struct {
	plugins map[string]Plugin
	order   []string        // install order
	active  []string        // activation order
	pending map[string]bool // OnActivate in progress
	mu      sync.RWMutex
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]Plugin),
		pending: make(map[string]bool),
	}
}

// add records p under id. It reports false if id is already installed.
func (r *Registry) add(id string, p Plugin) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plugins[id]; ok {
		return false
	}
	r.plugins[id] = p
	r.order = append(r.order, id)
	return true
}

// Get returns the installed plugin with the given id.
func (r *Registry) Get(id string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[id]
	return p, ok
}

// IsActive reports whether id is in the active set.
func (r *Registry) IsActive(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Contains(r.active, id)
}

func (r *Registry) setActive(id string, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.Index(r.active, id)
	switch {
	case active && i < 0:
		r.active = append(r.active, id)
	case !active && i >= 0:
		r.active = slices.Delete(r.active, i, i+1)
	}
}

func (r *Registry) setActivating(id string, activating bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if activating {
		r.pending[id] = true
		return
	}
	delete(r.pending, id)
}

// canRegister reports whether id may add capabilities: it is active or its
// OnActivate hook is running.
func (r *Registry) canRegister(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pending[id] || slices.Contains(r.active, id)
}

// ActiveIDs returns the active plugin ids in activation order.
func (r *Registry) ActiveIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.active)
}

// List returns every installed plugin in install order.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		infos = append(infos, Info{
			Manifest: r.plugins[id].Manifest(),
			Active:   slices.Contains(r.active, id),
		})
	}
	return infos
}

// Len returns the number of installed plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
