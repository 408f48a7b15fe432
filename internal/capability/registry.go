// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package capability

import (
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// Registration is one registered entry with its owning plugin.
type Registration[T Entry] struct {
	Key   Key
	Entry T
}

// Owner returns the id of the plugin that registered the entry.
func (r Registration[T]) Owner() string { return r.Key.Owner }

// Reader is the read-only view of a Registry handed to the host.
type Reader[T Entry] interface {
	All() []Registration[T]
	Entries() []T
	Get(key Key) (T, bool)
	OwnedBy(owner string) []Registration[T]
	Match(pattern string) ([]Registration[T], error)
	Len() int
}

// Registry is an insertion-ordered map of entries keyed by (owner, id).
// It is safe for concurrent use.
type Registry[T Entry] struct {
	kind    string
	order   []Key
	entries map[Key]T
	mu      sync.RWMutex
}

// Compile-time interface check.
var _ Reader[Theme] = (*Registry[Theme])(nil)

// NewRegistry creates an empty registry for the named kind.
func NewRegistry[T Entry](kind string) *Registry[T] {
	return &Registry[T]{
		kind:    kind,
		entries: make(map[Key]T),
	}
}

// Kind returns the capability kind the registry holds.
func (r *Registry[T]) Kind() string { return r.kind }

// Register stores entry under (owner, entry.EntryID()). Re-registering the
// same key replaces the entry in place.
func (r *Registry[T]) Register(owner string, entry T) error {
	if owner == "" {
		return errInvalidEntry(r.kind, entry.EntryID(), "owner is required")
	}
	if err := entry.Validate(); err != nil {
		return oops.With("owner", owner).Wrap(err)
	}

	key := Key{Owner: owner, ID: entry.EntryID()}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[key]; !ok {
		r.order = append(r.order, key)
	}
	r.entries[key] = entry
	return nil
}

// UnregisterAllOwnedBy removes every entry owned by owner and returns how
// many were removed.
func (r *Registry[T]) UnregisterAllOwnedBy(owner string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]Key, 0, len(r.order))
	removed := 0
	for _, key := range r.order {
		if key.Owner == owner {
			delete(r.entries, key)
			removed++
			continue
		}
		kept = append(kept, key)
	}
	r.order = kept
	return removed
}

// All returns every registration in registration order.
// The returned slice is a copy and safe to modify.
func (r *Registry[T]) All() []Registration[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	regs := make([]Registration[T], 0, len(r.order))
	for _, key := range r.order {
		regs = append(regs, Registration[T]{Key: key, Entry: r.entries[key]})
	}
	return regs
}

// Entries returns every entry in registration order, without ownership.
func (r *Registry[T]) Entries() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.entries[key])
	}
	return out
}

// Get returns the entry registered under key.
func (r *Registry[T]) Get(key Key) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[key]
	return e, ok
}

// OwnedBy returns the registrations owned by owner, in registration order.
func (r *Registry[T]) OwnedBy(owner string) []Registration[T] {
	return r.filter(func(k Key) bool { return k.Owner == owner })
}

// Match returns the registrations whose qualified id matches pattern.
// '*' matches within one segment and does not cross ':'.
func (r *Registry[T]) Match(pattern string) ([]Registration[T], error) {
	if pattern == "" {
		return nil, oops.Code(CodeInvalidPattern).In("capability").Errorf("empty pattern")
	}
	g, err := glob.Compile(pattern, ':')
	if err != nil {
		return nil, oops.Code(CodeInvalidPattern).In("capability").With("pattern", pattern).Wrap(err)
	}
	return r.filter(func(k Key) bool { return g.Match(k.String()) }), nil
}

// Len returns the number of registrations.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func (r *Registry[T]) filter(keep func(Key) bool) []Registration[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var regs []Registration[T]
	for _, key := range r.order {
		if keep(key) {
			regs = append(regs, Registration[T]{Key: key, Entry: r.entries[key]})
		}
	}
	return regs
}
