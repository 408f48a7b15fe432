// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package settings

import (
	"context"
	"sync"

	"github.com/samber/oops"

	"github.com/inkpad/inkpad/internal/eventbus"
)

// ChangeHook is notified after an update is committed.
type ChangeHook func(ctx context.Context, merged Settings) error

type record struct {
	values Settings
	schema *Schema
	hook   ChangeHook
}

// Store maps plugin ids to settings records.
// It is safe for concurrent use.
type Store struct {
	records map[string]*record
	bus     eventbus.Publisher
	mu      sync.RWMutex
}

// NewStore creates a store that reports updates and hook failures on bus.
func NewStore(bus eventbus.Publisher) *Store {
	return &Store{
		records: make(map[string]*record),
		bus:     bus,
	}
}

// Register makes pluginID known to the store. defaults, if non-nil, seed
// the record; otherwise the record stays absent until the first update.
// schema and hook are optional. Defaults that fail schema validation are
// rejected and the plugin stays unknown.
func (s *Store) Register(pluginID string, defaults Settings, schema *Schema, hook ChangeHook) error {
	rec := &record{schema: schema, hook: hook}
	if defaults != nil {
		if schema != nil {
			if err := schema.Validate(defaults); err != nil {
				return oops.With("plugin", pluginID).Hint("default settings do not match the settings schema").Wrap(err)
			}
		}
		rec.values = defaults.Clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[pluginID] = rec
	return nil
}

// Known reports whether pluginID has been registered.
func (s *Store) Known(pluginID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[pluginID]
	return ok
}

// Schema returns the schema registered for pluginID, or nil.
func (s *Store) Schema(pluginID string) *Schema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[pluginID]; ok {
		return rec.schema
	}
	return nil
}

// Get returns a copy of the stored record, or an empty record.
func (s *Store) Get(pluginID string) Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[pluginID]; ok {
		return rec.values.Clone()
	}
	return Settings{}
}

// Update shallow-merges partial into the plugin's record. Unknown plugins
// are ignored.
//
// The merged record is committed before the change hook runs. A failing hook
// is reported as PluginError and the commit stands; PluginSettingsUpdated is
// emitted only when the hook succeeds. A merged record that fails schema
// validation is reported and not committed.
func (s *Store) Update(ctx context.Context, pluginID string, partial Settings) {
	s.mu.Lock()
	rec, ok := s.records[pluginID]
	if !ok {
		s.mu.Unlock()
		return
	}
	merged := Merge(rec.values, partial)
	if rec.schema != nil {
		if err := rec.schema.Validate(merged); err != nil {
			s.mu.Unlock()
			s.bus.ReportError(ctx, pluginID, oops.With("plugin", pluginID).Wrap(err))
			return
		}
	}
	rec.values = merged
	hook := rec.hook
	s.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, merged.Clone()); err != nil {
			s.bus.ReportError(ctx, pluginID, oops.Code(CodeSettingsHookFailed).
				In("settings").
				With("plugin", pluginID).
				Wrap(err))
			return
		}
	}

	s.bus.Emit(ctx, eventbus.PluginSettingsUpdated, eventbus.SettingsUpdatedPayload{
		PluginID: pluginID,
		Settings: merged.Clone(),
	})
}
