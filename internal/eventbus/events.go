// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package eventbus

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Canonical events produced by the plugin runtime.
const (
	// PluginActivated carries the plugin id as a string payload.
	PluginActivated = "plugin:activated"
	// PluginDeactivated carries the plugin id as a string payload.
	PluginDeactivated = "plugin:deactivated"
	// PluginError carries a PluginErrorPayload.
	PluginError = "plugin:error"
	// PluginSettingsUpdated carries a SettingsUpdatedPayload.
	PluginSettingsUpdated = "plugin:settingsUpdated"
)

// Editor command events. The bus transports them without interpreting them.
const (
	// EditorInsert asks the editor to insert a string payload at the cursor.
	EditorInsert = "editor:insert"
	// EditorFormat asks the editor to apply a named format ("bold", ...).
	EditorFormat = "editor:format"
	// EditorTheme asks the host to switch to the theme id in the payload.
	EditorTheme = "editor:theme"
)

// Event is a single delivery on the bus.
type Event struct {
	ID        ulid.ULID
	Name      string
	Payload   any
	Timestamp time.Time
}

// PluginErrorPayload reports a plugin hook failure.
type PluginErrorPayload struct {
	PluginID string
	Err      error
}

// SettingsUpdatedPayload reports a committed settings change.
type SettingsUpdatedPayload struct {
	PluginID string
	Settings map[string]any
}
