// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package capability

import "context"

// Entry is implemented by every capability kind.
type Entry interface {
	// EntryID is the plugin-local id of the entry.
	EntryID() string
	// Validate reports whether the entry can be registered.
	Validate() error
}

// Kind names used in errors, logs and metrics.
const (
	KindCommand  = "command"
	KindRenderer = "renderer"
	KindTheme    = "theme"
	KindToolbar  = "toolbar_item"
)

// Node is an opaque description of a content node handed to renderers by
// the host's rendering pipeline, e.g. {"type": "heading", "depth": 2}.
type Node map[string]any

// Type returns the node's "type" field, or "" if absent.
func (n Node) Type() string {
	t, _ := n["type"].(string)
	return t
}

// Output is whatever a renderer or toolbar item produces. The runtime never
// inspects it.
type Output = any

// Command is an invocable action, optionally bound to a keyboard shortcut.
type Command struct {
	ID       string
	Name     string
	Shortcut string
	Execute  func(ctx context.Context) error
}

// EntryID implements Entry.
func (c Command) EntryID() string { return c.ID }

// Validate implements Entry.
func (c Command) Validate() error {
	if c.ID == "" {
		return errInvalidEntry(KindCommand, c.ID, "id is required")
	}
	if c.Execute == nil {
		return errInvalidEntry(KindCommand, c.ID, "execute function is required")
	}
	if c.Shortcut != "" {
		if _, err := ParseShortcut(c.Shortcut); err != nil {
			return err
		}
	}
	return nil
}

// Renderer turns a content node into output. The pipeline calls Test and,
// on the first match, Render with the node's already-rendered children.
type Renderer struct {
	ID     string
	Name   string
	Test   func(node Node) bool
	Render func(node Node, children Output) Output
}

// EntryID implements Entry.
func (r Renderer) EntryID() string { return r.ID }

// Validate implements Entry.
func (r Renderer) Validate() error {
	if r.ID == "" {
		return errInvalidEntry(KindRenderer, r.ID, "id is required")
	}
	if r.Test == nil || r.Render == nil {
		return errInvalidEntry(KindRenderer, r.ID, "test and render functions are required")
	}
	return nil
}

// Theme maps style slots ("editor", "heading-1", ...) to style classes.
type Theme struct {
	ID     string
	Name   string
	Styles map[string]string
}

// EntryID implements Entry.
func (t Theme) EntryID() string { return t.ID }

// Validate implements Entry.
func (t Theme) Validate() error {
	if t.ID == "" {
		return errInvalidEntry(KindTheme, t.ID, "id is required")
	}
	return nil
}

// Position is the toolbar side an item is placed on.
type Position string

// Toolbar positions.
const (
	PositionLeft  Position = "left"
	PositionRight Position = "right"
)

// Valid reports whether p is a known position.
func (p Position) Valid() bool {
	return p == PositionLeft || p == PositionRight
}

// ToolbarItem is a toolbar placement.
type ToolbarItem struct {
	ID       string
	Position Position
	Render   func() Output
}

// EntryID implements Entry.
func (i ToolbarItem) EntryID() string { return i.ID }

// Validate implements Entry.
func (i ToolbarItem) Validate() error {
	if i.ID == "" {
		return errInvalidEntry(KindToolbar, i.ID, "id is required")
	}
	if !i.Position.Valid() {
		return errInvalidEntry(KindToolbar, i.ID, "position must be 'left' or 'right', got '"+string(i.Position)+"'")
	}
	if i.Render == nil {
		return errInvalidEntry(KindToolbar, i.ID, "render function is required")
	}
	return nil
}
