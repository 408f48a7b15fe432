// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package plugin

import (
	"context"

	"github.com/samber/oops"

	"github.com/inkpad/inkpad/internal/capability"
	"github.com/inkpad/inkpad/internal/eventbus"
	"github.com/inkpad/inkpad/internal/settings"
)

// Context is the capability token handed to a hook. It is built fresh for
// every hook call and bound to one plugin id: everything registered through
// it is owned by that id, and settings calls address that id's record.
//
// Registration succeeds only while the plugin is active or inside its
// OnActivate hook. A Context kept past deactivation, or one handed to
// OnSettingsChange while the plugin is inactive, cannot add capabilities.
type Context struct {
	pluginID string
	catalog  *capability.Catalog
	store    *settings.Store
	bus      *eventbus.Bus
	registry *Registry
}

// PluginID returns the id the context is bound to.
func (c *Context) PluginID() string { return c.pluginID }

// RegisterCommand adds a command owned by the bound plugin.
func (c *Context) RegisterCommand(cmd capability.Command) error {
	if err := c.checkRegister(); err != nil {
		return err
	}
	return c.catalog.Commands.Register(c.pluginID, cmd)
}

// RegisterRenderer adds a content renderer owned by the bound plugin.
func (c *Context) RegisterRenderer(r capability.Renderer) error {
	if err := c.checkRegister(); err != nil {
		return err
	}
	return c.catalog.Renderers.Register(c.pluginID, r)
}

// RegisterTheme adds a theme owned by the bound plugin.
func (c *Context) RegisterTheme(t capability.Theme) error {
	if err := c.checkRegister(); err != nil {
		return err
	}
	return c.catalog.Themes.Register(c.pluginID, t)
}

// RegisterToolbarItem adds a toolbar item owned by the bound plugin.
func (c *Context) RegisterToolbarItem(item capability.ToolbarItem) error {
	if err := c.checkRegister(); err != nil {
		return err
	}
	return c.catalog.Toolbar.Register(c.pluginID, item)
}

func (c *Context) checkRegister() error {
	if c.registry.canRegister(c.pluginID) {
		return nil
	}
	return oops.Code(CodePluginInactive).
		In("plugin").
		With("plugin", c.pluginID).
		Errorf("plugin %s is not active", c.pluginID)
}

// Settings returns a copy of the bound plugin's settings record.
func (c *Context) Settings() settings.Settings {
	return c.store.Get(c.pluginID)
}

// UpdateSettings merges partial into the bound plugin's record.
// It runs on the caller's goroutine without taking the lifecycle lock, so
// it may be called from inside a hook.
func (c *Context) UpdateSettings(ctx context.Context, partial settings.Settings) {
	c.store.Update(ctx, c.pluginID, partial)
}

// EventBus returns the shared event bus.
func (c *Context) EventBus() *eventbus.Bus { return c.bus }

// Active reports whether the bound plugin is currently active. During
// OnActivate it is false.
func (c *Context) Active() bool {
	return c.registry.IsActive(c.pluginID)
}

// SettingsAs decodes the bound plugin's settings record into T.
func SettingsAs[T any](c *Context) (T, error) {
	return settings.Decode[T](c.Settings())
}
