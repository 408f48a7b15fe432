// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package plugin

import (
	"context"

	"github.com/inkpad/inkpad/internal/settings"
)

// Plugin is the contract every plugin implements. Embed Base to get no-op
// hooks and implement only the ones the plugin needs.
//
// Hooks receive a fresh Context bound to the plugin's id. A returned error
// (or a panic) fails the transition; it is never returned to the caller of
// the lifecycle operation.
type Plugin interface {
	Manifest() Manifest
	OnActivate(ctx context.Context, pc *Context) error
	OnDeactivate(ctx context.Context, pc *Context) error
	OnSettingsChange(ctx context.Context, pc *Context, s settings.Settings) error
}

// Base provides no-op lifecycle hooks.
type Base struct{}

// OnActivate does nothing.
func (Base) OnActivate(context.Context, *Context) error { return nil }

// OnDeactivate does nothing.
func (Base) OnDeactivate(context.Context, *Context) error { return nil }

// OnSettingsChange does nothing.
func (Base) OnSettingsChange(context.Context, *Context, settings.Settings) error { return nil }

// Funcs adapts plain functions to Plugin. Nil hooks are no-ops.
type Funcs struct {
	Meta           Manifest
	Activate       func(ctx context.Context, pc *Context) error
	Deactivate     func(ctx context.Context, pc *Context) error
	SettingsChange func(ctx context.Context, pc *Context, s settings.Settings) error
}

// Compile-time interface check.
var _ Plugin = (*Funcs)(nil)

// Manifest implements Plugin.
func (f *Funcs) Manifest() Manifest { return f.Meta }

// OnActivate implements Plugin.
func (f *Funcs) OnActivate(ctx context.Context, pc *Context) error {
	if f.Activate == nil {
		return nil
	}
	return f.Activate(ctx, pc)
}

// OnDeactivate implements Plugin.
func (f *Funcs) OnDeactivate(ctx context.Context, pc *Context) error {
	if f.Deactivate == nil {
		return nil
	}
	return f.Deactivate(ctx, pc)
}

// OnSettingsChange implements Plugin.
func (f *Funcs) OnSettingsChange(ctx context.Context, pc *Context, s settings.Settings) error {
	if f.SettingsChange == nil {
		return nil
	}
	return f.SettingsChange(ctx, pc, s)
}
