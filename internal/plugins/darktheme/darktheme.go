// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

// Package darktheme is the built-in plugin providing the dark theme and a
// toolbar toggle between it and the default theme.
package darktheme

import (
	"context"
	"sync"

	"github.com/inkpad/inkpad/internal/capability"
	"github.com/inkpad/inkpad/internal/eventbus"
	"github.com/inkpad/inkpad/internal/plugin"
	"github.com/inkpad/inkpad/internal/plugins/view"
)

// ID is the plugin id.
const ID = "dark-theme"

// Theme ids the toggle switches between.
const (
	ThemeDefault = "default"
	ThemeDark    = "dark"
)

// Plugin is the dark theme plugin. It tracks the current theme by
// listening to editor:theme.
type Plugin struct {
	plugin.Base

	mu      sync.Mutex
	current string
	sub     *eventbus.Subscription
}

// New creates the dark theme plugin.
func New() *Plugin { return &Plugin{current: ThemeDefault} }

// Manifest implements plugin.Plugin.
func (*Plugin) Manifest() plugin.Manifest {
	return plugin.Manifest{
		ID:          ID,
		Name:        "Dark Theme",
		Version:     "1.0.0",
		Description: "Provides dark theme support",
	}
}

// Current returns the theme id last announced on editor:theme.
func (p *Plugin) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// OnActivate implements plugin.Plugin.
func (p *Plugin) OnActivate(_ context.Context, pc *plugin.Context) error {
	if err := pc.RegisterTheme(capability.Theme{
		ID:   ThemeDark,
		Name: "Dark Theme",
		Styles: map[string]string{
			"root":            "bg-gray-900 text-gray-100",
			"editor":          "bg-gray-800 text-gray-100",
			"preview":         "bg-gray-900",
			"preview-content": "bg-gray-800 text-gray-100",
			"heading-1":       "text-3xl font-bold mb-4 text-gray-100",
			"heading-2":       "text-2xl font-bold mb-3 text-gray-100",
			"paragraph":       "mb-4 text-gray-300 leading-relaxed",
		},
	}); err != nil {
		return err
	}

	bus := pc.EventBus()
	if err := pc.RegisterToolbarItem(capability.ToolbarItem{
		ID:       "theme-toggle",
		Position: capability.PositionRight,
		Render:   func() capability.Output { return p.toggleButton(bus) },
	}); err != nil {
		return err
	}

	sub := bus.On(eventbus.EditorTheme, func(_ context.Context, ev eventbus.Event) {
		if id, ok := ev.Payload.(string); ok {
			p.mu.Lock()
			p.current = id
			p.mu.Unlock()
		}
	})
	p.mu.Lock()
	p.sub = &sub
	p.mu.Unlock()
	return nil
}

// OnDeactivate implements plugin.Plugin.
func (p *Plugin) OnDeactivate(_ context.Context, pc *plugin.Context) error {
	p.mu.Lock()
	sub := p.sub
	p.sub = nil
	p.mu.Unlock()

	if sub != nil {
		pc.EventBus().Off(*sub)
	}
	return nil
}

func (p *Plugin) toggleButton(bus *eventbus.Bus) view.Element {
	next, label, title := ThemeDark, "moon", "Switch to Dark Theme"
	if p.Current() != ThemeDefault {
		next, label, title = ThemeDefault, "sun", "Switch to Light Theme"
	}
	return view.Button(label, title, func(ctx context.Context) {
		bus.Emit(ctx, eventbus.EditorTheme, next)
	})
}
