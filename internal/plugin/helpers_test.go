// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package plugin_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/inkpad/inkpad/internal/capability"
	"github.com/inkpad/inkpad/internal/eventbus"
	"github.com/inkpad/inkpad/internal/plugin"
	"github.com/inkpad/inkpad/internal/settings"
)

// mockPlugin is a testify mock of plugin.Plugin.
type mockPlugin struct {
	mock.Mock
	manifest plugin.Manifest
}

func newMockPlugin(id string) *mockPlugin {
	return &mockPlugin{manifest: plugin.Manifest{ID: id, Name: id, Version: "1.0.0"}}
}

func (p *mockPlugin) Manifest() plugin.Manifest { return p.manifest }

func (p *mockPlugin) OnActivate(ctx context.Context, pc *plugin.Context) error {
	return p.Called(ctx, pc).Error(0)
}

func (p *mockPlugin) OnDeactivate(ctx context.Context, pc *plugin.Context) error {
	return p.Called(ctx, pc).Error(0)
}

func (p *mockPlugin) OnSettingsChange(ctx context.Context, pc *plugin.Context, s settings.Settings) error {
	return p.Called(ctx, pc, s).Error(0)
}

// recorder captures events from a bus.
type recorder struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func record(bus *eventbus.Bus, names ...string) *recorder {
	r := &recorder{}
	for _, name := range names {
		bus.On(name, func(_ context.Context, ev eventbus.Event) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, ev)
		})
	}
	return r
}

func (r *recorder) all() []eventbus.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]eventbus.Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder) named(name string) []eventbus.Event {
	var out []eventbus.Event
	for _, ev := range r.all() {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

var lifecycleEvents = []string{
	eventbus.PluginActivated,
	eventbus.PluginDeactivated,
	eventbus.PluginError,
	eventbus.PluginSettingsUpdated,
}

func newTestManager(t *testing.T, opts ...plugin.ManagerOption) (*plugin.Manager, *recorder) {
	t.Helper()
	bus := eventbus.New()
	rec := record(bus, lifecycleEvents...)
	return plugin.NewManager(bus, opts...), rec
}

func noop(context.Context) error { return nil }

func registerOneOfEach(pc *plugin.Context, id string) error {
	if err := pc.RegisterCommand(capability.Command{ID: id, Name: id, Execute: noop}); err != nil {
		return err
	}
	if err := pc.RegisterRenderer(capability.Renderer{
		ID:     id,
		Test:   func(capability.Node) bool { return true },
		Render: func(_ capability.Node, children capability.Output) capability.Output { return children },
	}); err != nil {
		return err
	}
	if err := pc.RegisterTheme(capability.Theme{ID: id, Name: id}); err != nil {
		return err
	}
	return pc.RegisterToolbarItem(capability.ToolbarItem{
		ID:       id,
		Position: capability.PositionLeft,
		Render:   func() capability.Output { return id },
	})
}

func ownedCounts(m *plugin.Manager, owner string) [4]int {
	return [4]int{
		len(m.Commands().OwnedBy(owner)),
		len(m.Renderers().OwnedBy(owner)),
		len(m.Themes().OwnedBy(owner)),
		len(m.Toolbar().OwnedBy(owner)),
	}
}
