// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

// Package base is the built-in plugin providing heading rendering, the
// default theme and the bold toolbar button.
package base

import (
	"context"
	"fmt"

	"github.com/inkpad/inkpad/internal/capability"
	"github.com/inkpad/inkpad/internal/eventbus"
	"github.com/inkpad/inkpad/internal/plugin"
	"github.com/inkpad/inkpad/internal/plugins/view"
)

// ID is the plugin id.
const ID = "base"

// Plugin is the base plugin.
type Plugin struct {
	plugin.Base
}

// New creates the base plugin.
func New() *Plugin { return &Plugin{} }

// Manifest implements plugin.Plugin.
func (*Plugin) Manifest() plugin.Manifest {
	return plugin.Manifest{
		ID:          ID,
		Name:        "Base Plugin",
		Version:     "1.0.0",
		Description: "Provides basic markdown rendering capabilities",
	}
}

// OnActivate implements plugin.Plugin.
func (*Plugin) OnActivate(_ context.Context, pc *plugin.Context) error {
	if err := pc.RegisterRenderer(capability.Renderer{
		ID:     "heading",
		Name:   "Heading Renderer",
		Test:   func(n capability.Node) bool { return n.Type() == "heading" },
		Render: renderHeading,
	}); err != nil {
		return err
	}

	if err := pc.RegisterTheme(capability.Theme{
		ID:   "default",
		Name: "Default Theme",
		Styles: map[string]string{
			"heading-1": "text-3xl font-bold mb-4",
			"heading-2": "text-2xl font-bold mb-3",
			"paragraph": "mb-4 text-gray-700 leading-relaxed",
		},
	}); err != nil {
		return err
	}

	bus := pc.EventBus()
	return pc.RegisterToolbarItem(capability.ToolbarItem{
		ID:       "bold",
		Position: capability.PositionLeft,
		Render: func() capability.Output {
			return view.Button("B", "Bold", func(ctx context.Context) {
				bus.Emit(ctx, eventbus.EditorFormat, "bold")
			})
		},
	})
}

// headingLevel reads node depth, clamped to 1..6.
func headingLevel(n capability.Node) int {
	var level int
	switch d := n["depth"].(type) {
	case int:
		level = d
	case float64:
		level = int(d)
	}
	if level < 1 || level > 6 {
		return 1
	}
	return level
}

func renderHeading(n capability.Node, children capability.Output) capability.Output {
	level := headingLevel(n)
	class := "text-right"
	if level == 1 {
		class = "text-center"
	}
	return view.Element{
		Tag:      fmt.Sprintf("h%d", level),
		Class:    class,
		Children: []any{children},
	}
}
