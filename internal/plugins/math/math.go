// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

// Package math is the built-in plugin for LaTeX math blocks: a renderer,
// an insert-formula toolbar button and typed settings.
package math

import (
	"context"
	"fmt"

	"github.com/inkpad/inkpad/internal/capability"
	"github.com/inkpad/inkpad/internal/eventbus"
	"github.com/inkpad/inkpad/internal/plugin"
	"github.com/inkpad/inkpad/internal/plugins/view"
	"github.com/inkpad/inkpad/internal/settings"
)

// ID is the plugin id.
const ID = "math"

// Delimiter styles.
const (
	DelimiterDollars  = "dollars"
	DelimiterBrackets = "brackets"
)

// Settings is the math plugin's settings record.
type Settings struct {
	DefaultDelimiter string `json:"defaultDelimiter" jsonschema:"enum=dollars,enum=brackets"`
	AutoNumbering    bool   `json:"autoNumbering"`
}

// DefaultSettings are the settings a fresh install starts with.
var DefaultSettings = Settings{
	DefaultDelimiter: DelimiterDollars,
	AutoNumbering:    false,
}

// Plugin is the math plugin.
type Plugin struct {
	plugin.Base
}

// New creates the math plugin.
func New() *Plugin { return &Plugin{} }

// Manifest implements plugin.Plugin.
func (*Plugin) Manifest() plugin.Manifest {
	return plugin.Manifest{
		ID:                ID,
		Name:              "Math Formulas",
		Version:           "1.0.0",
		Description:       "Adds support for LaTeX math formulas",
		DefaultSettings:   DefaultSettings,
		SettingsType:      Settings{},
		SettingsComponent: "math-settings",
	}
}

// OnActivate implements plugin.Plugin.
func (p *Plugin) OnActivate(_ context.Context, pc *plugin.Context) error {
	s, err := plugin.SettingsAs[Settings](pc)
	if err != nil {
		return err
	}
	return p.register(pc, s)
}

// OnSettingsChange re-registers the renderer and toolbar item with the new
// settings. Registration overwrites in place, so ordering is kept.
func (p *Plugin) OnSettingsChange(_ context.Context, pc *plugin.Context, merged settings.Settings) error {
	if !pc.Active() {
		return nil
	}
	s, err := settings.Decode[Settings](merged)
	if err != nil {
		return err
	}
	return p.register(pc, s)
}

func (p *Plugin) register(pc *plugin.Context, s Settings) error {
	bus := pc.EventBus()
	if err := pc.RegisterToolbarItem(capability.ToolbarItem{
		ID:       "insert-math",
		Position: capability.PositionLeft,
		Render: func() capability.Output {
			return view.Button("sigma", "Insert Math Formula", func(ctx context.Context) {
				bus.Emit(ctx, eventbus.EditorInsert, Snippet(s.DefaultDelimiter))
			})
		},
	}); err != nil {
		return err
	}

	return pc.RegisterRenderer(capability.Renderer{
		ID:   "math",
		Name: "Math Renderer",
		Test: func(n capability.Node) bool { return n.Type() == "math" },
		Render: func(n capability.Node, children capability.Output) capability.Output {
			return renderMath(s, n, children)
		},
	})
}

// Snippet returns the formula template inserted by the toolbar button.
func Snippet(delimiter string) string {
	open, closing := "$$", "$$"
	if delimiter == DelimiterBrackets {
		open, closing = `\[`, `\]`
	}
	return open + "\n\\frac{1}{2}\n" + closing
}

func renderMath(s Settings, n capability.Node, children capability.Output) capability.Output {
	block := view.Element{
		Tag:   "div",
		Class: "my-4 text-center overflow-x-auto",
	}
	if s.AutoNumbering {
		block.Class += " relative pl-8"
		block.Children = append(block.Children, view.Element{
			Tag:   "span",
			Class: "absolute left-0 top-1/2 -translate-y-1/2 text-sm text-gray-500",
			Text:  fmt.Sprintf("(%v)", equationIndex(n)),
		})
	}
	block.Children = append(block.Children, children)
	return block
}

func equationIndex(n capability.Node) any {
	switch v := n["index"].(type) {
	case int:
		if v != 0 {
			return v
		}
	case float64:
		if v != 0 {
			return v
		}
	}
	return 1
}
