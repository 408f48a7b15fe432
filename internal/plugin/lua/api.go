// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package lua

import (
	"context"

	lua "github.com/yuin/gopher-lua"

	"github.com/inkpad/inkpad/internal/capability"
	"github.com/inkpad/inkpad/internal/eventbus"
	"github.com/inkpad/inkpad/internal/logging"
	"github.com/inkpad/inkpad/internal/plugin"
	"github.com/inkpad/inkpad/pkg/errutil"
)

// contextTable builds the ctx table passed to hooks. Its functions act
// through pc, so everything a script registers is owned by its plugin id.
// Both ctx.fn(...) and ctx:fn(...) call styles work.
func (s *Script) contextTable(L *lua.LState, pc *plugin.Context) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("plugin_id", lua.LString(pc.PluginID()))

	fns := map[string]lua.LGFunction{
		"register_command":      s.registerCommand(pc),
		"register_renderer":     s.registerRenderer(pc),
		"register_theme":        s.registerTheme(pc),
		"register_toolbar_item": s.registerToolbarItem(pc),
		"get_settings":          getSettings(pc),
		"update_settings":       updateSettings(pc),
		"emit":                  emit(pc),
		"on":                    s.on(pc),
		"log":                   s.log(pc),
	}
	for name, fn := range fns {
		t.RawSetString(name, L.NewFunction(dropSelf(t, fn)))
	}
	return t
}

// dropSelf removes a leading self argument so ctx:fn() behaves like ctx.fn().
func dropSelf(self *lua.LTable, fn lua.LGFunction) lua.LGFunction {
	return func(L *lua.LState) int {
		if L.GetTop() > 0 && L.Get(1) == self {
			L.Remove(1)
		}
		return fn(L)
	}
}

func stateContext(L *lua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func field(t *lua.LTable, name string) string {
	if s, ok := t.RawGetString(name).(lua.LString); ok {
		return string(s)
	}
	return ""
}

func function(t *lua.LTable, name string) *lua.LFunction {
	fn, _ := t.RawGetString(name).(*lua.LFunction)
	return fn
}

func raise(L *lua.LState, err error) int {
	L.RaiseError("%s", err.Error())
	return 0
}

func (s *Script) registerCommand(pc *plugin.Context) lua.LGFunction {
	return func(L *lua.LState) int {
		def := L.CheckTable(1)
		cmd := capability.Command{
			ID:       field(def, "id"),
			Name:     field(def, "name"),
			Shortcut: field(def, "shortcut"),
		}
		if fn := function(def, "execute"); fn != nil {
			what := "command " + cmd.ID
			cmd.Execute = func(ctx context.Context) error {
				_, err := s.callIn(ctx, L, what, fn, 0)
				return err
			}
		}
		if err := pc.RegisterCommand(cmd); err != nil {
			return raise(L, err)
		}
		return 0
	}
}

func (s *Script) registerRenderer(pc *plugin.Context) lua.LGFunction {
	return func(L *lua.LState) int {
		def := L.CheckTable(1)
		r := capability.Renderer{
			ID:   field(def, "id"),
			Name: field(def, "name"),
		}
		if test := function(def, "test"); test != nil {
			what := "renderer " + r.ID + " test"
			r.Test = func(node capability.Node) bool {
				rets, err := s.callIn(context.Background(), L, what, test, 1, toLua(L, node))
				if err != nil {
					s.logFailure(pc.PluginID(), what, err)
					return false
				}
				return lua.LVAsBool(rets[0])
			}
		}
		if render := function(def, "render"); render != nil {
			what := "renderer " + r.ID + " render"
			r.Render = func(node capability.Node, children capability.Output) capability.Output {
				rets, err := s.callIn(context.Background(), L, what, render, 1, toLua(L, node), toLua(L, children))
				if err != nil {
					s.logFailure(pc.PluginID(), what, err)
					return nil
				}
				return fromLua(rets[0])
			}
		}
		if err := pc.RegisterRenderer(r); err != nil {
			return raise(L, err)
		}
		return 0
	}
}

func (s *Script) registerTheme(pc *plugin.Context) lua.LGFunction {
	return func(L *lua.LState) int {
		def := L.CheckTable(1)
		styles, _ := def.RawGetString("styles").(*lua.LTable)
		theme := capability.Theme{
			ID:     field(def, "id"),
			Name:   field(def, "name"),
			Styles: stringMap(styles),
		}
		if err := pc.RegisterTheme(theme); err != nil {
			return raise(L, err)
		}
		return 0
	}
}

func (s *Script) registerToolbarItem(pc *plugin.Context) lua.LGFunction {
	return func(L *lua.LState) int {
		def := L.CheckTable(1)
		item := capability.ToolbarItem{
			ID:       field(def, "id"),
			Position: capability.Position(field(def, "position")),
		}
		if render := function(def, "render"); render != nil {
			what := "toolbar item " + item.ID
			item.Render = func() capability.Output {
				rets, err := s.callIn(context.Background(), L, what, render, 1)
				if err != nil {
					s.logFailure(pc.PluginID(), what, err)
					return nil
				}
				return fromLua(rets[0])
			}
		}
		if err := pc.RegisterToolbarItem(item); err != nil {
			return raise(L, err)
		}
		return 0
	}
}

func getSettings(pc *plugin.Context) lua.LGFunction {
	return func(L *lua.LState) int {
		L.Push(toLua(L, pc.Settings()))
		return 1
	}
}

func updateSettings(pc *plugin.Context) lua.LGFunction {
	return func(L *lua.LState) int {
		pc.UpdateSettings(stateContext(L), settingsFromLua(L.CheckTable(1)))
		return 0
	}
}

func emit(pc *plugin.Context) lua.LGFunction {
	return func(L *lua.LState) int {
		name := L.CheckString(1)
		pc.EventBus().Emit(stateContext(L), name, fromLua(L.Get(2)))
		return 0
	}
}

// on subscribes a Lua function to a bus event. The handler receives
// (payload, event_name). Subscriptions end when the script deactivates.
func (s *Script) on(pc *plugin.Context) lua.LGFunction {
	return func(L *lua.LState) int {
		name := L.CheckString(1)
		fn := L.CheckFunction(2)
		what := "handler " + name

		bus := pc.EventBus()
		sub := bus.On(name, func(ctx context.Context, ev eventbus.Event) {
			if _, err := s.callIn(ctx, L, what, fn, 0, toLua(L, ev.Payload), lua.LString(ev.Name)); err != nil {
				s.logFailure(pc.PluginID(), what, err)
			}
		})
		if !s.addSubscription(L, sub) {
			bus.Off(sub)
		}
		return 0
	}
}

func (s *Script) log(pc *plugin.Context) lua.LGFunction {
	return func(L *lua.LState) int {
		msg := L.CheckString(1)
		ctx := logging.WithPlugin(stateContext(L), pc.PluginID())
		switch L.OptString(2, "info") {
		case "debug":
			s.logger.DebugContext(ctx, msg)
		case "warn":
			s.logger.WarnContext(ctx, msg)
		case "error":
			s.logger.ErrorContext(ctx, msg)
		default:
			s.logger.InfoContext(ctx, msg)
		}
		return 0
	}
}

func (s *Script) logFailure(pluginID, what string, err error) {
	ctx := logging.WithPlugin(context.Background(), pluginID)
	errutil.LogErrorContext(ctx, s.logger, "script "+what+" failed", err)
}
