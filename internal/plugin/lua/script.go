// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package lua

import (
	"context"
	"log/slog"
	"sync"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/inkpad/inkpad/internal/eventbus"
	"github.com/inkpad/inkpad/internal/plugin"
	"github.com/inkpad/inkpad/internal/settings"
)

// Lua globals a script may define as lifecycle hooks.
const (
	hookActivate       = "on_activate"
	hookDeactivate     = "on_deactivate"
	hookSettingsChange = "on_settings_change"
)

// Script is a plugin backed by a compiled Lua entry file.
//
// Each activation runs the entry in a fresh Lua state that lives until
// deactivation. Capabilities the script registers call back into that
// state. A Lua state is not safe for concurrent use, so a Script assumes
// its hooks, commands, renderers and event handlers run on one goroutine
// at a time.
type Script struct {
	manifest plugin.Manifest
	dir      string
	proto    *lua.FunctionProto
	factory  *StateFactory
	logger   *slog.Logger

	mu    sync.Mutex
	state *lua.LState
	bus   *eventbus.Bus
	subs  []eventbus.Subscription
}

// Compile-time interface check.
var _ plugin.Plugin = (*Script)(nil)

// Manifest implements plugin.Plugin.
func (s *Script) Manifest() plugin.Manifest { return s.manifest }

// Dir returns the directory the script was loaded from, or "" for scripts
// built from source.
func (s *Script) Dir() string { return s.dir }

// Running reports whether the script has a live Lua state.
func (s *Script) Running() bool {
	return s.current() != nil
}

// OnActivate runs the entry file in a new state and calls on_activate(ctx)
// if the script defines it. On failure the state is closed.
func (s *Script) OnActivate(ctx context.Context, pc *plugin.Context) error {
	L, err := s.factory.NewState(ctx)
	if err != nil {
		return oops.With("plugin", s.manifest.ID).Wrap(err)
	}
	s.attach(L, pc.EventBus())

	if _, err := s.call(ctx, L, "main chunk", L.NewFunctionFromProto(s.proto), 0); err != nil {
		s.teardown()
		return err
	}
	if err := s.callHook(ctx, L, hookActivate, s.contextTable(L, pc)); err != nil {
		s.teardown()
		return err
	}
	return nil
}

// OnDeactivate calls on_deactivate(ctx) if defined, then releases the
// script's event subscriptions and closes its state.
func (s *Script) OnDeactivate(ctx context.Context, pc *plugin.Context) error {
	L := s.current()
	if L == nil {
		return nil
	}
	err := s.callHook(ctx, L, hookDeactivate, s.contextTable(L, pc))
	s.teardown()
	return err
}

// OnSettingsChange calls on_settings_change(ctx, settings) if defined.
// Inactive scripts have no state and are not notified.
func (s *Script) OnSettingsChange(ctx context.Context, pc *plugin.Context, merged settings.Settings) error {
	L := s.current()
	if L == nil {
		return nil
	}
	return s.callHook(ctx, L, hookSettingsChange, s.contextTable(L, pc), toLua(L, merged))
}

func (s *Script) attach(L *lua.LState, bus *eventbus.Bus) {
	s.mu.Lock()
	old, oldBus, oldSubs := s.state, s.bus, s.subs
	s.state, s.bus, s.subs = L, bus, nil
	s.mu.Unlock()

	release(old, oldBus, oldSubs)
}

func (s *Script) teardown() {
	s.mu.Lock()
	L, bus, subs := s.state, s.bus, s.subs
	s.state, s.subs = nil, nil
	s.mu.Unlock()

	release(L, bus, subs)
}

func release(L *lua.LState, bus *eventbus.Bus, subs []eventbus.Subscription) {
	if bus != nil {
		for _, sub := range subs {
			bus.Off(sub)
		}
	}
	if L != nil {
		L.Close()
	}
}

func (s *Script) current() *lua.LState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Script) addSubscription(L *lua.LState, sub eventbus.Subscription) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != L {
		return false
	}
	s.subs = append(s.subs, sub)
	return true
}

// callHook calls a global hook function. Undefined hooks are no-ops.
func (s *Script) callHook(ctx context.Context, L *lua.LState, name string, args ...lua.LValue) error {
	fn := L.GetGlobal(name)
	if fn.Type() != lua.LTFunction {
		return nil
	}
	_, err := s.call(ctx, L, name, fn, 0, args...)
	return err
}

// callIn calls fn only if L is still the script's live state.
func (s *Script) callIn(ctx context.Context, L *lua.LState, what string, fn lua.LValue, nret int, args ...lua.LValue) ([]lua.LValue, error) {
	if s.current() != L {
		return nil, oops.Code(CodeScriptInactive).
			In("lua").
			With("plugin", s.manifest.ID).
			With("function", what).
			Errorf("script %s is not active", s.manifest.ID)
	}
	return s.call(ctx, L, what, fn, nret, args...)
}

// call invokes fn in L under ctx and returns exactly nret results.
func (s *Script) call(ctx context.Context, L *lua.LState, what string, fn lua.LValue, nret int, args ...lua.LValue) ([]lua.LValue, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	prev := L.Context()
	L.SetContext(ctx)
	defer func() {
		if prev != nil {
			L.SetContext(prev)
		} else {
			L.RemoveContext()
		}
	}()

	top := L.GetTop()
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    nret,
		Protect: true,
	}, args...); err != nil {
		return nil, oops.Code(CodeScriptError).
			In("lua").
			With("plugin", s.manifest.ID).
			With("function", what).
			Wrap(err)
	}

	rets := make([]lua.LValue, nret)
	for i := range rets {
		rets[i] = L.Get(top + 1 + i)
	}
	L.SetTop(top)
	return rets, nil
}
