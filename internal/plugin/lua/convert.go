// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/inkpad/inkpad/internal/capability"
	"github.com/inkpad/inkpad/internal/eventbus"
	"github.com/inkpad/inkpad/internal/settings"
)

// toLua converts a Go value into a Lua value. Maps become tables keyed by
// string, slices become sequences. Unknown types are passed as their
// fmt.Sprint form.
func toLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return val
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case int:
		return lua.LNumber(val)
	case int32:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint:
		return lua.LNumber(val)
	case uint64:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case error:
		return lua.LString(val.Error())
	case settings.Settings:
		return mapToLua(L, val)
	case capability.Node:
		return mapToLua(L, val)
	case map[string]any:
		return mapToLua(L, val)
	case map[string]string:
		t := L.NewTable()
		for k, s := range val {
			t.RawSetString(k, lua.LString(s))
		}
		return t
	case []any:
		t := L.NewTable()
		for _, e := range val {
			t.Append(toLua(L, e))
		}
		return t
	case []string:
		t := L.NewTable()
		for _, e := range val {
			t.Append(lua.LString(e))
		}
		return t
	case eventbus.PluginErrorPayload:
		t := L.NewTable()
		t.RawSetString("plugin_id", lua.LString(val.PluginID))
		if val.Err != nil {
			t.RawSetString("error", lua.LString(val.Err.Error()))
		}
		return t
	case eventbus.SettingsUpdatedPayload:
		t := L.NewTable()
		t.RawSetString("plugin_id", lua.LString(val.PluginID))
		t.RawSetString("settings", mapToLua(L, val.Settings))
		return t
	default:
		return lua.LString(fmt.Sprint(val))
	}
}

func mapToLua[M ~map[string]any](L *lua.LState, m M) *lua.LTable {
	t := L.NewTable()
	for k, e := range m {
		t.RawSetString(k, toLua(L, e))
	}
	return t
}

// fromLua converts a Lua value into a Go value. Tables whose keys are
// exactly 1..n become []any; other tables become map[string]any. Numbers
// are float64. Functions and userdata convert to nil.
func fromLua(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LString:
		return string(val)
	case lua.LNumber:
		return float64(val)
	case *lua.LTable:
		return tableFromLua(val)
	default:
		return nil
	}
}

func tableFromLua(t *lua.LTable) any {
	n := t.MaxN()
	count := 0
	t.ForEach(func(lua.LValue, lua.LValue) { count++ })

	if n > 0 && n == count {
		out := make([]any, 0, n)
		for i := 1; i <= n; i++ {
			out = append(out, fromLua(t.RawGetInt(i)))
		}
		return out
	}

	out := make(map[string]any, count)
	t.ForEach(func(k, e lua.LValue) {
		out[k.String()] = fromLua(e)
	})
	return out
}

// settingsFromLua converts a table into a settings record.
func settingsFromLua(t *lua.LTable) settings.Settings {
	out := settings.Settings{}
	t.ForEach(func(k, e lua.LValue) {
		out[k.String()] = fromLua(e)
	})
	return out
}

// stringMap converts a table of string values, ignoring other entries.
func stringMap(t *lua.LTable) map[string]string {
	if t == nil {
		return nil
	}
	out := make(map[string]string)
	t.ForEach(func(k, e lua.LValue) {
		if s, ok := e.(lua.LString); ok {
			out[k.String()] = string(s)
		}
	})
	return out
}
