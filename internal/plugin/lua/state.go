// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

// Package lua runs script plugins: a plugin.yaml manifest plus a Lua entry
// file, adapted to the plugin.Plugin contract.
package lua

import (
	"context"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"
)

// library is a Lua standard library opened in every script state.
type library struct {
	name string
	fn   lua.LGFunction
}

// defaultLibraries returns the libraries scripts get: base, table, string, math.
// os, io, debug and package are not opened.
func defaultLibraries() []library {
	return []library{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
}

// StateFactory creates Lua states for script plugins.
type StateFactory struct {
	// libraries allows overriding the default libraries for testing.
	libraries []library
}

// NewStateFactory creates a new state factory.
func NewStateFactory() *StateFactory {
	return &StateFactory{
		libraries: defaultLibraries(),
	}
}

// chunkLoaders are base functions that load code from files or strings.
// A script is a single compiled entry file, so they are removed.
var chunkLoaders = []string{"dofile", "loadfile", "loadstring", "load", "require"}

// NewState creates a fresh Lua state with the default libraries loaded and
// the chunk loaders removed. Library setup runs under ctx.
func (f *StateFactory) NewState(ctx context.Context) (*lua.LState, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	if ctx != nil {
		L.SetContext(ctx)
		defer L.RemoveContext()
	}

	for _, lib := range f.libraries {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, oops.Code(CodeScriptError).
				In("lua").
				With("library", lib.name).
				Wrapf(err, "failed to open library %s", lib.name)
		}
	}

	for _, fn := range chunkLoaders {
		L.SetGlobal(fn, lua.LNil)
	}

	return L, nil
}
