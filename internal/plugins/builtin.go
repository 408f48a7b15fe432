// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

// Package plugins bundles the built-in plugins.
package plugins

import (
	"github.com/inkpad/inkpad/internal/plugin"
	"github.com/inkpad/inkpad/internal/plugins/base"
	"github.com/inkpad/inkpad/internal/plugins/darktheme"
	"github.com/inkpad/inkpad/internal/plugins/math"
)

// Builtin returns fresh instances of the built-in plugins in install order.
func Builtin() []plugin.Plugin {
	return []plugin.Plugin{
		base.New(),
		darktheme.New(),
		math.New(),
	}
}
