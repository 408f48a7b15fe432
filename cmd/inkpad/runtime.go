// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package main

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/Masterminds/semver/v3"

	"github.com/inkpad/inkpad/internal/config"
	"github.com/inkpad/inkpad/internal/eventbus"
	"github.com/inkpad/inkpad/internal/plugin"
	luaplugin "github.com/inkpad/inkpad/internal/plugin/lua"
	"github.com/inkpad/inkpad/internal/plugins"
	"github.com/inkpad/inkpad/internal/settings"
)

// Plugin sources shown by "plugins list".
const (
	sourceBuiltin = "builtin"
	sourceScript  = "script"
)

// runtime is an assembled plugin host.
type runtime struct {
	bus      *eventbus.Bus
	manager  *plugin.Manager
	sources  map[string]string
	failures atomic.Int64
	ready    atomic.Bool
}

// hostVersion returns the build version for manifest host checks, or nil
// for development builds.
func hostVersion() *semver.Version {
	v, err := semver.NewVersion(version)
	if err != nil {
		return nil
	}
	return v
}

func newRuntime(cfg *config.Config, logger *slog.Logger) *runtime {
	bus := eventbus.New(eventbus.WithLogger(logger))
	rt := &runtime{
		bus: bus,
		manager: plugin.NewManager(bus,
			plugin.WithLogger(logger),
			plugin.WithHostVersion(hostVersion()),
			plugin.WithHookTimeout(cfg.Plugins.HookTimeout),
		),
		sources: make(map[string]string),
	}
	bus.On(eventbus.PluginError, func(context.Context, eventbus.Event) {
		rt.failures.Add(1)
	})
	return rt
}

// start installs the built-in plugins followed by the script plugins found
// in the configured directory, applies configured settings and deactivates
// disabled plugins.
func (rt *runtime) start(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	for _, p := range plugins.Builtin() {
		rt.install(ctx, cfg, p, sourceBuiltin)
	}

	loader := luaplugin.NewLoader(luaplugin.WithLogger(logger))
	scripts, err := loader.Discover(ctx, cfg.Plugins.Dir)
	if err != nil {
		return err
	}
	for _, s := range scripts {
		rt.install(ctx, cfg, s, sourceScript)
	}

	rt.ready.Store(true)
	logger.InfoContext(ctx, "plugin runtime started",
		"installed", len(rt.manager.Plugins()),
		"active", rt.activeCount(),
		"failures", rt.failures.Load(),
		"plugins_dir", cfg.Plugins.Dir)
	return nil
}

func (rt *runtime) install(ctx context.Context, cfg *config.Config, p plugin.Plugin, source string) {
	id := p.Manifest().ID
	// Rejections are already logged and announced on the bus.
	if err := rt.manager.Install(ctx, p); err != nil {
		return
	}
	rt.sources[id] = source

	if values, ok := cfg.Plugins.Settings[id]; ok {
		rt.manager.UpdateSettings(ctx, id, settings.Settings(values))
	}
	if cfg.IsDisabled(id) {
		rt.manager.Deactivate(ctx, id)
	}
}

func (rt *runtime) activeCount() int {
	n := 0
	for _, info := range rt.manager.Plugins() {
		if info.Active {
			n++
		}
	}
	return n
}

// isReady is the observability readiness probe.
func (rt *runtime) isReady() bool {
	return rt.ready.Load()
}
