// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpad/inkpad/internal/capability"
	"github.com/inkpad/inkpad/internal/config"
	"github.com/inkpad/inkpad/internal/eventbus"
	"github.com/inkpad/inkpad/internal/observability"
)

func testConfig(t *testing.T, pluginsDir string) *config.Config {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Plugins.Dir = pluginsDir
	return cfg
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRuntime_StartInstallsBuiltinsThenScripts(t *testing.T) {
	dir := t.TempDir()
	writeScriptPlugin(t, dir, "greeter", greeterManifest, greeterSource)
	cfg := testConfig(t, dir)
	cfg.Plugins.Settings = map[string]map[string]any{
		"greeter": {"greeting": "hi"},
		"math":    {"defaultDelimiter": "brackets"},
	}
	cfg.Plugins.Disabled = []string{"dark-theme"}

	rt := newRuntime(cfg, discard())
	assert.False(t, rt.isReady())
	require.NoError(t, rt.start(context.Background(), cfg, discard()))
	assert.True(t, rt.isReady())

	var ids []string
	for _, info := range rt.manager.Plugins() {
		ids = append(ids, info.Manifest.ID)
	}
	assert.Equal(t, []string{"base", "dark-theme", "math", "greeter"}, ids)
	assert.Equal(t, sourceBuiltin, rt.sources["math"])
	assert.Equal(t, sourceScript, rt.sources["greeter"])

	assert.False(t, rt.manager.IsActive("dark-theme"))
	assert.Empty(t, rt.manager.Themes().OwnedBy("dark-theme"))
	assert.Equal(t, "brackets", rt.manager.Settings("math")["defaultDelimiter"])

	var inserted []any
	rt.bus.On(eventbus.EditorInsert, func(_ context.Context, ev eventbus.Event) {
		inserted = append(inserted, ev.Payload)
	})
	require.NoError(t, rt.manager.ExecuteCommand(context.Background(), "greeter:greet"))
	assert.Equal(t, []any{"hi"}, inserted)

	_, ok := rt.manager.Commands().Get(capability.Key{Owner: "greeter", ID: "greet"})
	assert.True(t, ok)
	assert.Zero(t, rt.failures.Load())
}

func TestRuntime_CountsFailures(t *testing.T) {
	dir := t.TempDir()
	writeScriptPlugin(t, dir, "greeter", greeterManifest, `function on_activate(ctx) error("nope") end`)
	cfg := testConfig(t, dir)

	rt := newRuntime(cfg, discard())
	require.NoError(t, rt.start(context.Background(), cfg, discard()))

	assert.False(t, rt.manager.IsActive("greeter"))
	assert.Equal(t, int64(1), rt.failures.Load())
	assert.Equal(t, 3, rt.activeCount())
}

func TestRunRuntime_ShutsDownOnCancel(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	logs := &syncBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runRuntime(ctx, cfg, logger) }()

	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "plugin runtime started")
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runtime did not stop")
	}
	assert.Contains(t, logs.String(), "shutting down plugin runtime")
	assert.Contains(t, logs.String(), "plugin deactivated")
}

func TestRunRuntime_WithMetricsServer(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.Metrics.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- runRuntime(ctx, cfg, discard()) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runtime did not stop")
	}
}

func TestRunRuntime_BadMetricsAddr(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.Metrics.Addr = "not-an-address"

	err := runRuntime(context.Background(), cfg, discard())
	require.Error(t, err)
}

func TestStartObservability_RetriesUntilAddressFrees(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()

	obs := observability.NewServer(addr, nil)
	go func() {
		time.Sleep(bindBackoff / 2)
		_ = listener.Close()
	}()

	errCh, err := startObservability(context.Background(), obs, discard())
	require.NoError(t, err)
	require.NotNil(t, errCh)
	assert.Equal(t, addr, obs.Addr())
	require.NoError(t, obs.Stop(context.Background()))
}
