// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package lua_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpad/inkpad/internal/plugin"
	pluginlua "github.com/inkpad/inkpad/internal/plugin/lua"
	"github.com/inkpad/inkpad/pkg/errutil"
)

func mkdirAll(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o750))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func writePlugin(t *testing.T, root, dir, manifest, source string) string {
	t.Helper()
	pluginDir := filepath.Join(root, dir)
	mkdirAll(t, pluginDir)
	writeFile(t, filepath.Join(pluginDir, pluginlua.ManifestFile), manifest)
	if source != "" {
		writeFile(t, filepath.Join(pluginDir, "main.lua"), source)
	}
	return pluginDir
}

const clockManifest = `
id: clock
name: Clock
version: 1.0.0
description: Inserts the time
default-settings:
  format: "15:04"
settings-schema:
  type: object
  properties:
    format:
      type: string
lua-plugin:
  entry: main.lua
`

func TestLoader_Load(t *testing.T) {
	root := t.TempDir()
	dir := writePlugin(t, root, "clock", clockManifest, `function on_activate(ctx) end`)

	s, err := pluginlua.NewLoader().Load(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, s.Dir())
	mf := s.Manifest()
	assert.Equal(t, "clock", mf.ID)
	assert.Equal(t, "Inserts the time", mf.Description)
	assert.Equal(t, map[string]any{"format": "15:04"}, mf.DefaultSettings)
	assert.False(t, s.Running())
}

func TestLoader_LoadErrors(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name     string
		manifest string
		source   string
		code     string
	}{
		{
			name:     "schema violation",
			manifest: "id: clock\nname: Clock\nversion: 1.0.0\nflavour: mint\nlua-plugin:\n  entry: main.lua\n",
			source:   "local x = 1",
			code:     plugin.CodeInvalidManifest,
		},
		{
			name:     "missing entry file",
			manifest: clockManifest,
			code:     pluginlua.CodeScriptLoad,
		},
		{
			name:     "entry escapes directory",
			manifest: "id: clock\nname: Clock\nversion: 1.0.0\nlua-plugin:\n  entry: ../main.lua\n",
			source:   "local x = 1",
			code:     pluginlua.CodeScriptLoad,
		},
		{
			name:     "syntax error",
			manifest: clockManifest,
			source:   "function (",
			code:     pluginlua.CodeScriptLoad,
		},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writePlugin(t, root, "case"+string(rune('a'+i)), tt.manifest, tt.source)
			_, err := pluginlua.NewLoader().Load(dir)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.code)
		})
	}

	t.Run("missing manifest", func(t *testing.T) {
		dir := filepath.Join(root, "empty")
		mkdirAll(t, dir)
		_, err := pluginlua.NewLoader().Load(dir)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, pluginlua.CodeScriptLoad)
	})
}

func TestLoader_Discover(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "b-clock", clockManifest, `function on_activate(ctx) end`)
	writePlugin(t, root, "a-broken", "id: Broken\n", "")
	writePlugin(t, root, "c-echo", "id: echo\nname: Echo\nversion: 0.2.0\nlua-plugin:\n  entry: main.lua\n", `local x = 1`)
	writeFile(t, filepath.Join(root, "README.md"), "not a plugin")

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	scripts, err := pluginlua.NewLoader(pluginlua.WithLogger(logger)).Discover(context.Background(), root)
	require.NoError(t, err)

	var ids []string
	for _, s := range scripts {
		ids = append(ids, s.Manifest().ID)
	}
	assert.Equal(t, []string{"clock", "echo"}, ids)
	assert.Contains(t, logs.String(), "skipping invalid script plugin")
	assert.Contains(t, logs.String(), "a-broken")
}

func TestLoader_DiscoverMissingDir(t *testing.T) {
	scripts, err := pluginlua.NewLoader().Discover(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, scripts)
}

func TestLoader_DiscoveredScriptRuns(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "clock", clockManifest, `
function on_activate(ctx)
  ctx.register_command{id = "now", execute = function()
    ctx.emit("editor:insert", ctx.get_settings().format)
  end}
end
`)
	scripts, err := pluginlua.NewLoader().Discover(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, scripts, 1)

	m := plugin.NewManager(nil)
	inserts := collect(m.EventBus(), "editor:insert")
	require.NoError(t, m.Install(context.Background(), scripts[0]))

	require.NoError(t, m.ExecuteCommand(context.Background(), "clock:now"))
	require.Len(t, *inserts, 1)
	assert.Equal(t, "15:04", (*inserts)[0].Payload)

	m.UpdateSettings(context.Background(), "clock", map[string]any{"format": 12})
	assert.Equal(t, "15:04", m.Settings("clock")["format"], "schema rejects a numeric format")
}

func TestBundledPlugins(t *testing.T) {
	ctx := context.Background()
	scripts, err := pluginlua.NewLoader().Discover(ctx, filepath.Join("..", "..", "..", "plugins"))
	require.NoError(t, err)
	require.Len(t, scripts, 1)
	require.Equal(t, "word-count", scripts[0].Manifest().ID)

	m := plugin.NewManager(nil)
	errs := collect(m.EventBus(), "plugin:error")
	inserts := collect(m.EventBus(), "editor:insert")
	require.NoError(t, m.Install(ctx, scripts[0]))
	require.True(t, m.IsActive("word-count"))

	m.EventBus().Emit(ctx, "doc:changed", "one two  three\nfour")
	assert.EqualValues(t, 4, m.Settings("word-count")["words"])

	items := m.Toolbar().OwnedBy("word-count")
	require.Len(t, items, 1)
	assert.Equal(t, "4 words", items[0].Entry.Render())

	require.NoError(t, m.ExecuteCommand(ctx, "word-count:insert-count"))
	require.Len(t, *inserts, 1)
	assert.Equal(t, "4 words", (*inserts)[0].Payload)

	m.Deactivate(ctx, "word-count")
	m.EventBus().Emit(ctx, "doc:changed", "ignored now")
	assert.EqualValues(t, 4, m.Settings("word-count")["words"], "subscription released on deactivate")
	assert.Empty(t, *errs)
}
