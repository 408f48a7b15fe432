// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const greeterManifest = `
id: greeter
name: Greeter
version: 0.3.0
default-settings:
  greeting: hello
lua-plugin:
  entry: main.lua
`

const greeterSource = `
function on_activate(ctx)
  ctx.register_command{
    id = "greet",
    name = "Greet",
    execute = function()
      ctx.emit("editor:insert", ctx.get_settings().greeting)
    end,
  }
end
`

func writeScriptPlugin(t *testing.T, root, dir, manifest, source string) string {
	t.Helper()
	pluginDir := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(pluginDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(pluginDir, "plugin.yaml"), []byte(manifest), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(pluginDir, "main.lua"), []byte(source), 0o600))
	return pluginDir
}

// execute runs the root command with args and an isolated XDG config home.
func execute(t *testing.T, ctx context.Context, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

// syncBuffer is a bytes.Buffer safe for a logger writing from another goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
