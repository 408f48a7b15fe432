// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package lua

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/inkpad/inkpad/internal/plugin"
)

// ManifestFile is the manifest file name in a script plugin directory.
const ManifestFile = "plugin.yaml"

// Loader reads script plugins from disk.
type Loader struct {
	factory *StateFactory
	logger  *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used by loaded scripts and discovery warnings.
func WithLogger(l *slog.Logger) LoaderOption {
	return func(ld *Loader) {
		ld.logger = l
	}
}

// WithStateFactory overrides the Lua state factory.
func WithStateFactory(f *StateFactory) LoaderOption {
	return func(ld *Loader) {
		ld.factory = f
	}
}

// NewLoader creates a script loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		factory: NewStateFactory(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads dir/plugin.yaml, validates it and compiles its Lua entry.
func (l *Loader) Load(dir string) (*Script, error) {
	manifestPath := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(filepath.Clean(manifestPath))
	if err != nil {
		return nil, oops.Code(CodeScriptLoad).
			In("lua").
			With("path", manifestPath).
			Hint("a script plugin directory must contain " + ManifestFile).
			Wrap(err)
	}

	if err := plugin.ValidateSchema(data); err != nil {
		return nil, oops.With("path", manifestPath).Wrap(err)
	}
	m, err := plugin.ParseManifest(data)
	if err != nil {
		return nil, oops.With("path", manifestPath).Wrap(err)
	}

	entry := m.LuaPlugin.Entry
	if !filepath.IsLocal(entry) {
		return nil, oops.Code(CodeScriptLoad).
			In("lua").
			With("plugin", m.ID).
			With("entry", entry).
			Errorf("entry must be a relative path inside the plugin directory")
	}
	entryPath := filepath.Join(dir, entry)
	code, err := os.ReadFile(filepath.Clean(entryPath))
	if err != nil {
		return nil, oops.Code(CodeScriptLoad).
			In("lua").
			With("plugin", m.ID).
			With("path", entryPath).
			Hint("failed to read entry file").
			Wrap(err)
	}

	s, err := l.FromSource(*m, string(code))
	if err != nil {
		return nil, oops.With("path", entryPath).Wrap(err)
	}
	s.dir = dir
	return s, nil
}

// FromSource compiles a script plugin from a manifest and Lua source.
func (l *Loader) FromSource(m plugin.Manifest, source string) (*Script, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	name := m.ID
	if m.LuaPlugin != nil && m.LuaPlugin.Entry != "" {
		name = m.LuaPlugin.Entry
	}
	proto, err := compile(source, name)
	if err != nil {
		return nil, oops.With("plugin", m.ID).Wrap(err)
	}
	return &Script{
		manifest: m,
		proto:    proto,
		factory:  l.factory,
		logger:   l.logger,
	}, nil
}

// Discover loads every script plugin under pluginsDir, one per
// subdirectory, in directory name order. Invalid plugins are logged and
// skipped. A missing pluginsDir yields no plugins.
func (l *Loader) Discover(ctx context.Context, pluginsDir string) ([]*Script, error) {
	entries, err := os.ReadDir(pluginsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, oops.Code(CodeScriptLoad).In("lua").With("dir", pluginsDir).Wrapf(err, "read plugins directory")
	}

	var scripts []*Script
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return scripts, oops.In("lua").Wrap(err)
		}

		s, err := l.Load(filepath.Join(pluginsDir, entry.Name()))
		if err != nil {
			l.logger.WarnContext(ctx, "skipping invalid script plugin",
				"dir", entry.Name(),
				"error", err)
			continue
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}

func compile(source, name string) (*lua.FunctionProto, error) {
	chunk, err := parse.Parse(strings.NewReader(source), name)
	if err != nil {
		return nil, oops.Code(CodeScriptLoad).In("lua").With("entry", name).Hint("syntax error").Wrap(err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, oops.Code(CodeScriptLoad).In("lua").With("entry", name).Wrap(err)
	}
	return proto, nil
}
