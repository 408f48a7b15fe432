// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

// Package plugin implements the plugin lifecycle runtime: descriptors,
// scoped hook contexts, the installed-plugin registry and the Manager that
// drives install, activate, deactivate and toggle transitions.
package plugin

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/inkpad/inkpad/internal/settings"
)

// Manifest describes a plugin. Go plugins return one from Plugin.Manifest;
// script plugins declare one in plugin.yaml.
type Manifest struct {
	ID          string `yaml:"id" jsonschema:"pattern=^[a-z]([a-z0-9-]*[a-z0-9])?$,maxLength=64"`
	Name        string `yaml:"name" jsonschema:"minLength=1"`
	Version     string `yaml:"version" jsonschema:"minLength=1"`
	Description string `yaml:"description,omitempty"`
	// Host is a semver constraint on the runtime version, e.g. ">= 1.2, < 2".
	Host string `yaml:"host,omitempty"`
	// DefaultSettings seeds the settings record at install. It may be a
	// settings.Settings, a map, or a settings struct.
	DefaultSettings any `yaml:"default-settings,omitempty"`
	// SettingsSchema is an inline JSON Schema for the settings record.
	SettingsSchema map[string]any `yaml:"settings-schema,omitempty"`
	LuaPlugin      *LuaConfig     `yaml:"lua-plugin,omitempty"`

	// SettingsType is a zero value of the plugin's settings struct. Its
	// reflected schema is used when SettingsSchema is empty.
	SettingsType any `yaml:"-"`
	// SettingsComponent is passed through to the host UI untouched.
	SettingsComponent any `yaml:"-"`
}

// LuaConfig holds script plugin configuration.
type LuaConfig struct {
	Entry string `yaml:"entry" jsonschema:"minLength=1"`
}

// maxIDLength is the maximum allowed length for plugin ids.
const maxIDLength = 64

// idPattern validates plugin ids: must start with a lowercase letter,
// followed by lowercase letters, digits, or hyphens.
// Cannot end with a hyphen. Single character ids are allowed.
var idPattern = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)

// ParseManifest parses and validates a plugin.yaml file.
func ParseManifest(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, oops.Code(CodeInvalidManifest).In("plugin").Errorf("manifest data is empty")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, oops.Code(CodeInvalidManifest).In("plugin").Wrapf(err, "invalid YAML")
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.LuaPlugin == nil || m.LuaPlugin.Entry == "" {
		return nil, manifestError(m.ID, "lua-plugin.entry is required")
	}

	return &m, nil
}

// Validate checks manifest constraints.
func (m *Manifest) Validate() error {
	if m.ID == "" || !idPattern.MatchString(m.ID) {
		return manifestError(m.ID, fmt.Sprintf("id %q must start with a-z, contain only a-z, 0-9, hyphens, and not end with a hyphen", m.ID))
	}
	if len(m.ID) > maxIDLength {
		return manifestError(m.ID, fmt.Sprintf("id must be %d characters or less, got %d", maxIDLength, len(m.ID)))
	}
	if m.Name == "" {
		return manifestError(m.ID, "name is required")
	}
	if m.Version == "" {
		return manifestError(m.ID, "version is required")
	}
	if _, err := semver.StrictNewVersion(m.Version); err != nil {
		return oops.Code(CodeInvalidManifest).
			In("plugin").
			With("plugin", m.ID).
			With("version", m.Version).
			Wrapf(err, "version must be a semantic version")
	}
	if m.Host != "" {
		if _, err := semver.NewConstraint(m.Host); err != nil {
			return oops.Code(CodeInvalidManifest).
				In("plugin").
				With("plugin", m.ID).
				With("host", m.Host).
				Wrapf(err, "host must be a version constraint")
		}
	}
	return nil
}

// CheckHost reports whether the manifest accepts the given runtime version.
// Manifests without a host constraint accept every version.
func (m *Manifest) CheckHost(host *semver.Version) error {
	if m.Host == "" || host == nil {
		return nil
	}
	c, err := semver.NewConstraint(m.Host)
	if err != nil {
		return oops.Code(CodeInvalidManifest).In("plugin").With("plugin", m.ID).Wrap(err)
	}
	if ok, errs := c.Validate(host); !ok {
		b := oops.Code(CodeIncompatibleHost).
			In("plugin").
			With("plugin", m.ID).
			With("constraint", m.Host).
			With("host_version", host.String())
		if len(errs) > 0 {
			return b.Wrapf(errs[0], "plugin %s does not support host %s", m.ID, host)
		}
		return b.Errorf("plugin %s does not support host %s", m.ID, host)
	}
	return nil
}

// ResolveSchema returns the settings schema the manifest declares, or nil.
func (m *Manifest) ResolveSchema() (*settings.Schema, error) {
	switch {
	case len(m.SettingsSchema) > 0:
		s, err := settings.CompileSchema(m.SettingsSchema)
		return s, oopsWithPlugin(err, m.ID)
	case m.SettingsType != nil:
		s, err := settings.SchemaFor(m.SettingsType)
		return s, oopsWithPlugin(err, m.ID)
	default:
		return nil, nil
	}
}

// Defaults returns the declared default settings as a record, or nil.
func (m *Manifest) Defaults() (settings.Settings, error) {
	s, err := settings.From(m.DefaultSettings)
	return s, oopsWithPlugin(err, m.ID)
}

func manifestError(id, reason string) error {
	return oops.Code(CodeInvalidManifest).
		In("plugin").
		With("plugin", id).
		Errorf("invalid manifest: %s", reason)
}

func oopsWithPlugin(err error, id string) error {
	if err == nil {
		return nil
	}
	return oops.With("plugin", id).Wrap(err)
}
