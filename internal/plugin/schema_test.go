// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package plugin_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpad/inkpad/internal/plugin"
	"github.com/inkpad/inkpad/pkg/errutil"
)

func TestGenerateSchema(t *testing.T) {
	data, err := plugin.GenerateSchema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, plugin.SchemaID, doc["$id"])
	assert.Equal(t, "Inkpad Plugin Manifest", doc["title"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok, "schema has no properties")
	for _, key := range []string{"id", "name", "version", "description", "host", "default-settings", "settings-schema", "lua-plugin"} {
		assert.Contains(t, props, key)
	}
	assert.NotContains(t, props, "SettingsType")
	assert.NotContains(t, props, "SettingsComponent")

	id, ok := props["id"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "^[a-z]([a-z0-9-]*[a-z0-9])?$", id["pattern"])
	assert.EqualValues(t, 64, id["maxLength"])
}

func TestValidateSchema(t *testing.T) {
	valid := `
id: clock
name: Clock
version: 0.1.0
settings-schema:
  type: object
  properties:
    format:
      type: string
default-settings:
  format: "15:04"
lua-plugin:
  entry: main.lua
`
	require.NoError(t, plugin.ValidateSchema([]byte(valid)))

	tests := []struct {
		name string
		yaml string
	}{
		{name: "empty", yaml: ""},
		{name: "not yaml", yaml: "id: [oops"},
		{name: "missing id", yaml: "name: Clock\nversion: 0.1.0\n"},
		{name: "bad id", yaml: "id: Clock\nname: Clock\nversion: 0.1.0\n"},
		{name: "unknown field", yaml: "id: clock\nname: Clock\nversion: 0.1.0\ncolour: red\n"},
		{name: "entry not a string", yaml: "id: clock\nname: Clock\nversion: 0.1.0\nlua-plugin:\n  entry: 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := plugin.ValidateSchema([]byte(tt.yaml))
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, plugin.CodeInvalidManifest)
		})
	}
}

func TestFormatSchemaError(t *testing.T) {
	assert.Empty(t, plugin.FormatSchemaError(nil))
	assert.Equal(t, "missing id", plugin.FormatSchemaError(errors.New("schema validation failed: missing id")))
	assert.Equal(t, "other", plugin.FormatSchemaError(errors.New("other")))
}
