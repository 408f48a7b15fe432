// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpad/inkpad/pkg/errutil"
)

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("ACTIVATION_FAILED").
		In("plugin").
		With("plugin", "math").
		Hint("check on_activate").
		Errorf("hook failed")

	errutil.LogError(logger, "plugin failure", err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "plugin failure", entry["msg"])
	assert.Equal(t, "ACTIVATION_FAILED", entry["code"])
	assert.Equal(t, "plugin", entry["domain"])
	assert.Equal(t, "check on_activate", entry["hint"])
	require.Contains(t, entry, "context")
	assert.Equal(t, "math", entry["context"].(map[string]any)["plugin"])
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(logger, "plugin failure", errors.New("standard error"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Contains(t, entry["error"], "standard error")
	assert.NotContains(t, entry, "code")
}

func TestCode(t *testing.T) {
	assert.Equal(t, "", errutil.Code(nil))
	assert.Equal(t, "", errutil.Code(errors.New("plain")))
	assert.Equal(t, "", errutil.Code(oops.Errorf("no code")))
	assert.Equal(t, "X", errutil.Code(oops.Code("X").Errorf("coded")))
}

func TestAssertErrorCode(t *testing.T) {
	err := oops.Code("SETTINGS_INVALID").With("plugin", "alpha").Errorf("bad settings")
	errutil.AssertErrorCode(t, err, "SETTINGS_INVALID")
	errutil.AssertErrorContext(t, err, "plugin", "alpha")
}
