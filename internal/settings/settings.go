// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

// Package settings holds per-plugin configuration records.
//
// A record is seeded from the plugin's declared defaults at install time and
// changed only through shallow merges: keys absent from an update keep their
// previous values. Records live for the process lifetime.
package settings

import (
	"encoding/json"
	"maps"

	"github.com/samber/oops"
)

// Settings is a plugin's configuration record.
type Settings map[string]any

// Clone returns a shallow copy. The copy of a nil record is an empty record.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	maps.Copy(out, s)
	return out
}

// Merge returns a new record holding current overlaid with partial.
// Neither argument is modified.
func Merge(current, partial Settings) Settings {
	merged := current.Clone()
	maps.Copy(merged, partial)
	return merged
}

// From converts a settings struct (or any JSON-encodable value with object
// shape) into a record.
func From(v any) (Settings, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(Settings); ok {
		return s.Clone(), nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, oops.In("settings").Wrapf(err, "encoding settings value %T", v)
	}
	var out Settings
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, oops.In("settings").Wrapf(err, "settings value %T is not an object", v)
	}
	return out, nil
}

// Decode converts a record into the plugin's settings struct.
func Decode[T any](s Settings) (T, error) {
	var out T
	raw, err := json.Marshal(s)
	if err != nil {
		return out, oops.In("settings").Wrapf(err, "encoding settings")
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, oops.In("settings").Wrapf(err, "decoding settings into %T", out)
	}
	return out, nil
}
