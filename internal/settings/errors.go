// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package settings

// Error codes for settings failures.
const (
	CodeSettingsInvalid    = "SETTINGS_INVALID"
	CodeSettingsHookFailed = "SETTINGS_HOOK_FAILED"
	CodeInvalidSchema      = "INVALID_SETTINGS_SCHEMA"
)
