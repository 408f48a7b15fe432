// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package plugin

// Error codes for plugin lifecycle failures.
const (
	CodeActivationFailed   = "ACTIVATION_FAILED"
	CodeDeactivationFailed = "DEACTIVATION_FAILED"
	CodeInvalidManifest    = "INVALID_MANIFEST"
	CodeIncompatibleHost   = "INCOMPATIBLE_HOST"
	CodeHookPanic          = "HOOK_PANIC"
	CodeCommandNotFound    = "COMMAND_NOT_FOUND"
	CodePluginInactive     = "PLUGIN_INACTIVE"
)
