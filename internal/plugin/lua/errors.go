// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package lua

// Error codes for script plugins.
const (
	// CodeScriptError marks a Lua runtime error raised by a script.
	CodeScriptError = "SCRIPT_ERROR"
	// CodeScriptLoad marks a script that could not be read or compiled.
	CodeScriptLoad = "SCRIPT_LOAD_FAILED"
	// CodeScriptInactive marks a call into a script whose state is closed.
	CodeScriptInactive = "SCRIPT_INACTIVE"
)
