// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package capability

import "github.com/samber/oops"

// Error codes for capability registration and lookup.
const (
	CodeInvalidEntry    = "INVALID_CAPABILITY"
	CodeInvalidKey      = "INVALID_QUALIFIED_ID"
	CodeInvalidPattern  = "INVALID_PATTERN"
	CodeInvalidShortcut = "INVALID_SHORTCUT"
)

func errInvalidEntry(kind, id, reason string) error {
	return oops.Code(CodeInvalidEntry).
		In("capability").
		With("kind", kind).
		With("id", id).
		Errorf("invalid %s %q: %s", kind, id, reason)
}
