// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

// Package capability holds the namespaced registries plugins contribute to:
// commands, content renderers, themes and toolbar items.
//
// Every entry is keyed by the owning plugin id plus the plugin-local entry
// id, so two plugins can use the same local id without colliding while a
// plugin re-registering one of its own ids replaces the earlier entry.
// Registries preserve registration order; a replaced entry keeps its slot.
//
// Lookups by pattern use gobwas/glob over qualified ids ("owner:id") with
// ':' as the separator:
//   - "math:*" matches every entry owned by the math plugin
//   - "*:heading" matches the heading entry of any owner
package capability
