// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

// Package eventbus is the process-wide publish/subscribe channel shared by
// the host UI, the plugin runtime and plugins.
//
// Delivery is synchronous: Emit runs every handler subscribed to the event
// name, in subscription order, on the caller's goroutine, and returns once
// they have all returned. Handlers that start asynchronous work are not
// awaited. There is no replay and no wildcard subscription. A handler added
// while an Emit is in flight does not receive that event.
package eventbus
