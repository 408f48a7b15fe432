// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package eventbus

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EventsEmitted counts Emit calls by event name.
// Use RegisterMetrics to register this with a Prometheus registry.
var EventsEmitted = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inkpad_events_emitted_total",
		Help: "Total number of events emitted on the bus",
	},
	[]string{"event"},
)

// HandlerPanics counts recovered handler panics by event name.
var HandlerPanics = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inkpad_event_handler_panics_total",
		Help: "Total number of event handlers that panicked",
	},
	[]string{"event"},
)

// RegisterMetrics registers event bus metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(EventsEmitted)
	reg.MustRegister(HandlerPanics)
}
