// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package plugin

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Transition names used as metric labels.
const (
	transitionActivate   = "activate"
	transitionDeactivate = "deactivate"

	statusSuccess = "success"
	statusFailure = "failure"
)

// Hook names used as span names and metric labels.
const (
	hookActivate       = "on_activate"
	hookDeactivate     = "on_deactivate"
	hookSettingsChange = "on_settings_change"
)

// PluginTransitions counts lifecycle transitions by plugin, transition and outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var PluginTransitions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inkpad_plugin_transitions_total",
		Help: "Total number of plugin lifecycle transitions",
	},
	[]string{"plugin", "transition", "status"},
)

// HookDuration tracks hook execution time.
var HookDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "inkpad_plugin_hook_duration_seconds",
		Help:    "Plugin hook execution duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"plugin", "hook"},
)

// PluginsActive is the number of currently active plugins.
var PluginsActive = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "inkpad_plugins_active",
		Help: "Number of currently active plugins",
	},
)

// RegisterMetrics registers plugin metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(PluginTransitions)
	reg.MustRegister(HookDuration)
	reg.MustRegister(PluginsActive)
}
