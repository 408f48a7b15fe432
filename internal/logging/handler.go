// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

// Package logging provides structured logging with OpenTelemetry trace
// context and plugin attribution.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel/trace"
)

type pluginKey struct{}

// WithPlugin returns a context whose log records are attributed to pluginID.
func WithPlugin(ctx context.Context, pluginID string) context.Context {
	return context.WithValue(ctx, pluginKey{}, pluginID)
}

// PluginFromContext returns the plugin id set by WithPlugin, if any.
func PluginFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(pluginKey{}).(string)
	return id, ok && id != ""
}

// runtimeHandler wraps a slog.Handler to add service, trace and plugin attributes.
type runtimeHandler struct {
	handler slog.Handler
	service string
	version string
}

// Handle adds runtime context to the log record.
func (h *runtimeHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(
		slog.String("service", h.service),
		slog.String("version", h.version),
	)

	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.HasTraceID() {
		r.AddAttrs(slog.String("trace_id", spanCtx.TraceID().String()))
	}
	if spanCtx.HasSpanID() {
		r.AddAttrs(slog.String("span_id", spanCtx.SpanID().String()))
	}
	if id, ok := PluginFromContext(ctx); ok {
		r.AddAttrs(slog.String("plugin", id))
	}

	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.handler.Handle(ctx, r)
}

// Enabled returns true if the level is enabled.
func (h *runtimeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// WithAttrs returns a new handler with the given attributes.
func (h *runtimeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &runtimeHandler{
		handler: h.handler.WithAttrs(attrs),
		service: h.service,
		version: h.version,
	}
}

// WithGroup returns a new handler with the given group.
func (h *runtimeHandler) WithGroup(name string) slog.Handler {
	return &runtimeHandler{
		handler: h.handler.WithGroup(name),
		service: h.service,
		version: h.version,
	}
}

// ParseLevel parses "debug", "info", "warn" or "error" (case-insensitive).
// An empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, oops.In("logging").With("level", s).Wrapf(err, "invalid log level")
	}
	return level, nil
}

// Setup creates a configured slog.Logger.
// format: "json" or "text" (defaults to "json" if empty)
// If w is nil, writes to os.Stderr.
func Setup(service, version, format string, level slog.Level, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}

	var base slog.Handler
	if format == "text" {
		base = slog.NewTextHandler(w, opts)
	} else {
		base = slog.NewJSONHandler(w, opts)
	}

	return slog.New(&runtimeHandler{
		handler: base,
		service: service,
		version: version,
	})
}

// SetDefault sets up the default logger and returns it.
func SetDefault(service, version, format string, level slog.Level) *slog.Logger {
	logger := Setup(service, version, format, level, nil)
	slog.SetDefault(logger)
	return logger
}
