// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/inkpad/inkpad/pkg/errutil"
)

// Handler receives events. It runs on the emitter's goroutine.
type Handler func(ctx context.Context, ev Event)

// Subscription identifies one registered handler. It is the token passed to Off.
type Subscription struct {
	id   ulid.ULID
	name string
}

// Name returns the event name the subscription listens on.
func (s Subscription) Name() string { return s.name }

// ID returns the unique subscription id.
func (s Subscription) ID() ulid.ULID { return s.id }

type subscriber struct {
	id      ulid.ULID
	handler Handler
}

// Publisher is the emitting half of a Bus.
type Publisher interface {
	Emit(ctx context.Context, name string, payload any)
	ReportError(ctx context.Context, pluginID string, err error)
}

// Compile-time interface check.
var _ Publisher = (*Bus)(nil)

// Bus is a synchronous, in-order publish/subscribe channel.
// It is safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]subscriber
	logger *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for handler panics and error reports.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = l
	}
}

// New creates an event bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		subs:   make(map[string][]subscriber),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// On subscribes h to the named event. Handlers run in subscription order.
func (b *Bus) On(name string, h Handler) Subscription {
	sub := subscriber{id: newID(), handler: h}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[name] = append(b.subs[name], sub)

	return Subscription{id: sub.id, name: name}
}

// Off removes a subscription. It reports whether the subscription was present.
func (b *Bus) Off(s Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[s.name]
	for i, sub := range subs {
		if sub.id != s.id {
			continue
		}
		// Copy so in-flight Emit snapshots keep their view.
		next := make([]subscriber, 0, len(subs)-1)
		next = append(next, subs[:i]...)
		next = append(next, subs[i+1:]...)
		if len(next) == 0 {
			delete(b.subs, s.name)
		} else {
			b.subs[s.name] = next
		}
		return true
	}
	return false
}

// Emit delivers payload to every current subscriber of name and returns
// once all of them have run. A panicking handler is logged and skipped; the
// remaining handlers still run.
func (b *Bus) Emit(ctx context.Context, name string, payload any) {
	b.mu.RLock()
	subs := b.subs[name]
	b.mu.RUnlock()

	EventsEmitted.WithLabelValues(name).Inc()
	if len(subs) == 0 {
		return
	}

	ev := Event{
		ID:        newID(),
		Name:      name,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	for _, sub := range subs {
		b.deliver(ctx, sub, ev)
	}
}

func (b *Bus) deliver(ctx context.Context, sub subscriber, ev Event) {
	err := oops.In("eventbus").
		With("event", ev.Name).
		With("event_id", ev.ID.String()).
		Recover(func() {
			sub.handler(ctx, ev)
		})
	if err != nil {
		HandlerPanics.WithLabelValues(ev.Name).Inc()
		errutil.LogErrorContext(ctx, b.logger, "event handler panicked", err)
	}
}

// ReportError logs a plugin failure and announces it as PluginError.
func (b *Bus) ReportError(ctx context.Context, pluginID string, err error) {
	errutil.LogErrorContext(ctx, b.logger, "plugin failure", err)
	b.Emit(ctx, PluginError, PluginErrorPayload{PluginID: pluginID, Err: err})
}

// SubscriberCount returns the number of handlers listening on name.
func (b *Bus) SubscriberCount(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}
