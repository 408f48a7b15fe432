// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

package plugin

import (
	"context"
	"sync"

	"github.com/inkpad/inkpad/internal/eventbus"
)

type outboxKey struct{}

// outbox holds the events raised while a plugin id's lifecycle lock is
// held. They are delivered after the lock is released, so subscribers may
// call back into the Manager for the same id.
type outbox struct {
	mu      sync.Mutex
	pending []func(ctx context.Context, bus *eventbus.Bus)
	flushed bool
}

func withOutbox(ctx context.Context, box *outbox) context.Context {
	return context.WithValue(ctx, outboxKey{}, box)
}

func outboxFrom(ctx context.Context) (*outbox, bool) {
	box, ok := ctx.Value(outboxKey{}).(*outbox)
	return box, ok
}

func (o *outbox) open() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return !o.flushed
}

// add queues fn. It reports false once the outbox has been flushed.
func (o *outbox) add(fn func(ctx context.Context, bus *eventbus.Bus)) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.flushed {
		return false
	}
	o.pending = append(o.pending, fn)
	return true
}

// flush delivers queued events in the order they were raised. Events
// queued by subscribers during delivery are delivered too.
func (o *outbox) flush(ctx context.Context, bus *eventbus.Bus) {
	for {
		o.mu.Lock()
		pending := o.pending
		o.pending = nil
		if len(pending) == 0 {
			o.flushed = true
			o.mu.Unlock()
			return
		}
		o.mu.Unlock()

		for _, fn := range pending {
			fn(ctx, bus)
		}
	}
}

// deferredPublisher queues events into the outbox carried by ctx, if any,
// and publishes directly otherwise.
type deferredPublisher struct {
	bus *eventbus.Bus
}

// Emit implements eventbus.Publisher.
func (p deferredPublisher) Emit(ctx context.Context, name string, payload any) {
	if box, ok := outboxFrom(ctx); ok && box.add(func(ctx context.Context, bus *eventbus.Bus) {
		bus.Emit(ctx, name, payload)
	}) {
		return
	}
	p.bus.Emit(ctx, name, payload)
}

// ReportError implements eventbus.Publisher.
func (p deferredPublisher) ReportError(ctx context.Context, pluginID string, err error) {
	if box, ok := outboxFrom(ctx); ok && box.add(func(ctx context.Context, bus *eventbus.Bus) {
		bus.ReportError(ctx, pluginID, err)
	}) {
		return
	}
	p.bus.ReportError(ctx, pluginID, err)
}
