// Package events binds handlers to named platform events.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"GoCommando/core"
	"GoCommando/core/metrics"
	"GoCommando/core/platform"
)

// Handler reacts to an event. The payload is whatever the connection
// delivers for the event, e.g. *platform.Message for messageCreate.
type Handler func(ctx context.Context, payload any) error

// Binding attaches a handler to an event. Name identifies the handler in
// logs and defaults to the event name and position.
type Binding struct {
	Event   string
	Name    string
	Handler Handler
}

// Binder runs the handlers bound to each event in bind order. One
// failing handler does not keep the next from running.
type Binder struct {
	Metrics *metrics.Metrics

	mu       sync.RWMutex
	events   []string
	bindings map[string][]Binding
	ctx      context.Context
	sub      platform.Subscriber
	removes  []func()
}

func NewBinder() *Binder {
	return &Binder{bindings: map[string][]Binding{}}
}

// Bind appends h to the handlers of event.
func (b *Binder) Bind(event string, h Handler) error {
	return b.BindAll(Binding{Event: event, Handler: h})
}

// BindAll appends each binding in order, or none of them if any is
// incomplete. Bindings for an event that was not bound before Setup are
// subscribed immediately.
func (b *Binder) BindAll(bindings ...Binding) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, bnd := range bindings {
		if bnd.Event == "" || bnd.Handler == nil {
			return errors.New("event binding needs an event and a handler")
		}
	}
	for _, bnd := range bindings {
		list, ok := b.bindings[bnd.Event]
		if bnd.Name == "" {
			bnd.Name = fmt.Sprintf("%s#%d", bnd.Event, len(list))
		}
		b.bindings[bnd.Event] = append(list, bnd)
		if !ok {
			b.events = append(b.events, bnd.Event)
			if b.sub != nil {
				b.subscribe(bnd.Event)
			}
		}
		core.LogDebugF("Bound %s to %s", bnd.Name, bnd.Event)
	}
	return nil
}

// Setup subscribes one listener per bound event. It fails with
// core.ErrAlreadyStarted when called twice.
func (b *Binder) Setup(ctx context.Context, sub platform.Subscriber) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sub != nil {
		return core.ErrAlreadyStarted
	}
	b.ctx, b.sub = ctx, sub
	for _, event := range b.events {
		b.subscribe(event)
	}
	core.LogInfoF("Listening for %d events", len(b.events))
	return nil
}

// subscribe must be called with b.mu held.
func (b *Binder) subscribe(event string) {
	ctx := b.ctx
	b.removes = append(b.removes, b.sub.Subscribe(event, func(payload any) {
		_ = b.Emit(ctx, event, payload)
	}))
}

// Close removes the listeners. The bindings are kept.
func (b *Binder) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, remove := range b.removes {
		remove()
	}
	b.removes = nil
	b.sub = nil
}

// Emit runs the handlers of event with payload, sequentially. Failures are
// logged and returned joined.
func (b *Binder) Emit(ctx context.Context, event string, payload any) error {
	b.mu.RLock()
	list := b.bindings[event]
	b.mu.RUnlock()

	var errs []error
	for _, bnd := range list {
		err := core.Contain(core.KindEvent, bnd.Name, func() error {
			return bnd.Handler(ctx, payload)
		})
		b.Metrics.EventHandled(event, err)
		if err != nil {
			core.LogError(err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Events returns the bound event names in first-bind order.
func (b *Binder) Events() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.events...)
}
