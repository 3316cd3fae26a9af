package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"GoCommando/core"

	"github.com/google/go-cmp/cmp"
)

type fakeSubscriber struct {
	mu        sync.Mutex
	listeners map[string][]func(any)
	removed   int
}

func (s *fakeSubscriber) Subscribe(event string, fn func(any)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listeners == nil {
		s.listeners = map[string][]func(any){}
	}
	s.listeners[event] = append(s.listeners[event], fn)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.removed++
	}
}

func (s *fakeSubscriber) fire(event string, payload any) {
	s.mu.Lock()
	ls := s.listeners[event]
	s.mu.Unlock()
	for _, fn := range ls {
		fn(payload)
	}
}

func TestHandlersRunInOrderAndIsolated(t *testing.T) {
	var got []string
	record := func(name string, err error) Handler {
		return func(_ context.Context, payload any) error {
			got = append(got, name+":"+payload.(string))
			return err
		}
	}
	b := NewBinder()
	_ = b.Bind("ready", record("first", nil))
	_ = b.Bind("ready", record("second", errors.New("broken")))
	_ = b.Bind("ready", func(context.Context, any) error { panic("boom") })
	_ = b.Bind("ready", record("fourth", nil))
	_ = b.Bind("guildCreate", record("other", nil))

	sub := &fakeSubscriber{}
	if err := b.Setup(context.Background(), sub); err != nil {
		t.Fatal(err)
	}
	if len(sub.listeners["ready"]) != 1 || len(sub.listeners["guildCreate"]) != 1 {
		t.Fatalf("expected one listener per event, got %v", sub.listeners)
	}
	sub.fire("ready", "x")
	if diff := cmp.Diff([]string{"first:x", "second:x", "fourth:x"}, got); diff != "" {
		t.Errorf("wrong handler runs (-want +got):\n%s", diff)
	}

	err := b.Emit(context.Background(), "ready", "y")
	var herr *core.HandlerExecutionError
	if !errors.As(err, &herr) || herr.Kind != core.KindEvent || herr.Name != "ready#1" {
		t.Errorf("expected the first failure to be reported, got %v", err)
	}
	if diff := cmp.Diff([]string{"ready", "guildCreate"}, b.Events()); diff != "" {
		t.Errorf("wrong events (-want +got):\n%s", diff)
	}
}

func TestSetupTwice(t *testing.T) {
	b := NewBinder()
	_ = b.Bind("ready", func(context.Context, any) error { return nil })
	sub := &fakeSubscriber{}
	if err := b.Setup(context.Background(), sub); err != nil {
		t.Fatal(err)
	}
	if err := b.Setup(context.Background(), sub); !errors.Is(err, core.ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
	if len(sub.listeners["ready"]) != 1 {
		t.Errorf("second setup subscribed again")
	}
	b.Close()
	if sub.removed != 1 {
		t.Errorf("expected 1 removal, got %d", sub.removed)
	}
}

func TestBindAfterSetup(t *testing.T) {
	b := NewBinder()
	sub := &fakeSubscriber{}
	_ = b.Setup(context.Background(), sub)
	ran := 0
	_ = b.BindAll(Binding{Event: "messageUpdate", Name: "edits", Handler: func(context.Context, any) error {
		ran++
		return nil
	}})
	sub.fire("messageUpdate", nil)
	if ran != 1 {
		t.Errorf("late binding not subscribed")
	}
	if err := b.Bind("", nil); err == nil {
		t.Error("expected an error for an empty binding")
	}
}

func TestBindAllRejectsIncompleteBatch(t *testing.T) {
	b := NewBinder()
	err := b.BindAll(
		Binding{Event: "ready", Handler: func(context.Context, any) error { return nil }},
		Binding{Event: "guildCreate"},
	)
	if err == nil {
		t.Fatal("expected an error for a binding without a handler")
	}
	if got := b.Events(); len(got) != 0 {
		t.Errorf("events bound from a rejected call: %v", got)
	}
}
