// Package inhibitor runs named precondition checks that can veto a command
// before its handler executes.
package inhibitor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"GoCommando/core"
	"GoCommando/core/command"
)

// Decision is the verdict of one rule.
type Decision struct {
	Allowed bool
	// Reason is a locale key, or literal text when no such key exists.
	Reason string
	Args   []any
	// Silent denials send nothing to the channel.
	Silent bool
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string, args ...any) Decision {
	return Decision{Reason: reason, Args: args}
}

func DenySilently(reason string, args ...any) Decision {
	return Decision{Reason: reason, Args: args, Silent: true}
}

// CheckFunc inspects an invocation. It must not modify it.
type CheckFunc func(ctx context.Context, inv *command.Invocation) (Decision, error)

// Rule is a named check. Lower priorities run first.
type Rule struct {
	Name     string
	Priority int
	Check    CheckFunc
}

// Registry holds rules sorted by priority, ties kept in registration order.
type Registry struct {
	mu    sync.RWMutex
	rules []*Rule
	names map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{names: map[string]bool{}}
}

// Register adds rules. If any rule is invalid or its name is taken, none
// of them are added.
func (r *Registry) Register(rules ...*Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	batch := make(map[string]bool, len(rules))
	for _, rule := range rules {
		if rule == nil || rule.Check == nil {
			return errors.New("inhibitor without a check")
		}
		if rule.Name == "" {
			return errors.New("inhibitor without a name")
		}
		if r.names[rule.Name] || batch[rule.Name] {
			return &core.DuplicateInhibitorError{Name: rule.Name}
		}
		batch[rule.Name] = true
	}

	// Check iterates a snapshot of r.rules without the lock, so sort a copy.
	next := append(slices.Clone(r.rules), rules...)
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].Priority < next[j].Priority
	})
	r.rules = next
	for _, rule := range rules {
		r.names[rule.Name] = true
		core.LogDebugF("Registered inhibitor: %s (priority %d)", rule.Name, rule.Priority)
	}
	return nil
}

// Names returns rule names in evaluation order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.rules))
	for i, rule := range r.rules {
		out[i] = rule.Name
	}
	return out
}

// Check runs the rules in order and returns the first denial, or nil if
// every rule allows. A rule that fails without denying is logged and skipped.
func (r *Registry) Check(ctx context.Context, inv *command.Invocation) *core.InhibitionDenied {
	r.mu.RLock()
	rules := r.rules
	r.mu.RUnlock()

	for _, rule := range rules {
		var d Decision
		err := core.Contain(core.KindInhibitor, rule.Name, func() error {
			var cerr error
			d, cerr = rule.Check(ctx, inv)
			return cerr
		})
		if err != nil {
			core.LogWarnF("[%s] inhibitor %s: %s", inv.TraceID, rule.Name, err)
		}
		if err != nil && d.Reason == "" {
			continue
		}
		if !d.Allowed {
			return &core.InhibitionDenied{
				Rule:   rule.Name,
				Reason: d.Reason,
				Args:   d.Args,
				Silent: d.Silent,
			}
		}
	}
	return nil
}

func (d Decision) String() string {
	if d.Allowed {
		return "allow"
	}
	return fmt.Sprintf("deny(%s)", d.Reason)
}
