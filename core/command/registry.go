package command

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"unicode"

	"GoCommando/core"
)

// Registry maps command names and aliases to definitions. Lookups are case
// insensitive: names are stored lower-cased. A name or alias belongs to at
// most one definition; registering a clash is rejected.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]*Definition
	byAlias map[string]*Definition
	order   []*Definition
}

func NewRegistry() *Registry {
	return &Registry{
		byName:  map[string]*Definition{},
		byAlias: map[string]*Definition{},
	}
}

// Register adds definitions in order. It stops at the first invalid or
// clashing definition; definitions before it stay registered, the failing
// one leaves no trace.
func (r *Registry) Register(defs ...*Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, def := range defs {
		if err := r.add(def); err != nil {
			return err
		}
		if core.IsLogInfo() {
			core.LogInfoF("Registered command: %s %v", def.Name, def.Aliases)
		}
	}
	return nil
}

func (r *Registry) add(def *Definition) error {
	if def == nil {
		return errors.New("nil command definition")
	}
	if def.Run == nil {
		return fmt.Errorf("command %q has no handler", def.Name)
	}

	seen := map[string]bool{}
	for _, n := range def.Names() {
		key := strings.ToLower(n)
		if key == "" || strings.IndexFunc(key, unicode.IsSpace) >= 0 {
			return fmt.Errorf("command %q: invalid name %q", def.Name, n)
		}
		if seen[key] {
			return &core.DuplicateCommandError{Name: key}
		}
		seen[key] = true
		if existing := r.lookup(key); existing != nil {
			return &core.DuplicateCommandError{Name: key, Existing: existing.Name}
		}
	}

	r.byName[strings.ToLower(def.Name)] = def
	for _, a := range def.Aliases {
		r.byAlias[strings.ToLower(a)] = def
	}
	r.order = append(r.order, def)
	return nil
}

func (r *Registry) lookup(key string) *Definition {
	if def, ok := r.byName[key]; ok {
		return def
	}
	return r.byAlias[key]
}

// Resolve returns the definition named or aliased by token.
func (r *Registry) Resolve(token string) (*Definition, error) {
	r.mu.RLock()
	def := r.lookup(strings.ToLower(token))
	r.mu.RUnlock()
	if def == nil {
		return nil, &core.NotFoundError{Token: token}
	}
	return def, nil
}

// List yields every definition once, in registration order. Each range over
// the sequence starts from the beginning.
func (r *Registry) List() iter.Seq[*Definition] {
	return func(yield func(*Definition) bool) {
		r.mu.RLock()
		snapshot := r.order[:len(r.order):len(r.order)]
		r.mu.RUnlock()
		for _, def := range snapshot {
			if !yield(def) {
				return
			}
		}
	}
}

// Len returns the number of distinct definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
