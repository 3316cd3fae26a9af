// Package loader supplies command, event and task definitions to the client.
// The framework never reads definition files itself.
package loader

import (
	"sort"
	"strings"
	"sync"

	"GoCommando/core/command"
	"GoCommando/core/events"
	"GoCommando/core/tasks"
)

// Loader produces the definitions found under a path.
type Loader interface {
	Commands(path string) ([]*command.Definition, error)
	Events(path string) ([]events.Binding, error)
	Tasks(path string) ([]*tasks.Task, error)
}

// Catalog is a Loader over definitions added in process, filed under
// slash-separated paths. Loading a path returns its definitions and those
// of every path below it, ordered by path and then by addition.
type Catalog struct {
	mu       sync.RWMutex
	commands map[string][]*command.Definition
	events   map[string][]events.Binding
	tasks    map[string][]*tasks.Task
}

func NewCatalog() *Catalog {
	return &Catalog{
		commands: map[string][]*command.Definition{},
		events:   map[string][]events.Binding{},
		tasks:    map[string][]*tasks.Task{},
	}
}

func (c *Catalog) AddCommands(path string, defs ...*command.Definition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	path = clean(path)
	c.commands[path] = append(c.commands[path], defs...)
}

func (c *Catalog) AddEvents(path string, bindings ...events.Binding) {
	c.mu.Lock()
	defer c.mu.Unlock()
	path = clean(path)
	c.events[path] = append(c.events[path], bindings...)
}

func (c *Catalog) AddTasks(path string, ts ...*tasks.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	path = clean(path)
	c.tasks[path] = append(c.tasks[path], ts...)
}

func (c *Catalog) Commands(path string) ([]*command.Definition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return collect(c.commands, path), nil
}

func (c *Catalog) Events(path string) ([]events.Binding, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return collect(c.events, path), nil
}

func (c *Catalog) Tasks(path string) ([]*tasks.Task, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return collect(c.tasks, path), nil
}

func clean(path string) string {
	return strings.Trim(path, "/")
}

func collect[T any](byPath map[string][]T, path string) []T {
	path = clean(path)
	var paths []string
	for p := range byPath {
		if path == "" || p == path || strings.HasPrefix(p, path+"/") {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	var out []T
	for _, p := range paths {
		out = append(out, byPath[p]...)
	}
	return out
}
