package core

import (
	"errors"
	"fmt"
)

// ErrAlreadyStarted is returned when a component that owns timers or
// subscriptions is started a second time.
var ErrAlreadyStarted = errors.New("already started")

// DuplicateCommandError is returned when a command name or alias is already claimed.
type DuplicateCommandError struct {
	Name     string // the contested name or alias
	Existing string // primary name of the command that owns it, empty if claimed twice by the same definition
}

func (e *DuplicateCommandError) Error() string {
	if e.Existing == "" {
		return fmt.Sprintf("duplicate command name %q", e.Name)
	}
	return fmt.Sprintf("command name %q is already claimed by %q", e.Name, e.Existing)
}

// DuplicateInhibitorError is returned when an inhibitor name is registered twice.
type DuplicateInhibitorError struct {
	Name string
}

func (e *DuplicateInhibitorError) Error() string {
	return fmt.Sprintf("duplicate inhibitor %q", e.Name)
}

// DuplicateTaskError is returned when a task name is scheduled twice.
type DuplicateTaskError struct {
	Name string
}

func (e *DuplicateTaskError) Error() string {
	return fmt.Sprintf("duplicate task %q", e.Name)
}

// NotFoundError is returned when a token resolves to no command.
type NotFoundError struct {
	Token string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no command named %q", e.Token)
}

// InhibitionDenied is the expected result of an inhibitor vetoing a command.
// It is not a fault.
type InhibitionDenied struct {
	Rule   string
	Reason string // locale key, or literal text when no such key exists
	Args   []any
	Silent bool // no notice is sent to the channel
}

func (e *InhibitionDenied) Error() string {
	return fmt.Sprintf("inhibited by %s: %s", e.Rule, e.Reason)
}

// HandlerKind names the kind of handler that failed.
type HandlerKind string

const (
	KindCommand   HandlerKind = "command"
	KindEvent     HandlerKind = "event"
	KindTask      HandlerKind = "task"
	KindInhibitor HandlerKind = "inhibitor"
)

// HandlerExecutionError wraps a failure raised inside a command, event or task handler.
type HandlerExecutionError struct {
	Kind  HandlerKind
	Name  string
	Err   error
	Panic any // recovered panic value, nil for returned errors
}

func (e *HandlerExecutionError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("%s %s panicked: %v", e.Kind, e.Name, e.Panic)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Kind, e.Name, e.Err)
}

func (e *HandlerExecutionError) Unwrap() error {
	return e.Err
}

// Contain runs fn, converting a returned error or a panic into a *HandlerExecutionError.
func Contain(kind HandlerKind, name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			perr, _ := r.(error)
			err = &HandlerExecutionError{Kind: kind, Name: name, Err: perr, Panic: r}
		}
	}()
	if ferr := fn(); ferr != nil {
		return &HandlerExecutionError{Kind: kind, Name: name, Err: ferr}
	}
	return nil
}

// MissingLocaleKeyError is returned when a key exists in neither the requested nor the default locale.
type MissingLocaleKeyError struct {
	Locale string
	Key    string
}

func (e *MissingLocaleKeyError) Error() string {
	return fmt.Sprintf("missing locale key %q for %s", e.Key, e.Locale)
}
