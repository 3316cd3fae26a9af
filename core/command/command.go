// Package command holds command definitions, the per-dispatch invocation
// context and the registry that resolves names and aliases to definitions.
package command

import (
	"context"
	"fmt"
	"time"

	"GoCommando/core/platform"
)

// Func executes a command. A returned error (or a panic) is contained by the
// dispatcher and reported to the channel as a generic failure.
type Func func(ctx context.Context, inv *Invocation) error

// Config holds the preconditions the built-in inhibitors enforce.
type Config struct {
	OwnerOnly           bool
	GuildOnly           bool
	Disabled            bool
	Cooldown            time.Duration
	RequiredPermissions platform.Permission
}

// Definition describes a command. It must not be modified once registered.
type Definition struct {
	Name        string
	Aliases     []string
	Description string
	Usage       string // arguments, e.g. "<user> [reason]"
	Category    string
	Config      Config
	Run         Func
}

// Names returns the primary name followed by the aliases.
func (d *Definition) Names() []string {
	return append([]string{d.Name}, d.Aliases...)
}

// Translator renders a locale key. It is implemented by the language registry.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// Invocation is the context of one command dispatch. It is created for a
// single message and must not be retained after the handler returns.
type Invocation struct {
	// Message is the message that triggered the invocation.
	Message *platform.Message
	// Command is the resolved definition.
	Command *Definition
	// Args are the tokens after the command name.
	Args []string
	// Author is the invoking user.
	Author platform.User
	// Locale selects response text.
	Locale string
	// Prefix is the prefix the message used, for building usage hints.
	Prefix string
	// TraceID identifies the dispatch in logs.
	TraceID string

	Sender     platform.Sender
	Translator Translator
}

// T translates key for the invocation's locale, returning the key itself if
// it has no translation.
func (inv *Invocation) T(key string, args ...any) string {
	if inv.Translator == nil {
		return key
	}
	s, err := inv.Translator.Translate(inv.Locale, key, args...)
	if err != nil {
		return key
	}
	return s
}

// ReplyToChannel sends formatted text back to the channel of the message.
func (inv *Invocation) ReplyToChannel(ctx context.Context, format string, v ...any) error {
	return inv.Sender.SendMessage(ctx, inv.Message.ChannelID, fmt.Sprintf(format, v...))
}

// ReplyKey sends the translation of key back to the channel of the message.
func (inv *Invocation) ReplyKey(ctx context.Context, key string, args ...any) error {
	return inv.Sender.SendMessage(ctx, inv.Message.ChannelID, inv.T(key, args...))
}
