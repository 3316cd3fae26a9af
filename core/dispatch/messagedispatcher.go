package dispatch

import (
	"context"
	"strings"
	"time"

	"GoCommando/core"
	"GoCommando/core/command"
	"GoCommando/core/inhibitor"
	"GoCommando/core/metrics"
	"GoCommando/core/platform"

	"github.com/google/uuid"
)

// Conn is what the dispatcher needs from the platform connection.
type Conn interface {
	platform.Sender
	Self() *platform.User
}

// Options controls how messages are recognised as commands.
type Options struct {
	// Prefix marks a message as a command, e.g. "!". Matching is case-sensitive.
	Prefix string
	// MentionPrefix also accepts a mention of the bot as the prefix.
	MentionPrefix bool
	// IgnoreBots drops messages from other bot accounts.
	IgnoreBots bool
	// UnknownCommandNotice replies to unknown commands instead of ignoring them.
	UnknownCommandNotice bool
	// Invite is appended to the generic failure message when set.
	Invite string
	// DefaultLocale is used for messages without a locale of their own.
	DefaultLocale string
}

// MessageDispatcher parses messages and runs the command they invoke.
// It filters out messages sent by the bot itself and messages without
// the configured prefix.
type MessageDispatcher struct {
	Options
	Commands   *command.Registry
	Inhibitors *inhibitor.Registry // nil runs every command unchecked
	Conn       Conn
	Translator command.Translator
	Metrics    *metrics.Metrics
}

func NewMessageDispatcher(conn Conn, commands *command.Registry, inhibitors *inhibitor.Registry, opts Options) *MessageDispatcher {
	return &MessageDispatcher{
		Options:    opts,
		Commands:   commands,
		Inhibitors: inhibitors,
		Conn:       conn,
	}
}

// HandleEvent dispatches a messageCreate payload. It has the shape of an
// event handler so the dispatcher can be bound like any other.
func (d *MessageDispatcher) HandleEvent(ctx context.Context, payload any) error {
	m, ok := payload.(*platform.Message)
	if !ok {
		return nil
	}
	d.Dispatch(ctx, m)
	return nil
}

// Dispatch runs the message through the pipeline and reports where it
// stopped. Handler failures are contained and never returned as panics.
func (d *MessageDispatcher) Dispatch(ctx context.Context, m *platform.Message) (out Outcome) {
	defer func() {
		d.Metrics.Dispatched(out.State.String())
	}()

	// Short-circuit on our own messages to avoid loops
	if m == nil || m.Author == nil || strings.TrimSpace(m.Content) == "" {
		return Outcome{State: Ignored}
	}
	self := d.Conn.Self()
	if self != nil && m.Author.ID == self.ID {
		return Outcome{State: Ignored}
	}
	if d.IgnoreBots && m.Author.Bot {
		return Outcome{State: Ignored}
	}

	prefix, rest, ok := d.matchPrefix(m.Content, self)
	if !ok {
		return Outcome{State: Ignored}
	}
	core.LogDebug("Got command message: ", m.Content)

	args := Tokenize(rest)
	// Just the prefix, or a bunch of whitespace
	if len(args) == 0 || args[0] == "" {
		return Outcome{State: Ignored}
	}
	token, args := args[0], args[1:]

	inv := &command.Invocation{
		Message:    m,
		Args:       args,
		Author:     *m.Author,
		Locale:     m.Locale,
		Prefix:     prefix,
		TraceID:    uuid.NewString(),
		Sender:     d.Conn,
		Translator: d.Translator,
	}
	if inv.Locale == "" {
		inv.Locale = d.DefaultLocale
	}

	def, err := d.Commands.Resolve(token)
	if err != nil {
		core.LogDebugF("[%s] %s", inv.TraceID, err)
		if d.UnknownCommandNotice {
			d.reply(ctx, inv, inv.T("dispatch.unknownCommand", token, prefix))
		}
		return Outcome{State: Ignored, Args: args, Err: err}
	}
	inv.Command = def
	core.LogDebugF("[%s] %s ran %s %q", inv.TraceID, m.Author.Tag(), def.Name, args)

	if d.Inhibitors != nil {
		if denial := d.Inhibitors.Check(ctx, inv); denial != nil {
			core.LogDebugF("[%s] %s", inv.TraceID, denial)
			if !denial.Silent {
				d.reply(ctx, inv, inv.T(denial.Reason, denial.Args...))
			}
			return Outcome{State: Inhibited, Command: def, Args: args, Denial: denial, Err: denial}
		}
	}

	start := time.Now()
	err = core.Contain(core.KindCommand, def.Name, func() error {
		return def.Run(ctx, inv)
	})
	d.Metrics.CommandRan(def.Name, time.Since(start), err)
	if err != nil {
		core.LogErrorF("[%s] %s", inv.TraceID, err)
		if d.Invite != "" {
			d.reply(ctx, inv, inv.T("dispatch.errorInvite", d.Invite))
		} else {
			d.reply(ctx, inv, inv.T("dispatch.error"))
		}
		return Outcome{State: Failed, Command: def, Args: args, Err: err}
	}
	return Outcome{State: Succeeded, Command: def, Args: args}
}

// matchPrefix returns the prefix used and the text after it.
func (d *MessageDispatcher) matchPrefix(content string, self *platform.User) (string, string, bool) {
	if d.Prefix != "" && strings.HasPrefix(content, d.Prefix) {
		return d.Prefix, content[len(d.Prefix):], true
	}
	if d.MentionPrefix && self != nil {
		for _, mention := range []string{self.Mention(), "<@!" + self.ID + ">"} {
			if rest, ok := strings.CutPrefix(content, mention); ok {
				prefix := d.Prefix
				if prefix == "" {
					prefix = mention + " "
				}
				return prefix, rest, true
			}
		}
	}
	return "", "", false
}

func (d *MessageDispatcher) reply(ctx context.Context, inv *command.Invocation, text string) {
	if err := d.Conn.SendMessage(ctx, inv.Message.ChannelID, text); err != nil {
		core.LogWarnF("[%s] failed to reply in %s: %s", inv.TraceID, inv.Message.ChannelID, err)
	}
}
