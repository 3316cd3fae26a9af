// Package client composes the registries, dispatcher, event binder and task
// scheduler around a platform connection.
package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"GoCommando/core"
	"GoCommando/core/command"
	"GoCommando/core/dispatch"
	"GoCommando/core/events"
	"GoCommando/core/inhibitor"
	"GoCommando/core/language"
	"GoCommando/core/loader"
	"GoCommando/core/metrics"
	"GoCommando/core/platform"
	"GoCommando/core/tasks"

	"github.com/thoas/go-funk"
)

// Options configures a Client.
type Options struct {
	Prefix               string
	Owners               []string
	Invite               string // shown when a command fails
	DefaultHelpCommand   bool
	DefaultLocale        string
	MentionPrefix        bool
	IgnoreBots           bool
	UnknownCommandNotice bool
	// DispatchEdits runs edited messages as commands too.
	DispatchEdits bool

	// Loader supplies definitions from CommandPath, EventPath and TaskPath.
	Loader      loader.Loader
	CommandPath string
	EventPath   string
	TaskPath    string

	// Blacklist enables the blacklist inhibitor.
	Blacklist inhibitor.BlacklistStore
	// Language defaults to the built-in strings for DefaultLocale.
	Language *language.Registry
	Metrics  *metrics.Metrics

	// CooldownSweep is how often expired cooldowns are forgotten.
	CooldownSweep time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// OptionsFromSettings maps loaded settings onto client options.
func OptionsFromSettings(s *core.Settings) Options {
	return Options{
		Prefix:               s.CommandPrefix,
		Owners:               s.OwnerIds,
		Invite:               s.Invite,
		DefaultHelpCommand:   s.DefaultHelpCommand,
		DefaultLocale:        s.DefaultLocale,
		MentionPrefix:        s.MentionPrefix,
		IgnoreBots:           !s.AllowBots,
		UnknownCommandNotice: s.UnknownCommandNotice,
		DispatchEdits:        s.DispatchEdits,
		CommandPath:          s.CommandPath,
		EventPath:            s.EventPath,
		TaskPath:             s.TaskPath,
	}
}

// Client is the bot. It holds the connection rather than being one, and
// everything it builds is scoped to it.
type Client struct {
	Options

	Conn       platform.Connection
	Commands   *command.Registry
	Inhibitors *inhibitor.Registry
	Events     *events.Binder
	Tasks      *tasks.Scheduler
	Language   *language.Registry
	Dispatcher *dispatch.MessageDispatcher
	Cooldown   *inhibitor.Cooldown

	mu          sync.RWMutex
	started     bool
	connectedAt time.Time
	self        *platform.User
}

func New(conn platform.Connection, opts Options) (*Client, error) {
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = "en-US"
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.CooldownSweep <= 0 {
		opts.CooldownSweep = 10 * time.Minute
	}
	lang := opts.Language
	if lang == nil {
		var err error
		if lang, err = language.Default(opts.DefaultLocale); err != nil {
			return nil, err
		}
	}

	c := &Client{
		Options:    opts,
		Conn:       conn,
		Commands:   command.NewRegistry(),
		Inhibitors: inhibitor.NewRegistry(),
		Events:     events.NewBinder(),
		Tasks:      tasks.NewScheduler(),
		Language:   lang,
	}
	c.Cooldown = inhibitor.NewCooldown(opts.Clock, c.IsOwner)
	c.Events.Metrics = opts.Metrics
	c.Tasks.Metrics = opts.Metrics

	c.Dispatcher = dispatch.NewMessageDispatcher(conn, c.Commands, c.Inhibitors, dispatch.Options{
		Prefix:               opts.Prefix,
		MentionPrefix:        opts.MentionPrefix,
		IgnoreBots:           opts.IgnoreBots,
		UnknownCommandNotice: opts.UnknownCommandNotice,
		Invite:               opts.Invite,
		DefaultLocale:        opts.DefaultLocale,
	})
	c.Dispatcher.Translator = lang
	c.Dispatcher.Metrics = opts.Metrics

	err := c.Events.BindAll(
		events.Binding{Event: platform.EventMessageCreate, Name: "dispatcher", Handler: c.Dispatcher.HandleEvent},
		events.Binding{Event: platform.EventReady, Name: "identity", Handler: c.onReady},
	)
	if err != nil {
		return nil, err
	}
	if opts.DispatchEdits {
		err = c.Events.BindAll(events.Binding{Event: platform.EventMessageUpdate, Name: "editDispatcher", Handler: c.Dispatcher.HandleEvent})
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Setup loads and registers everything, starts listening and the timers,
// and only then opens the connection, so the first event is routed. Any
// registration error aborts before connecting.
func (c *Client) Setup(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return core.ErrAlreadyStarted
	}
	c.started = true
	c.mu.Unlock()

	if err := c.load(); err != nil {
		return err
	}
	if err := c.registerDefaults(); err != nil {
		return err
	}
	if err := c.Events.Setup(ctx, c.Conn); err != nil {
		return err
	}
	if err := c.Tasks.Start(ctx); err != nil {
		c.Events.Close()
		return err
	}

	core.LogInfoF("Loaded %d commands, %d events, inhibitors %v", c.Commands.Len(), len(c.Events.Events()), c.Inhibitors.Names())
	if err := c.Conn.Open(); err != nil {
		c.Tasks.Stop()
		c.Events.Close()
		return fmt.Errorf("error opening connection: %w", err)
	}

	c.mu.Lock()
	c.connectedAt = c.Clock()
	c.mu.Unlock()
	return nil
}

func (c *Client) load() error {
	if c.Loader == nil {
		return nil
	}
	defs, err := c.Loader.Commands(c.CommandPath)
	if err != nil {
		return fmt.Errorf("failed to load commands from %q: %w", c.CommandPath, err)
	}
	if err := c.Commands.Register(defs...); err != nil {
		return err
	}
	bindings, err := c.Loader.Events(c.EventPath)
	if err != nil {
		return fmt.Errorf("failed to load events from %q: %w", c.EventPath, err)
	}
	if err := c.Events.BindAll(bindings...); err != nil {
		return err
	}
	ts, err := c.Loader.Tasks(c.TaskPath)
	if err != nil {
		return fmt.Errorf("failed to load tasks from %q: %w", c.TaskPath, err)
	}
	return c.Tasks.Schedule(ts...)
}

func (c *Client) registerDefaults() error {
	rules := []*inhibitor.Rule{
		inhibitor.Disabled(),
		inhibitor.OwnerOnly(c.IsOwner),
		inhibitor.GuildOnly(),
		inhibitor.Permissions(c.Conn),
		c.Cooldown.Rule(),
	}
	if c.Blacklist != nil {
		rules = append(rules, inhibitor.Blacklist(c.Blacklist))
	}
	if err := c.Inhibitors.Register(rules...); err != nil {
		return err
	}
	if c.DefaultHelpCommand {
		if err := c.Commands.Register(command.HelpCommand(c.Commands, c.IsOwner)); err != nil {
			return err
		}
	}
	return c.Tasks.Schedule(&tasks.Task{
		Name:  "cooldownSweep",
		Every: c.CooldownSweep,
		Run: func(context.Context) error {
			if n := c.Cooldown.Sweep(); n > 0 {
				core.LogDebugF("Forgot %d expired cooldowns", n)
			}
			return nil
		},
	})
}

// Close stops the timers and listeners, then disconnects.
func (c *Client) Close() error {
	c.Tasks.Stop()
	c.Events.Close()
	return c.Conn.Close()
}

func (c *Client) onReady(_ context.Context, payload any) error {
	ready, ok := payload.(*platform.Ready)
	if !ok {
		return nil
	}
	user := ready.User
	c.mu.Lock()
	c.self = &user
	c.mu.Unlock()
	core.LogInfoF("Ready as %s, prefix %q", user.Tag(), c.Prefix)
	return nil
}

// IsOwner reports whether userID is one of the configured owners.
func (c *Client) IsOwner(userID string) bool {
	return funk.ContainsString(c.Owners, userID)
}

// Self returns the bot account, or nil before the connection is ready.
func (c *Client) Self() *platform.User {
	c.mu.RLock()
	self := c.self
	c.mu.RUnlock()
	if self != nil {
		return self
	}
	return c.Conn.Self()
}

// Tag returns the bot's username#discriminator, empty before ready.
func (c *Client) Tag() string {
	if self := c.Self(); self != nil {
		return self.Tag()
	}
	return ""
}

// Uptime is the time since the connection was opened, zero before.
func (c *Client) Uptime() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.connectedAt.IsZero() {
		return 0
	}
	return c.Clock().Sub(c.connectedAt)
}
