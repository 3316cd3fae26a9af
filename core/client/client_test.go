package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"GoCommando/core"
	"GoCommando/core/command"
	"GoCommando/core/events"
	"GoCommando/core/loader"
	"GoCommando/core/platform"
	"GoCommando/core/tasks"

	"github.com/google/go-cmp/cmp"
)

// fakeConn records what the client did to it before Open.
type fakeConn struct {
	mu        sync.Mutex
	listeners map[string][]func(any)
	sent      []string
	perms     platform.Permission
	self      *platform.User
	opened    bool
	closed    bool
	openErr   error

	// snapshot taken inside Open
	eventsAtOpen []string
	tasksAtOpen  int
	client       *Client
}

func (f *fakeConn) Subscribe(event string, fn func(any)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listeners == nil {
		f.listeners = map[string][]func(any){}
	}
	f.listeners[event] = append(f.listeners[event], fn)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, event)
	}
}

func (f *fakeConn) SendMessage(_ context.Context, channelID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeConn) Permissions(string, string) (platform.Permission, error) {
	return f.perms, nil
}

func (f *fakeConn) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return f.openErr
	}
	f.opened = true
	for event := range f.listeners {
		f.eventsAtOpen = append(f.eventsAtOpen, event)
	}
	f.tasksAtOpen = f.client.Tasks.Active()
	return nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func (f *fakeConn) Self() *platform.User {
	return f.self
}

func (f *fakeConn) fire(event string, payload any) {
	f.mu.Lock()
	ls := f.listeners[event]
	f.mu.Unlock()
	for _, fn := range ls {
		fn(payload)
	}
}

func newClient(t *testing.T, opts Options) (*Client, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	c, err := New(conn, opts)
	if err != nil {
		t.Fatal(err)
	}
	conn.client = c
	t.Cleanup(func() { c.Close() })
	return c, conn
}

func TestSetupOrder(t *testing.T) {
	cat := loader.NewCatalog()
	cat.AddCommands("commands", &command.Definition{Name: "ping", Run: func(ctx context.Context, inv *command.Invocation) error {
		return inv.ReplyToChannel(ctx, "pong")
	}})
	cat.AddEvents("events", events.Binding{Event: "guildCreate", Handler: func(context.Context, any) error { return nil }})
	cat.AddTasks("tasks", &tasks.Task{Name: "tick", Every: time.Hour, Run: func(context.Context) error { return nil }})

	c, conn := newClient(t, Options{
		Prefix:             "!",
		Loader:             cat,
		CommandPath:        "commands",
		EventPath:          "events",
		TaskPath:           "tasks",
		DefaultHelpCommand: true,
	})
	if err := c.Setup(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !conn.opened {
		t.Fatal("connection not opened")
	}
	for _, event := range []string{platform.EventMessageCreate, platform.EventReady, "guildCreate"} {
		found := false
		for _, e := range conn.eventsAtOpen {
			found = found || e == event
		}
		if !found {
			t.Errorf("%s not subscribed before Open: %v", event, conn.eventsAtOpen)
		}
	}
	if conn.tasksAtOpen != 2 {
		t.Errorf("expected the loaded task and the cooldown sweep running before Open, got %d", conn.tasksAtOpen)
	}
	if _, err := c.Commands.Resolve("help"); err != nil {
		t.Errorf("help command not registered: %v", err)
	}
	want := []string{"disabled", "ownerOnly", "guildOnly", "permissions", "cooldown"}
	if diff := cmp.Diff(want, c.Inhibitors.Names()); diff != "" {
		t.Errorf("wrong inhibitors (-want +got):\n%s", diff)
	}

	conn.fire(platform.EventMessageCreate, &platform.Message{ChannelID: "c", GuildID: "g", Author: &platform.User{ID: "u"}, Content: "!ping"})
	if diff := cmp.Diff([]string{"pong"}, conn.sent); diff != "" {
		t.Errorf("wrong replies (-want +got):\n%s", diff)
	}

	if err := c.Setup(context.Background()); !errors.Is(err, core.ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestSetupAbortsOnDuplicates(t *testing.T) {
	cat := loader.NewCatalog()
	run := func(context.Context, *command.Invocation) error { return nil }
	cat.AddCommands("commands", &command.Definition{Name: "a", Aliases: []string{"x"}, Run: run})
	cat.AddCommands("commands/more", &command.Definition{Name: "b", Aliases: []string{"x"}, Run: run})

	c, conn := newClient(t, Options{Prefix: "!", Loader: cat, CommandPath: "commands"})
	var dup *core.DuplicateCommandError
	if err := c.Setup(context.Background()); !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateCommandError, got %v", err)
	}
	if conn.opened {
		t.Error("connection opened despite a registration error")
	}

	// A help command clashing with a loaded one aborts too.
	cat = loader.NewCatalog()
	cat.AddCommands("", &command.Definition{Name: "help", Run: run})
	c, conn = newClient(t, Options{Prefix: "!", Loader: cat, DefaultHelpCommand: true})
	if err := c.Setup(context.Background()); !errors.As(err, &dup) || conn.opened {
		t.Errorf("expected abort on help clash, got %v", err)
	}
}

func TestOpenFailureStopsTimers(t *testing.T) {
	c, conn := newClient(t, Options{Prefix: "!"})
	conn.openErr = errors.New("no network")
	if err := c.Setup(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if c.Tasks.Active() != 0 {
		t.Errorf("timers left running: %d", c.Tasks.Active())
	}
	if len(conn.listeners) != 0 {
		t.Errorf("listeners left: %v", conn.listeners)
	}
}

func TestIdentity(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c, conn := newClient(t, Options{
		Prefix: "!",
		Owners: []string{"1", "2"},
		Clock:  func() time.Time { return now },
	})
	if !c.IsOwner("2") || c.IsOwner("3") {
		t.Error("wrong owner check")
	}
	if c.Uptime() != 0 || c.Tag() != "" || c.Self() != nil {
		t.Error("identity known before connecting")
	}
	if err := c.Setup(context.Background()); err != nil {
		t.Fatal(err)
	}
	conn.fire(platform.EventReady, &platform.Ready{User: platform.User{ID: "9", Username: "Commando", Discriminator: "0042"}})
	if c.Tag() != "Commando#0042" {
		t.Errorf("wrong tag %q", c.Tag())
	}
	now = now.Add(90 * time.Minute)
	if c.Uptime() != 90*time.Minute {
		t.Errorf("wrong uptime %v", c.Uptime())
	}
	if err := c.Close(); err != nil || !conn.closed {
		t.Errorf("close failed: %v", err)
	}
}

type blacklist map[string]bool

func (b blacklist) IsBlacklisted(_ context.Context, id string) (bool, error) {
	return b[id], nil
}

func TestBuiltInInhibitors(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c, conn := newClient(t, Options{
		Prefix:    "!",
		Owners:    []string{"owner"},
		Blacklist: blacklist{"banned": true},
		Clock:     func() time.Time { return now },
	})
	run := func(ctx context.Context, inv *command.Invocation) error {
		return inv.ReplyToChannel(ctx, "ran %s", inv.Command.Name)
	}
	_ = c.Commands.Register(
		&command.Definition{Name: "slow", Config: command.Config{Cooldown: time.Minute}, Run: run},
		&command.Definition{Name: "kick", Config: command.Config{RequiredPermissions: platform.PermissionKickMembers}, Run: run},
		&command.Definition{Name: "admin", Config: command.Config{OwnerOnly: true}, Run: run},
	)
	if err := c.Setup(context.Background()); err != nil {
		t.Fatal(err)
	}
	send := func(author, content string) {
		conn.fire(platform.EventMessageCreate, &platform.Message{ChannelID: "c", GuildID: "g", Author: &platform.User{ID: author}, Content: content})
	}

	send("u", "!slow")
	send("u", "!slow")
	send("owner", "!slow")
	send("owner", "!slow")
	send("banned", "!slow")
	send("u", "!kick")
	send("u", "!admin")
	send("owner", "!admin")
	want := []string{
		"ran slow",
		"Slow down! You can use `slow` again in 60.0 seconds.",
		"ran slow",
		"ran slow",
		"You are missing permissions: Kick Members.",
		"Only the bot owners can use this command.",
		"ran admin",
	}
	if diff := cmp.Diff(want, conn.sent); diff != "" {
		t.Errorf("wrong replies (-want +got):\n%s", diff)
	}
}

func TestDispatchEdits(t *testing.T) {
	edited := &platform.Message{ChannelID: "c", GuildID: "g", Author: &platform.User{ID: "u"}, Content: "!ping"}
	for _, enabled := range []bool{false, true} {
		cat := loader.NewCatalog()
		cat.AddCommands("commands", &command.Definition{Name: "ping", Run: func(ctx context.Context, inv *command.Invocation) error {
			return inv.ReplyToChannel(ctx, "pong")
		}})
		c, conn := newClient(t, Options{Prefix: "!", Loader: cat, CommandPath: "commands", DispatchEdits: enabled})
		if err := c.Setup(context.Background()); err != nil {
			t.Fatal(err)
		}
		conn.fire(platform.EventMessageUpdate, edited)
		var want []string
		if enabled {
			want = []string{"pong"}
		}
		if diff := cmp.Diff(want, conn.sent); diff != "" {
			t.Errorf("DispatchEdits=%v: wrong replies (-want +got):\n%s", enabled, diff)
		}
	}
}
