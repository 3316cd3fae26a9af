package command

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"GoCommando/core/platform"
)

type sent struct {
	channel, text string
}

type recorder struct {
	msgs []sent
}

func (r *recorder) SendMessage(_ context.Context, channelID, text string) error {
	r.msgs = append(r.msgs, sent{channelID, text})
	return nil
}

// printfTranslator renders keys from a fixed table with fmt.
type printfTranslator map[string]string

func (p printfTranslator) Translate(_, key string, args ...any) (string, error) {
	f, ok := p[key]
	if !ok {
		return "", fmt.Errorf("missing %s", key)
	}
	return fmt.Sprintf(f, args...), nil
}

var helpStrings = printfTranslator{
	"help.header":        "Commands (%s):",
	"help.category":      "%s: %s",
	"help.uncategorized": "General",
	"help.detail":        "%s%s %s - %s",
	"help.aliases":       "aliases: %s",
	"help.cooldown":      "cooldown: %s",
	"help.unknown":       "no such command %s",
}

func invoke(t *testing.T, d *Definition, author string, args ...string) string {
	t.Helper()
	rec := &recorder{}
	inv := &Invocation{
		Message:    &platform.Message{ChannelID: "chan"},
		Command:    d,
		Args:       args,
		Author:     platform.User{ID: author},
		Prefix:     "!",
		Sender:     rec,
		Translator: helpStrings,
	}
	if err := d.Run(context.Background(), inv); err != nil {
		t.Fatalf("help failed: %v", err)
	}
	if len(rec.msgs) != 1 || rec.msgs[0].channel != "chan" {
		t.Fatalf("expected one reply to chan, got %#v", rec.msgs)
	}
	return rec.msgs[0].text
}

func TestHelpListsByCategory(t *testing.T) {
	r := NewRegistry()
	isOwner := func(id string) bool { return id == "owner" }
	help := HelpCommand(r, isOwner)
	secret := def("shutdown")
	secret.Config.OwnerOnly = true
	secret.Category = "Admin"
	off := def("broken")
	off.Config.Disabled = true
	fun := def("roll")
	fun.Category = "Fun"
	if err := r.Register(help, def("ping"), fun, secret, off); err != nil {
		t.Fatal(err)
	}

	got := invoke(t, help, "someone")
	want := "Commands (!):\nCore: `!help`\nFun: `!roll`\nGeneral: `!ping`"
	if got != want {
		t.Errorf("wrong listing:\n%s\nwant:\n%s", got, want)
	}

	got = invoke(t, help, "owner")
	if !strings.Contains(got, "Admin: `!shutdown`") {
		t.Errorf("owner listing lacks owner-only command:\n%s", got)
	}
	if strings.Contains(got, "broken") {
		t.Errorf("disabled command listed:\n%s", got)
	}
}

func TestHelpDescribe(t *testing.T) {
	r := NewRegistry()
	help := HelpCommand(r, nil)
	ping := def("ping", "pong")
	ping.Usage = "[text]"
	ping.Description = "Check the bot is alive."
	ping.Config.Cooldown = 5 * time.Second
	if err := r.Register(help, ping); err != nil {
		t.Fatal(err)
	}

	got := invoke(t, help, "someone", "PONG")
	want := "!ping [text] - Check the bot is alive.\naliases: pong\ncooldown: 5s"
	if got != want {
		t.Errorf("wrong detail:\n%s\nwant:\n%s", got, want)
	}

	if got := invoke(t, help, "someone", "nope"); got != "no such command nope" {
		t.Errorf("wrong unknown reply: %q", got)
	}
}
