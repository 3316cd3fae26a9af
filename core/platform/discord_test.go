package platform

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"
)

func TestEventName(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{&discordgo.MessageReactionAdd{}, "messageReactionAdd"},
		{&discordgo.GuildCreate{}, "guildCreate"},
		{&discordgo.RateLimit{}, "rateLimit"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := eventName(tt.in); got != tt.want {
				t.Errorf("eventName(%T) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUserTag(t *testing.T) {
	tests := []struct {
		user User
		want string
	}{
		{User{Username: "GoBot", Discriminator: "0001"}, "GoBot#0001"},
		{User{Username: "GoBot", Discriminator: "0"}, "GoBot"},
		{User{Username: "GoBot"}, "GoBot"},
	}
	for _, tt := range tests {
		if got := tt.user.Tag(); got != tt.want {
			t.Errorf("Tag() = %q, want %q", got, tt.want)
		}
	}
}

func TestPermissionHas(t *testing.T) {
	p := PermissionSendMessages | PermissionManageMessages
	if !p.Has(PermissionManageMessages) {
		t.Error("expected ManageMessages to be set")
	}
	if p.Has(PermissionManageMessages | PermissionBanMembers) {
		t.Error("expected combined check with BanMembers to fail")
	}
	if !p.Has(0) {
		t.Error("empty requirement must always be satisfied")
	}
}

func TestDiscordFanOut(t *testing.T) {
	d := WrapDiscord(&discordgo.Session{})

	var got []*Message
	remove := d.Subscribe(EventMessageCreate, func(payload any) {
		got = append(got, payload.(*Message))
	})
	var readies int
	d.Subscribe(EventReady, func(payload any) { readies++ })

	d.onEvent(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   "!ping",
		Author:    &discordgo.User{ID: "u1", Username: "someone", Discriminator: "1234"},
	}})

	want := []*Message{{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   "!ping",
		Author:    &User{ID: "u1", Username: "someone", Discriminator: "1234"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong messages (-want +got):\n%s", diff)
	}

	if d.Self() != nil {
		t.Fatal("Self must be nil before ready")
	}
	d.onEvent(nil, &discordgo.Ready{User: &discordgo.User{ID: "bot", Username: "GoCommando", Discriminator: "0042"}})
	if readies != 1 {
		t.Errorf("expected 1 ready event, got %d", readies)
	}
	if self := d.Self(); self == nil || self.ID != "bot" || self.Tag() != "GoCommando#0042" {
		t.Errorf("wrong self after ready: %#v", self)
	}

	remove()
	remove()
	d.onEvent(nil, &discordgo.MessageCreate{Message: &discordgo.Message{Content: "again"}})
	if len(got) != 1 {
		t.Errorf("listener still called after removal, got %d messages", len(got))
	}
}
