// Package platform describes what the framework needs from a chat platform
// connection, and adapts a discordgo session to it.
package platform

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Event names delivered by a Connection. Any other discordgo event is
// delivered under its lowerCamel type name with the raw discordgo payload.
const (
	EventMessageCreate = "messageCreate"
	EventMessageUpdate = "messageUpdate"
	EventReady         = "ready"
	EventConnect       = "connect"
	EventDisconnect    = "disconnect"
)

// Permission is a bit set of channel permissions, using Discord's bit values.
type Permission int64

const (
	PermissionKickMembers    Permission = discordgo.PermissionKickMembers
	PermissionBanMembers     Permission = discordgo.PermissionBanMembers
	PermissionAdministrator  Permission = discordgo.PermissionAdministrator
	PermissionManageGuild    Permission = discordgo.PermissionManageServer
	PermissionSendMessages   Permission = discordgo.PermissionSendMessages
	PermissionManageMessages Permission = discordgo.PermissionManageMessages
)

// Has reports whether every bit of want is set in p.
func (p Permission) Has(want Permission) bool {
	return p&want == want
}

// User is an account on the platform.
type User struct {
	ID            string
	Username      string
	Discriminator string
	Bot           bool
}

// Tag returns username#discriminator, or just the username for accounts
// without a legacy discriminator.
func (u User) Tag() string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}

// Mention returns the text that mentions the user.
func (u User) Mention() string {
	return "<@" + u.ID + ">"
}

// Message is an inbound chat message.
type Message struct {
	ID        string
	ChannelID string
	GuildID   string // empty for direct messages
	Author    *User
	Content   string
	Mentions  []User
	Locale    string // preferred locale of the guild, if known
}

// IsPrivate reports whether the message was sent outside a guild.
func (m *Message) IsPrivate() bool {
	return m.GuildID == ""
}

// Ready is delivered once the connection knows its own identity.
type Ready struct {
	User User
}

// Sender sends text to a channel.
type Sender interface {
	SendMessage(ctx context.Context, channelID, text string) error
}

// Subscriber delivers named events to listeners.
type Subscriber interface {
	// Subscribe registers fn for the named event and returns a function that removes it.
	Subscribe(event string, fn func(payload any)) (remove func())
}

// PermissionResolver reports a user's effective permissions in a channel.
type PermissionResolver interface {
	Permissions(userID, channelID string) (Permission, error)
}

// Connection is the platform capability set the framework consumes.
type Connection interface {
	Sender
	Subscriber
	PermissionResolver
	Open() error
	Close() error
	// Self returns the connected account, or nil before the connection is ready.
	Self() *User
}
