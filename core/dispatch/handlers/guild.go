package handlers

import (
	"context"

	"GoCommando/core"
	"GoCommando/core/events"

	"github.com/bwmarrin/discordgo"
)

func guildEvents() []events.Binding {
	return []events.Binding{
		{Event: "guildCreate", Name: "guildJoinLog", Handler: func(_ context.Context, payload any) error {
			if g, ok := payload.(*discordgo.GuildCreate); ok && g.Guild != nil {
				core.LogInfoF("Available in guild %s (%s), %d members", g.Name, g.ID, g.MemberCount)
			}
			return nil
		}},
		{Event: "guildDelete", Name: "guildLeaveLog", Handler: func(_ context.Context, payload any) error {
			if g, ok := payload.(*discordgo.GuildDelete); ok && g.Guild != nil {
				core.LogInfoF("Removed from guild %s", g.ID)
			}
			return nil
		}},
	}
}
