package handlers

import (
	"context"

	"GoCommando/core"
	"GoCommando/core/command"
)

func uptime(bot Bot) *command.Definition {
	return &command.Definition{
		Name:        "uptime",
		Aliases:     []string{"up"},
		Description: "Show how long the bot has been connected",
		Category:    "Core",
		Run: func(ctx context.Context, inv *command.Invocation) error {
			return inv.ReplyKey(ctx, "uptime.reply", core.FormatDuration(bot.Uptime()), bot.Tag())
		},
	}
}
