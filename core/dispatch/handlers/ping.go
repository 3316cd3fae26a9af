package handlers

import (
	"context"
	"strings"

	"GoCommando/core/command"
)

func ping() *command.Definition {
	return &command.Definition{
		Name:        "ping",
		Aliases:     []string{"pong"},
		Description: "Simple command to check that bot is alive",
		Usage:       "[text]",
		Category:    "Core",
		Run: func(ctx context.Context, inv *command.Invocation) error {
			if len(inv.Args) == 0 {
				return inv.ReplyKey(ctx, "ping.reply")
			}
			return inv.ReplyKey(ctx, "ping.echo", strings.Join(inv.Args, " "))
		},
	}
}
