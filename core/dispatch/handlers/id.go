package handlers

import (
	"context"
	"strings"

	"GoCommando/core/command"
	"GoCommando/core/platform"

	"github.com/thoas/go-funk"
)

func ident() *command.Definition {
	return &command.Definition{
		Name:        "id",
		Description: "Return Discord ID for the user, or all @mentioned users",
		Usage:       "[@user...]",
		Category:    "Core",
		Run: func(ctx context.Context, inv *command.Invocation) error {
			users := []platform.User{inv.Author}
			if len(inv.Args) > 0 {
				users = inv.Message.Mentions
			}
			if len(users) == 0 {
				return inv.ReplyKey(ctx, "id.none")
			}
			lines := funk.Map(users, func(u platform.User) string {
				return inv.T("id.line", u.Username, u.ID)
			}).([]string)
			return inv.ReplyToChannel(ctx, "%s\n\t%s", inv.T("id.header"), strings.Join(lines, "\n\t"))
		},
	}
}
