package handlers

import (
	"context"
	"strings"
	"time"

	"GoCommando/core/command"
)

func blacklist(bot Bot, db Blacklister) *command.Definition {
	return &command.Definition{
		Name:        "blacklist",
		Aliases:     []string{"bl"},
		Description: "Stop a user from running any command",
		Usage:       "add|remove <user id> [reason] | list",
		Category:    "Admin",
		Config:      command.Config{OwnerOnly: true},
		Run: func(ctx context.Context, inv *command.Invocation) error {
			if len(inv.Args) == 0 {
				return inv.ReplyKey(ctx, "blacklist.usage", inv.Prefix, inv.Prefix)
			}
			switch strings.ToLower(inv.Args[0]) {
			case "list":
				return listBlacklist(ctx, inv, db)
			case "add":
				if len(inv.Args) < 2 {
					break
				}
				user := trimMention(inv.Args[1])
				if bot.IsOwner(user) {
					return inv.ReplyKey(ctx, "blacklist.owner")
				}
				reason := strings.Join(inv.Args[2:], " ")
				if _, err := db.AddBlacklist(ctx, user, reason, inv.Author.ID); err != nil {
					return err
				}
				return inv.ReplyKey(ctx, "blacklist.added", user)
			case "remove", "rm":
				if len(inv.Args) < 2 {
					break
				}
				user := trimMention(inv.Args[1])
				removed, err := db.RemoveBlacklist(ctx, user)
				if err != nil {
					return err
				}
				if !removed {
					return inv.ReplyKey(ctx, "blacklist.notListed", user)
				}
				return inv.ReplyKey(ctx, "blacklist.removed", user)
			}
			return inv.ReplyKey(ctx, "blacklist.usage", inv.Prefix, inv.Prefix)
		},
	}
}

func listBlacklist(ctx context.Context, inv *command.Invocation, db Blacklister) error {
	entries, err := db.Blacklist(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return inv.ReplyKey(ctx, "blacklist.empty")
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, inv.T("blacklist.entry", e.UserId, e.Since().UTC().Format(time.DateOnly), e.Reason))
	}
	return inv.ReplyToChannel(ctx, "%s", strings.Join(lines, "\n"))
}

// trimMention accepts <@id> and <@!id> as well as a bare id.
func trimMention(s string) string {
	s = strings.TrimPrefix(s, "<@")
	s = strings.TrimPrefix(s, "!")
	return strings.TrimSuffix(s, ">")
}
