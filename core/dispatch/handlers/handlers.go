// Package handlers holds the built-in commands and event handlers of the
// example bot.
package handlers

import (
	"context"
	"time"

	"GoCommando/core/database"
	"GoCommando/core/loader"
)

// Bot is what the built-in commands need from the client.
type Bot interface {
	IsOwner(userID string) bool
	Tag() string
	Uptime() time.Duration
}

// Blacklister manages the blacklist. *database.DB implements it.
type Blacklister interface {
	AddBlacklist(ctx context.Context, userID, reason, addedBy string) (bool, error)
	RemoveBlacklist(ctx context.Context, userID string) (bool, error)
	Blacklist(ctx context.Context) ([]database.BlacklistEntry, error)
}

// Register files the built-in definitions under the given loader paths.
// The blacklist command is left out when db is nil.
func Register(cat *loader.Catalog, commandPath, eventPath string, bot Bot, db Blacklister) {
	cat.AddCommands(commandPath, ping(), ident(), uptime(bot))
	if db != nil {
		cat.AddCommands(commandPath+"/admin", blacklist(bot, db))
	}
	cat.AddEvents(eventPath, guildEvents()...)
}
