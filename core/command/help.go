package command

import (
	"context"
	"sort"
	"strings"

	"github.com/thoas/go-funk"
)

// HelpCommand builds the default help command over reg. Owner-only commands
// are listed only to owners when isOwner is set.
func HelpCommand(reg *Registry, isOwner func(userID string) bool) *Definition {
	h := &help{registry: reg, isOwner: isOwner}
	return &Definition{
		Name:        "help",
		Aliases:     []string{"commands", "h"},
		Description: "List commands, or show details for one command.",
		Usage:       "[command]",
		Category:    "Core",
		Run:         h.run,
	}
}

type help struct {
	registry *Registry
	isOwner  func(string) bool
}

func (h *help) run(ctx context.Context, inv *Invocation) error {
	if len(inv.Args) > 0 {
		return h.describe(ctx, inv, inv.Args[0])
	}
	return h.list(ctx, inv)
}

func (h *help) visible(inv *Invocation, def *Definition) bool {
	if def.Config.Disabled {
		return false
	}
	if def.Config.OwnerOnly && (h.isOwner == nil || !h.isOwner(inv.Author.ID)) {
		return false
	}
	return true
}

func (h *help) list(ctx context.Context, inv *Invocation) error {
	byCategory := map[string][]*Definition{}
	for def := range h.registry.List() {
		if !h.visible(inv, def) {
			continue
		}
		category := def.Category
		if category == "" {
			category = inv.T("help.uncategorized")
		}
		byCategory[category] = append(byCategory[category], def)
	}

	categories := funk.Keys(byCategory).([]string)
	sort.Strings(categories)

	lines := []string{inv.T("help.header", inv.Prefix)}
	for _, category := range categories {
		names := funk.Map(byCategory[category], func(def *Definition) string {
			return "`" + inv.Prefix + def.Name + "`"
		}).([]string)
		lines = append(lines, inv.T("help.category", category, strings.Join(names, ", ")))
	}
	return inv.Sender.SendMessage(ctx, inv.Message.ChannelID, strings.Join(lines, "\n"))
}

func (h *help) describe(ctx context.Context, inv *Invocation, name string) error {
	def, err := h.registry.Resolve(name)
	if err != nil || !h.visible(inv, def) {
		return inv.ReplyKey(ctx, "help.unknown", name)
	}

	lines := []string{inv.T("help.detail", inv.Prefix, def.Name, def.Usage, def.Description)}
	if len(def.Aliases) > 0 {
		lines = append(lines, inv.T("help.aliases", strings.Join(def.Aliases, ", ")))
	}
	if def.Config.Cooldown > 0 {
		lines = append(lines, inv.T("help.cooldown", def.Config.Cooldown.String()))
	}
	return inv.Sender.SendMessage(ctx, inv.Message.ChannelID, strings.Join(lines, "\n"))
}
