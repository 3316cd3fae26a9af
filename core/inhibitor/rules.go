package inhibitor

import (
	"context"
	"strings"
	"sync"
	"time"

	"GoCommando/core/command"
	"GoCommando/core/platform"

	"github.com/thoas/go-funk"
	"golang.org/x/time/rate"
)

// Default priorities of the built-in rules.
const (
	PriorityDisabled    = 0
	PriorityBlacklist   = 10
	PriorityOwnerOnly   = 20
	PriorityGuildOnly   = 30
	PriorityPermissions = 40
	PriorityCooldown    = 100
)

// Disabled denies commands whose config marks them disabled.
func Disabled() *Rule {
	return &Rule{
		Name:     "disabled",
		Priority: PriorityDisabled,
		Check: func(_ context.Context, inv *command.Invocation) (Decision, error) {
			if inv.Command.Config.Disabled {
				return Deny("inhibitor.disabled", inv.Command.Name), nil
			}
			return Allow(), nil
		},
	}
}

// BlacklistStore reports whether a user is barred from every command.
type BlacklistStore interface {
	IsBlacklisted(ctx context.Context, userID string) (bool, error)
}

// Blacklist silently drops invocations from blacklisted users.
func Blacklist(store BlacklistStore) *Rule {
	return &Rule{
		Name:     "blacklist",
		Priority: PriorityBlacklist,
		Check: func(ctx context.Context, inv *command.Invocation) (Decision, error) {
			listed, err := store.IsBlacklisted(ctx, inv.Author.ID)
			if err != nil {
				return Decision{}, err
			}
			if listed {
				return DenySilently("inhibitor.blacklisted"), nil
			}
			return Allow(), nil
		},
	}
}

// OwnerOnly restricts owner-only commands to the configured owners.
func OwnerOnly(isOwner func(userID string) bool) *Rule {
	return &Rule{
		Name:     "ownerOnly",
		Priority: PriorityOwnerOnly,
		Check: func(_ context.Context, inv *command.Invocation) (Decision, error) {
			if inv.Command.Config.OwnerOnly && !isOwner(inv.Author.ID) {
				return Deny("inhibitor.ownerOnly"), nil
			}
			return Allow(), nil
		},
	}
}

// GuildOnly denies guild-only commands sent in direct messages.
func GuildOnly() *Rule {
	return &Rule{
		Name:     "guildOnly",
		Priority: PriorityGuildOnly,
		Check: func(_ context.Context, inv *command.Invocation) (Decision, error) {
			if inv.Command.Config.GuildOnly && inv.Message.IsPrivate() {
				return Deny("inhibitor.guildOnly"), nil
			}
			return Allow(), nil
		},
	}
}

type permissionName struct {
	perm platform.Permission
	name string
}

var permissionNames = []permissionName{
	{platform.PermissionAdministrator, "Administrator"},
	{platform.PermissionManageGuild, "Manage Server"},
	{platform.PermissionKickMembers, "Kick Members"},
	{platform.PermissionBanMembers, "Ban Members"},
	{platform.PermissionManageMessages, "Manage Messages"},
	{platform.PermissionSendMessages, "Send Messages"},
}

// MissingPermissions names the bits of want that have is lacking.
func MissingPermissions(have, want platform.Permission) []string {
	missing := want &^ have
	named := funk.Filter(permissionNames, func(p permissionName) bool {
		return missing&p.perm != 0
	}).([]permissionName)
	out := make([]string, 0, len(named))
	for _, p := range named {
		out = append(out, p.name)
		missing &^= p.perm
	}
	if missing != 0 {
		out = append(out, "other")
	}
	return out
}

// Permissions requires the author to hold every permission the command
// lists, in the channel of the message. Commands without requirements pass;
// requirements cannot be met in direct messages or when the permissions
// cannot be determined.
func Permissions(resolver platform.PermissionResolver) *Rule {
	return &Rule{
		Name:     "permissions",
		Priority: PriorityPermissions,
		Check: func(_ context.Context, inv *command.Invocation) (Decision, error) {
			want := inv.Command.Config.RequiredPermissions
			if want == 0 {
				return Allow(), nil
			}
			if inv.Message.IsPrivate() {
				return Deny("inhibitor.guildOnly"), nil
			}
			have, err := resolver.Permissions(inv.Author.ID, inv.Message.ChannelID)
			if err != nil {
				return Deny("inhibitor.permissionsUnknown"), err
			}
			if !have.Has(want) {
				return Deny("inhibitor.missingPermissions", strings.Join(MissingPermissions(have, want), ", ")), nil
			}
			return Allow(), nil
		},
	}
}

// Cooldown rate limits each user per command to one use per the command's
// cooldown. The check consumes the use, so the rule runs after every other
// built-in rule.
type Cooldown struct {
	mu       sync.Mutex
	limiters map[cooldownKey]*rate.Limiter
	now      func() time.Time
	bypass   func(userID string) bool
}

type cooldownKey struct {
	user, command string
}

// NewCooldown creates the cooldown state. bypass may be nil; now defaults to time.Now.
func NewCooldown(now func() time.Time, bypass func(userID string) bool) *Cooldown {
	if now == nil {
		now = time.Now
	}
	return &Cooldown{
		limiters: map[cooldownKey]*rate.Limiter{},
		now:      now,
		bypass:   bypass,
	}
}

// Rule returns the inhibitor backed by c.
func (c *Cooldown) Rule() *Rule {
	return &Rule{
		Name:     "cooldown",
		Priority: PriorityCooldown,
		Check:    c.check,
	}
}

func (c *Cooldown) check(_ context.Context, inv *command.Invocation) (Decision, error) {
	every := inv.Command.Config.Cooldown
	if every <= 0 || (c.bypass != nil && c.bypass(inv.Author.ID)) {
		return Allow(), nil
	}

	key := cooldownKey{inv.Author.ID, inv.Command.Name}
	c.mu.Lock()
	defer c.mu.Unlock()
	lim := c.limiters[key]
	if lim == nil {
		lim = rate.NewLimiter(rate.Every(every), 1)
		c.limiters[key] = lim
	}
	t := c.now()
	r := lim.ReserveN(t, 1)
	if d := r.DelayFrom(t); d > 0 {
		r.CancelAt(t)
		return Deny("inhibitor.cooldown", inv.Command.Name, d.Seconds()), nil
	}
	return Allow(), nil
}

// Sweep forgets users whose cooldown has fully elapsed and returns how many
// were removed.
func (c *Cooldown) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now()
	n := 0
	for key, lim := range c.limiters {
		if lim.TokensAt(t) >= float64(lim.Burst()) {
			delete(c.limiters, key)
			n++
		}
	}
	return n
}

// Len returns the number of tracked user/command pairs.
func (c *Cooldown) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.limiters)
}
