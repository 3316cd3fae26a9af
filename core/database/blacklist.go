package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"GoCommando/core"
)

// BlacklistEntry is a user barred from running commands.
type BlacklistEntry struct {
	UserId    string `db:"user_id"`
	Reason    string
	AddedBy   string `db:"added_by"`
	CreatedAt int64  `db:"created_at"`
}

func (e BlacklistEntry) Since() time.Time {
	return time.Unix(e.CreatedAt, 0)
}

// AddBlacklist bars userID, replacing the reason of an existing entry.
// Returns true if the user was not listed before.
func (d *DB) AddBlacklist(ctx context.Context, userID, reason, addedBy string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var existing int
	err := d.db.GetContext(ctx, &existing, "SELECT COUNT(*) FROM blacklist WHERE user_id=$1", userID)
	if err != nil {
		return false, err
	}
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO blacklist (user_id, reason, added_by, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT(user_id) DO UPDATE SET reason=excluded.reason, added_by=excluded.added_by`,
		userID, reason, addedBy, time.Now().Unix())
	if err != nil {
		return false, err
	}
	core.LogInfoF("Blacklisted %s (by %s): %s", userID, addedBy, reason)
	return existing == 0, nil
}

// RemoveBlacklist lifts the bar on userID. Returns false if it was not listed.
func (d *DB) RemoveBlacklist(ctx context.Context, userID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := d.db.ExecContext(ctx, "DELETE FROM blacklist WHERE user_id=$1", userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		core.LogInfoF("Removed %s from the blacklist", userID)
	}
	return n > 0, nil
}

// IsBlacklisted implements inhibitor.BlacklistStore.
func (d *DB) IsBlacklisted(ctx context.Context, userID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var id string
	err := d.db.GetContext(ctx, &id, "SELECT user_id FROM blacklist WHERE user_id=$1", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Blacklist returns every entry, oldest first.
func (d *DB) Blacklist(ctx context.Context) ([]BlacklistEntry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var entries []BlacklistEntry
	err := d.db.SelectContext(ctx, &entries, "SELECT * FROM blacklist ORDER BY created_at ASC, user_id ASC")
	if err != nil {
		return nil, err
	}
	return entries, nil
}
