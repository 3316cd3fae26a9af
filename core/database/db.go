// Package database persists bot state in sqlite.
package database

import (
	"fmt"
	"sync"

	"GoCommando/core"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

var schema = `
CREATE TABLE IF NOT EXISTS blacklist ( user_id VARCHAR PRIMARY KEY, reason VARCHAR NOT NULL DEFAULT '', added_by VARCHAR NOT NULL DEFAULT '', created_at INTEGER NOT NULL );
CREATE INDEX IF NOT EXISTS blacklist_created_index ON blacklist (created_at);
`

// DB is the bot's database.
type DB struct {
	db *sqlx.DB
	mu sync.RWMutex
}

// Open connects to the sqlite database at dsn, ":memory:" for a throwaway
// one, and creates the schema.
func Open(dsn string) (*DB, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dsn, err)
	}
	// sqlite has a single writer, and every connection to :memory: is a
	// separate database.
	db.SetMaxOpenConns(1)

	// multi-statement Exec behavior varies between database drivers; sqlite3 runs them all
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	core.LogDebugF("Opened database %s", dsn)
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}
