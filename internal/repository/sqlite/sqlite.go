// Package sqlite implements the repository interfaces over SQLite.
//
// The driver is modernc.org/sqlite — a pure-Go translation of SQLite, so
// there is no CGo in the build and cross-compilation stays trivial. The
// database lives in a single file (or ":memory:" in tests).
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps the sql.DB pool and hands out per-entity repositories that share
// it. The server owns the DB and closes it on shutdown.
type DB struct {
	conn *sql.DB
}

// New opens the database, applies pragmas and runs migrations.
//
// dbPath is a file path, or ":memory:" for an in-memory database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Surface bad paths/permissions now instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in flight — required for
	// a web server. Foreign keys are off by default in SQLite.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Defer this wherever New is called.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Users returns the user repository backed by this database.
func (db *DB) Users() *UserRepo {
	return &UserRepo{conn: db.conn}
}

// Subscriptions returns the read-only subscription repository.
func (db *DB) Subscriptions() *SubscriptionRepo {
	return &SubscriptionRepo{conn: db.conn}
}

// Videos returns the video/watch-history repository.
func (db *DB) Videos() *VideoRepo {
	return &VideoRepo{conn: db.conn}
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this
// idempotent, so it is safe to run on every start.
//
// users holds the entity this service owns. videos and subscriptions are
// externally owned collections this service reads for the profile and
// watch-history views; their writers live in other services sharing the
// database file.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id              TEXT PRIMARY KEY,
			username        TEXT NOT NULL UNIQUE,
			email           TEXT NOT NULL UNIQUE,
			full_name       TEXT NOT NULL,
			password_hash   TEXT NOT NULL,
			avatar_url      TEXT NOT NULL,
			avatar_id       TEXT NOT NULL DEFAULT '',
			cover_image_url TEXT NOT NULL DEFAULT '',
			cover_image_id  TEXT NOT NULL DEFAULT '',
			refresh_token   TEXT NOT NULL DEFAULT '',
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
		CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS videos (
			id            TEXT PRIMARY KEY,
			owner_id      TEXT NOT NULL REFERENCES users(id),
			title         TEXT NOT NULL,
			description   TEXT NOT NULL DEFAULT '',
			video_url     TEXT NOT NULL,
			thumbnail_url TEXT NOT NULL DEFAULT '',
			duration      REAL NOT NULL DEFAULT 0,
			views         INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_videos_owner_id ON videos(owner_id);
	`)
	if err != nil {
		return fmt.Errorf("creating videos table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS subscriptions (
			id            TEXT PRIMARY KEY,
			subscriber_id TEXT NOT NULL REFERENCES users(id),
			channel_id    TEXT NOT NULL REFERENCES users(id),
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(subscriber_id, channel_id)
		);
		CREATE INDEX IF NOT EXISTS idx_subscriptions_channel ON subscriptions(channel_id);
		CREATE INDEX IF NOT EXISTS idx_subscriptions_subscriber ON subscriptions(subscriber_id);
	`)
	if err != nil {
		return fmt.Errorf("creating subscriptions table: %w", err)
	}

	// watch_history keeps an explicit position per user so the sequence
	// stays ordered regardless of timestamps.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS watch_history (
			user_id    TEXT NOT NULL REFERENCES users(id),
			video_id   TEXT NOT NULL REFERENCES videos(id),
			position   INTEGER NOT NULL,
			watched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, position)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating watch_history table: %w", err)
	}

	return nil
}
