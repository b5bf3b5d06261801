package main

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database used for accounts and career stats. World
// state is never persisted; only out-of-band bookkeeping lives here.
type DB struct {
	conn *sql.DB
}

// AccountRow represents a registered account
type AccountRow struct {
	ID        int64
	Username  string
	PassHash  string
	CreatedAt time.Time
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL for concurrent reads while the analytics writer inserts
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS stats (
		player_id INTEGER PRIMARY KEY,
		kills INTEGER NOT NULL DEFAULT 0,
		deaths INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		actor INTEGER NOT NULL DEFAULT 0,
		target INTEGER NOT NULL DEFAULT 0,
		tick INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// CreateAccount inserts a new account; fails on duplicate username
func (db *DB) CreateAccount(username, passHash string) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO accounts (username, pass_hash) VALUES (?, ?)",
		username, passHash)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetAccountByUsername returns an account or nil when absent
func (db *DB) GetAccountByUsername(username string) (*AccountRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, pass_hash, created_at FROM accounts WHERE username = ?",
		username)
	var a AccountRow
	if err := row.Scan(&a.ID, &a.Username, &a.PassHash, &a.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// AddKill increments a player's career kill counter
func (db *DB) AddKill(playerID uint32) error {
	_, err := db.conn.Exec(`
		INSERT INTO stats (player_id, kills) VALUES (?, 1)
		ON CONFLICT(player_id) DO UPDATE SET kills = kills + 1`,
		int64(playerID))
	return err
}

// AddDeath increments a player's career death counter
func (db *DB) AddDeath(playerID uint32) error {
	_, err := db.conn.Exec(`
		INSERT INTO stats (player_id, deaths) VALUES (?, 1)
		ON CONFLICT(player_id) DO UPDATE SET deaths = deaths + 1`,
		int64(playerID))
	return err
}

// GetStats returns a player's career kill and death counters
func (db *DB) GetStats(playerID uint32) (kills, deaths int, err error) {
	row := db.conn.QueryRow(
		"SELECT kills, deaths FROM stats WHERE player_id = ?", int64(playerID))
	if err = row.Scan(&kills, &deaths); err == sql.ErrNoRows {
		return 0, 0, nil
	}
	return kills, deaths, err
}

// InsertEvent appends one analytics event
func (db *DB) InsertEvent(evtType string, actor, target uint32, tick uint32, at time.Time) error {
	_, err := db.conn.Exec(
		"INSERT INTO events (type, actor, target, tick, created_at) VALUES (?, ?, ?, ?, ?)",
		evtType, int64(actor), int64(target), int64(tick), at)
	return err
}

// GetSetting returns the value for a key, or "" when absent
func (db *DB) GetSetting(key string) string {
	var v string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v)
	if err != nil {
		return ""
	}
	return v
}

// SetSetting upserts a settings key
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}
