// Package persistence provides SQLite-based storage for campaign state
// snapshots and the journal. The snapshot is whole-state and
// non-incremental: each save fully replaces the previous one inside a
// transaction, and a load rebuilds an equivalent in-memory state.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/voxhall/muster/internal/engine"
	"github.com/voxhall/muster/internal/journal"
)

// ErrNoSnapshot indicates no snapshot has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// DB wraps a SQLite connection for campaign persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshot (
		key TEXT PRIMARY KEY,
		state_json TEXT NOT NULL,
		saved_day TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS axes (
		subject TEXT NOT NULL,
		axis TEXT NOT NULL,
		value INTEGER NOT NULL,
		PRIMARY KEY (subject, axis)
	);

	CREATE TABLE IF NOT EXISTS journal (
		id TEXT PRIMARY KEY,
		at TEXT NOT NULL,
		day TEXT NOT NULL,
		kind TEXT NOT NULL,
		event_id INTEGER NOT NULL,
		token TEXT NOT NULL,
		message TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_journal_day ON journal(day);
	CREATE INDEX IF NOT EXISTS idx_journal_kind ON journal(kind);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveSnapshot replaces the stored snapshot with the given state. The
// axes table is also rewritten row-per-value for ad hoc inspection; the
// JSON blob is the authoritative restore source.
func (db *DB) SaveSnapshot(st engine.State) error {
	blob, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO snapshot (key, state_json, saved_day) VALUES ('current', ?, ?)
		 ON CONFLICT(key) DO UPDATE SET state_json = excluded.state_json, saved_day = excluded.saved_day`,
		string(blob), st.Date.String(),
	); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM axes"); err != nil {
		return err
	}
	stmt, err := tx.Preparex("INSERT INTO axes (subject, axis, value) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for subject, vals := range st.Axes.Values {
		for axisName, v := range vals {
			if _, err := stmt.Exec(string(subject), axisName, v); err != nil {
				return fmt.Errorf("insert axis %s/%s: %w", subject, axisName, err)
			}
		}
	}

	return tx.Commit()
}

// LoadSnapshot reads the stored snapshot, or ErrNoSnapshot.
func (db *DB) LoadSnapshot() (engine.State, error) {
	var blob string
	err := db.conn.Get(&blob, "SELECT state_json FROM snapshot WHERE key = 'current'")
	if errors.Is(err, sql.ErrNoRows) {
		return engine.State{}, ErrNoSnapshot
	}
	if err != nil {
		return engine.State{}, fmt.Errorf("load snapshot: %w", err)
	}

	var st engine.State
	if err := json.Unmarshal([]byte(blob), &st); err != nil {
		return engine.State{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return st, nil
}

// HasSnapshot reports whether a snapshot exists.
func (db *DB) HasSnapshot() bool {
	var n int
	if err := db.conn.Get(&n, "SELECT COUNT(*) FROM snapshot WHERE key = 'current'"); err != nil {
		return false
	}
	return n > 0
}

// AppendJournal persists one journal record. Wired as a journal
// observer so records land as they are appended.
func (db *DB) AppendJournal(rec journal.Record) error {
	_, err := db.conn.Exec(
		"INSERT OR IGNORE INTO journal (id, at, day, kind, event_id, token, message) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.At, rec.Day, string(rec.Kind), rec.EventID, rec.Token, rec.Message,
	)
	return err
}

// JournalRow is the scan target for stored journal records.
type JournalRow struct {
	ID      string `db:"id"`
	At      string `db:"at"`
	Day     string `db:"day"`
	Kind    string `db:"kind"`
	EventID int    `db:"event_id"`
	Token   string `db:"token"`
	Message string `db:"message"`
}

// RecentJournal returns up to limit stored records, newest first.
func (db *DB) RecentJournal(limit int) ([]JournalRow, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []JournalRow
	err := db.conn.Select(&rows, "SELECT id, at, day, kind, event_id, token, message FROM journal ORDER BY at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}
	return rows, nil
}
