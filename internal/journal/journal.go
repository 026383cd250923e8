// Package journal keeps an append-only SQLite log of registry
// mutations. The registry file stays the sole source of truth for
// totals; the journal only answers "what happened when".
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const dbFileName = "journal.db"

// Event types, one per mutating command.
const (
	EventCreate = "project.create"
	EventStart  = "track.start"
	EventStop   = "track.stop"
	EventReset  = "project.reset"
	EventRename = "project.rename"
	EventEdit   = "project.edit"
	EventDelete = "project.delete"
)

type Journal struct {
	DB  *sql.DB
	Now func() time.Time
}

// Event is one journal row.
type Event struct {
	ID      int64  `json:"id"`
	TS      string `json:"ts"`
	Type    string `json:"type"`
	Project string `json:"project,omitempty"`
	Payload string `json:"payload_json"`
}

// Payload is free-form event detail, stored as JSON.
type Payload map[string]any

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS events(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts TEXT NOT NULL,
		type TEXT NOT NULL,
		project TEXT,
		payload_json TEXT NOT NULL
	);`,
}

// Open opens (creating if needed) the journal database in dataDir and
// applies pending migrations.
func Open(dataDir string) (*Journal, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared", filepath.Join(dataDir, dbFileName))
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &Journal{DB: conn, Now: time.Now}, nil
}

func (j *Journal) Close() error {
	return j.DB.Close()
}

func migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS schema_version(version INTEGER NOT NULL);`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}
	var current int
	err = tx.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&current)
	if err == sql.ErrNoRows {
		if _, err := tx.Exec(`INSERT INTO schema_version(version) VALUES (0)`); err != nil {
			return fmt.Errorf("init schema_version: %w", err)
		}
		current = 0
	} else if err != nil {
		return fmt.Errorf("read schema_version: %w", err)
	}
	for i, stmt := range migrations {
		version := i + 1
		if version <= current {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", version, err)
		}
		if _, err := tx.Exec(`UPDATE schema_version SET version=?`, version); err != nil {
			return fmt.Errorf("update schema_version: %w", err)
		}
		current = version
	}
	return tx.Commit()
}

// Append records one event.
func (j *Journal) Append(ctx context.Context, evtType, project string, payload Payload) error {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	if payload == nil {
		payload = Payload{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, err = j.DB.ExecContext(ctx, `INSERT INTO events(ts,type,project,payload_json) VALUES (?,?,?,?)`,
		now().UTC().Format(time.RFC3339), evtType, nullable(project), string(data))
	return err
}

// Latest returns up to n events, newest first.
func (j *Journal) Latest(ctx context.Context, n int) ([]Event, error) {
	rows, err := j.DB.QueryContext(ctx,
		`SELECT id, ts, type, COALESCE(project,''), payload_json FROM events ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &e.Project, &e.Payload); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
