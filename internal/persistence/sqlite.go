package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/suderio/roundkeeper/internal/engine"
)

// SQLiteStore keeps one snapshot row per encounter name.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates the database file (and its parent directory) if needed and
// applies the schema migrations.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func applyMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations(version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM schema_migrations WHERE version = ?`, m.Version).Scan(&exists)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx for migration %d: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, m.UpSQL); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("apply migration %d: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version, applied_at) VALUES (?, ?)`, m.Version, time.Now().UTC().Format(time.RFC3339)); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}

type migration struct {
	Version int
	UpSQL   string
}

var migrations = []migration{
	{
		Version: 1,
		UpSQL: `
CREATE TABLE IF NOT EXISTS encounters (
	name TEXT PRIMARY KEY,
	round INTEGER NOT NULL,
	ended INTEGER NOT NULL DEFAULT 0,
	snapshot_json TEXT NOT NULL,
	saved_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS encounters_saved_at
ON encounters(saved_at DESC);
`,
	},
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, name string, snap engine.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO encounters(name, round, ended, snapshot_json, saved_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
	round=excluded.round,
	ended=excluded.ended,
	snapshot_json=excluded.snapshot_json,
	saved_at=excluded.saved_at
`, name, snap.CurrentRound, boolToInt(snap.Ended), string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert encounter: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadSnapshot(ctx context.Context, name string) (engine.Snapshot, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT snapshot_json FROM encounters WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Snapshot{}, fmt.Errorf("encounter %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("load encounter: %w", err)
	}
	var snap engine.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return engine.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}

func (s *SQLiteStore) ListEncounters(ctx context.Context) ([]EncounterInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, round, ended, saved_at FROM encounters ORDER BY saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list encounters: %w", err)
	}
	defer rows.Close()

	var out []EncounterInfo
	for rows.Next() {
		var info EncounterInfo
		var ended int
		var savedAt string
		if err := rows.Scan(&info.Name, &info.Round, &ended, &savedAt); err != nil {
			return nil, fmt.Errorf("scan encounter: %w", err)
		}
		info.Ended = ended != 0
		if t, perr := time.Parse(time.RFC3339, savedAt); perr == nil {
			info.SavedAt = t
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteEncounter(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM encounters WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete encounter: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("encounter %s: %w", name, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
