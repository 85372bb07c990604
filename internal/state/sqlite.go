package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer keeps last-write-wins ordering on a single connection.
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv_records (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_ts TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS unlock_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			achievement_id TEXT NOT NULL,
			session_id TEXT NOT NULL DEFAULT '',
			unlocked_ts TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.db == nil {
		return nil, false, ErrClosed
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT value FROM kv_records WHERE key = ?`, key)
	var value []byte
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	if s.db == nil {
		return ErrClosed
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_records(key, value, updated_ts) VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_ts = excluded.updated_ts
	`, key, value, time.Now().UTC().Format(timeLayout))
	return err
}

// AppendUnlock records when and in which session an achievement fired. The
// unlocked set itself stays in the kv record; this is history only.
func (s *SQLiteStore) AppendUnlock(ctx context.Context, entry UnlockEntry) error {
	if s.db == nil {
		return ErrClosed
	}
	id := strings.TrimSpace(entry.AchievementID)
	if id == "" {
		return nil
	}
	ts := entry.UnlockedTS
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO unlock_log(achievement_id, session_id, unlocked_ts) VALUES(?,?,?)`,
		id, entry.SessionID, ts.UTC().Format(timeLayout),
	)
	return err
}

func (s *SQLiteStore) UnlockHistory(ctx context.Context) ([]UnlockEntry, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT achievement_id, session_id, unlocked_ts
		FROM unlock_log
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []UnlockEntry{}
	for rows.Next() {
		var (
			entry UnlockEntry
			tsRaw string
		)
		if err := rows.Scan(&entry.AchievementID, &entry.SessionID, &tsRaw); err != nil {
			return nil, err
		}
		if t, err := time.Parse(timeLayout, tsRaw); err == nil {
			entry.UnlockedTS = t
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

const timeLayout = "2006-01-02T15:04:05Z07:00"
