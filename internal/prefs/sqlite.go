package prefs

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const defaultPollInterval = 2 * time.Second

// SQLiteStore keeps preferences in a SQLite table, one row per area and key.
type SQLiteStore struct {
	db           *sqlx.DB
	area         Area
	pollInterval time.Duration
	logger       zerolog.Logger

	mu    sync.Mutex
	cache map[string]json.RawMessage

	notifier
}

type prefRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// NewSQLiteStore opens path and applies pending migrations. A zero
// pollInterval picks the default used by Watch.
func NewSQLiteStore(path string, area Area, pollInterval time.Duration, logger zerolog.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sqlx.Connect("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path))
	if err != nil {
		return nil, fmt.Errorf("connecting to prefs db: %w", err)
	}
	db.SetMaxOpenConns(1)

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting migration dialect: %w", err)
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying migrations: %w", err)
	}

	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	s := &SQLiteStore{
		db:           db,
		area:         area,
		pollInterval: pollInterval,
		logger:       logger.With().Str("component", "prefs").Str("path", path).Logger(),
	}
	snapshot, err := s.snapshot(context.Background())
	if err != nil {
		db.Close()
		return nil, err
	}
	s.cache = snapshot
	return s, nil
}

func (s *SQLiteStore) Area() Area {
	return s.area
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM prefs WHERE area = ? AND key = ?`, string(s.area), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return json.RawMessage(value), nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	if key == "" {
		return ErrEmptyKey
	}
	value, err := canonical(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if value == nil {
		_, err = s.db.ExecContext(ctx, `DELETE FROM prefs WHERE area = ? AND key = ?`, string(s.area), key)
	} else {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO prefs (area, key, value, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (area, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			string(s.area), key, string(value), time.Now().UnixMilli())
	}
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("set %q: %w", key, err)
	}
	before := s.cache
	next := copySnapshot(before)
	if value == nil {
		delete(next, key)
	} else {
		next[key] = value
	}
	s.cache = next
	s.mu.Unlock()

	s.notify(diff(s.area, before, next))
	return nil
}

// Watch polls the table so writes from other processes reach listeners.
func (s *SQLiteStore) Watch(ctx context.Context) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Reload(ctx)
		}
	}
}

// Reload compares the table with the last known state and notifies
// listeners of the differences.
func (s *SQLiteStore) Reload(ctx context.Context) {
	s.mu.Lock()
	next, err := s.snapshot(ctx)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn().Err(err).Msg("reload failed")
		return
	}
	before := s.cache
	s.cache = next
	s.mu.Unlock()

	s.notify(diff(s.area, before, next))
}

func (s *SQLiteStore) snapshot(ctx context.Context) (map[string]json.RawMessage, error) {
	var rows []prefRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT key, value FROM prefs WHERE area = ?`, string(s.area)); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	out := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		out[row.Key] = json.RawMessage(row.Value)
	}
	return out, nil
}
