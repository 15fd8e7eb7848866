package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"deleteop/internal/adapters/storage"
	domain "deleteop/internal/domain/settings"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new settings store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get returns the effective value for key.
// PRE: key is a known settings key
// POST: Returns the stored non-blank value or the default
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	if _, ok := domain.Default(key); !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownKey, key)
	}
	var stored string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM setting WHERE key = ?`, key).Scan(&stored)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return domain.Resolve(key, stored)
}

// List returns every known key with its effective value.
// PRE: none
// POST: len(result) == len(domain.Keys())
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Setting, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM setting`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stored := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		stored[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.Setting, 0, len(domain.Keys()))
	for _, key := range domain.Keys() {
		v, err := domain.Resolve(key, stored[key])
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Setting{Key: key, Value: v})
	}
	return out, nil
}

// Save upserts one setting.
// PRE: s.Key is known
// POST: Value is persisted trimmed; blank removes the override
// INVARIANT: No other keys are modified
func (s *SQLiteStore) Save(ctx context.Context, setting domain.Setting) error {
	setting.Value = strings.TrimSpace(setting.Value)
	if err := setting.Validate(); err != nil {
		return err
	}
	if setting.Value == "" {
		_, err := s.db.ExecContext(ctx, `DELETE FROM setting WHERE key = ?`, setting.Key)
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO setting (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`, setting.Key, setting.Value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save setting %s: %w", setting.Key, err)
	}
	return nil
}
