package kind

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"deleteop/internal/adapters/storage"
	domain "deleteop/internal/domain/kind"
)

// ErrNotFound is returned by GetByID for an unknown kind.
var ErrNotFound = errors.New("kind not found")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new Kind store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a single Kind by id.
// PRE: id is non-empty
// POST: Returns the persisted kind or an error wrapping ErrNotFound
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Kind, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, label, lifecycle FROM kind WHERE id = ?`, id)
	k, err := scanKind(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Kind{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return k, err
}

// List returns all persisted kinds.
// PRE: none
// POST: Returns all kinds sorted by id
// INVARIANT: Store state is not mutated
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Kind, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, label, lifecycle FROM kind ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Kind{}
	for rows.Next() {
		k, err := scanKind(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// Save upserts a kind.
// PRE: value has a valid ID
// POST: Kind is persisted (insert or update)
// INVARIANT: No other kinds are modified
func (s *SQLiteStore) Save(ctx context.Context, value domain.Kind) error {
	if err := value.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kind (id, label, lifecycle) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label=excluded.label,
			lifecycle=excluded.lifecycle
	`, value.ID, value.Label, boolToInt(value.Lifecycle))
	if err != nil {
		return fmt.Errorf("save kind: %w", err)
	}
	return nil
}

// SupportsLifecycle reports the opt-in flag for id.
// PRE: none
// POST: Returns false with a nil error for unknown kinds
func (s *SQLiteStore) SupportsLifecycle(ctx context.Context, id string) (bool, error) {
	k, err := s.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return k.Lifecycle, nil
}

func scanKind(scan func(dest ...any) error) (domain.Kind, error) {
	var k domain.Kind
	var lifecycle int
	if err := scan(&k.ID, &k.Label, &lifecycle); err != nil {
		return domain.Kind{}, err
	}
	k.Lifecycle = lifecycle != 0
	return k, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
