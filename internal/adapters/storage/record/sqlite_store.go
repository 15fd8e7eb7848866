package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"deleteop/internal/adapters/storage"
	domain "deleteop/internal/domain/record"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

const selectColumns = `SELECT kind, id, label, deleted, created_at, updated_at, deleted_at FROM record`

// SQLiteStore implements the record Store interface using SQLite.
type SQLiteStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLiteStore creates a new record store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Resolve loads a record and binds it to this store.
// PRE: kind and id are non-empty
// POST: Returns a Deletable whose Save/Delete write through this store
func (s *SQLiteStore) Resolve(ctx context.Context, kind, id string) (domain.Deletable, error) {
	r, err := s.GetByKey(ctx, domain.Key{Kind: kind, ID: id})
	if err != nil {
		return nil, err
	}
	return &entity{rec: r, store: s}, nil
}

// GetByKey retrieves the plain record state.
// PRE: key is valid
// POST: Returns the record or an error wrapping domain.ErrNotFound
func (s *SQLiteStore) GetByKey(ctx context.Context, key domain.Key) (domain.Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE kind = ? AND id = ?`, key.Kind, key.ID)
	r, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, domain.NotFound(key)
	}
	return r, err
}

// Create inserts a new record.
// PRE: r has been validated
// POST: Record is persisted with CreatedAt/UpdatedAt stamped when zero
func (s *SQLiteStore) Create(ctx context.Context, r domain.Record) error {
	now := s.now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO record (kind, id, label, deleted, created_at, updated_at, deleted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Kind, r.ID, r.Label, boolToInt(r.Deleted),
		r.CreatedAt.Format(dateLayout), r.UpdatedAt.Format(dateLayout), formatOptional(r.DeletedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrConflict, r.Key())
		}
		return fmt.Errorf("create record %s: %w", r.Key(), err)
	}
	return nil
}

// ListRecent returns records ordered by updated_at desc.
// PRE: limit > 0
// POST: Returns up to limit records
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY updated_at DESC, kind, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		r, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// update writes the mutable fields of an existing record.
func (s *SQLiteStore) update(ctx context.Context, r *domain.Record) error {
	r.UpdatedAt = s.now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE record SET label = ?, deleted = ?, updated_at = ?, deleted_at = ?
		 WHERE kind = ? AND id = ?`,
		r.Label, boolToInt(r.Deleted), r.UpdatedAt.Format(dateLayout), formatOptional(r.DeletedAt),
		r.Kind, r.ID)
	if err != nil {
		return err
	}
	return requireOneRow(res, r.Key())
}

// remove deletes an existing record.
func (s *SQLiteStore) remove(ctx context.Context, key domain.Key) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM record WHERE kind = ? AND id = ?`, key.Kind, key.ID)
	if err != nil {
		return err
	}
	return requireOneRow(res, key)
}

// requireOneRow turns "nothing matched" into ErrNotFound; the row vanished
// between Resolve and the write.
func requireOneRow(res sql.Result, key domain.Key) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound(key)
	}
	return nil
}

func scanRecord(scan func(dest ...any) error) (domain.Record, error) {
	var r domain.Record
	var deleted int
	var createdAt, updatedAt string
	var deletedAt sql.NullString
	if err := scan(&r.Kind, &r.ID, &r.Label, &deleted, &createdAt, &updatedAt, &deletedAt); err != nil {
		return domain.Record{}, err
	}
	r.Deleted = deleted != 0
	r.CreatedAt, _ = time.Parse(dateLayout, createdAt)
	r.UpdatedAt, _ = time.Parse(dateLayout, updatedAt)
	if deletedAt.Valid && deletedAt.String != "" {
		t, _ := time.Parse(dateLayout, deletedAt.String)
		r.DeletedAt = &t
	}
	return r, nil
}

func formatOptional(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(dateLayout)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
