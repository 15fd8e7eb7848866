package record

import (
	"context"

	domain "deleteop/internal/domain/record"
)

// entity is a record loaded through SQLiteStore.Resolve. It carries its store
// so the lifecycle can persist or remove it without knowing where it lives.
type entity struct {
	rec   domain.Record
	store *SQLiteStore
}

// Ensure entity satisfies the lifecycle capability.
var _ domain.Deletable = (*entity)(nil)

func (e *entity) Key() domain.Key {
	return e.rec.Key()
}

func (e *entity) Label() string {
	return e.rec.Label
}

func (e *entity) IsDeleted() bool {
	return e.rec.Deleted
}

// SetIsDeleted flips the in-memory flag only.
func (e *entity) SetIsDeleted(value bool) domain.Deletable {
	e.rec.MarkDeleted(value, e.store.now().UTC())
	return e
}

// Save persists label and flag.
// POST: on failure returns *domain.PersistenceError with Op "save"
func (e *entity) Save(ctx context.Context) error {
	if err := e.store.update(ctx, &e.rec); err != nil {
		return &domain.PersistenceError{Op: "save", Key: e.rec.Key(), Err: err}
	}
	return nil
}

// Delete removes the row for good.
// POST: on failure returns *domain.PersistenceError with Op "delete"
func (e *entity) Delete(ctx context.Context) error {
	if err := e.store.remove(ctx, e.rec.Key()); err != nil {
		return &domain.PersistenceError{Op: "delete", Key: e.rec.Key(), Err: err}
	}
	return nil
}
