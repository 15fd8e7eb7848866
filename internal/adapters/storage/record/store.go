package record

import (
	"context"
	"errors"

	domain "deleteop/internal/domain/record"
)

// ErrConflict is returned by Create when the key is already taken.
var ErrConflict = errors.New("record already exists")

// Store defines the interface for record persistence.
type Store interface {
	// Resolve loads a record as a lifecycle participant.
	// PRE: kind and id are non-empty
	// POST: Returns a Deletable bound to this store, or an error wrapping domain.ErrNotFound
	Resolve(ctx context.Context, kind, id string) (domain.Deletable, error)

	// GetByKey retrieves the plain record state.
	// PRE: key is valid
	// POST: Returns the record or an error wrapping domain.ErrNotFound
	GetByKey(ctx context.Context, key domain.Key) (domain.Record, error)

	// Create inserts a new record.
	// PRE: r has been validated
	// POST: Record is persisted, or ErrConflict if the key exists
	Create(ctx context.Context, r domain.Record) error

	// ListRecent returns records ordered by updated_at desc.
	// PRE: limit > 0
	// POST: Returns up to limit records, soft-deleted ones included
	ListRecent(ctx context.Context, limit int) ([]domain.Record, error)
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
