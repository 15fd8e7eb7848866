package kind

import (
	"context"

	domain "deleteop/internal/domain/kind"
)

// Store persists Kind state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Kind, error)
	List(ctx context.Context) ([]domain.Kind, error)
	Save(ctx context.Context, value domain.Kind) error

	// SupportsLifecycle reports whether records of kind id may be deleted
	// and purged. An unknown kind is not an error; it simply does not opt in.
	SupportsLifecycle(ctx context.Context, id string) (bool, error)
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*CachedStore)(nil)
)
