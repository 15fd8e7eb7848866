package settings

import (
	"context"

	domain "deleteop/internal/domain/settings"
)

// Store persists label settings.
type Store interface {
	// Get returns the effective value for key.
	// PRE: key is a known settings key
	// POST: Returns the stored non-blank value or the documented default
	Get(ctx context.Context, key string) (string, error)

	// List returns the effective value of every known key, in form order.
	List(ctx context.Context) ([]domain.Setting, error)

	// Save writes one value. A blank value reverts the key to its default.
	Save(ctx context.Context, s domain.Setting) error
}

var _ Store = (*SQLiteStore)(nil)
