package orchestrators

import (
	"context"
	"log/slog"

	"deleteop/internal/domain/kind"
)

// KindStoreForSync defines the store interface needed by SyncKinds.
type KindStoreForSync interface {
	List(ctx context.Context) ([]kind.Kind, error)
	Save(ctx context.Context, k kind.Kind) error
}

// SyncKindsInput carries the startup kind configuration.
type SyncKindsInput struct {
	// Seed is written when the store holds no kinds at all.
	Seed []kind.Kind
	// Lifecycle is the explicit opt-in mapping. Empty leaves stored flags alone.
	Lifecycle map[string]bool
}

// SyncKindsDeps holds dependencies for SyncKinds.
type SyncKindsDeps struct {
	Kinds KindStoreForSync
}

// ExecuteSyncKinds seeds default kinds once and applies the opt-in mapping.
// PRE: every key in Lifecycle is a valid kind id
// POST: kinds in Lifecycle opt in (created if missing); every other stored kind opts out
// POST: returns the number of kinds written
func ExecuteSyncKinds(ctx context.Context, input SyncKindsInput, deps SyncKindsDeps) (int, error) {
	existing, err := deps.Kinds.List(ctx)
	if err != nil {
		return 0, err
	}

	written := 0
	if len(existing) == 0 {
		for _, k := range input.Seed {
			if err := deps.Kinds.Save(ctx, k); err != nil {
				return written, err
			}
			written++
		}
		existing = append(existing, input.Seed...)
		slog.Info("kind_event", "event", "kinds_seeded", "count", len(input.Seed))
	}

	if len(input.Lifecycle) == 0 {
		return written, nil
	}

	known := make(map[string]bool, len(existing))
	for _, k := range existing {
		known[k.ID] = true
		want := input.Lifecycle[k.ID]
		if k.Lifecycle == want {
			continue
		}
		k.Lifecycle = want
		if err := deps.Kinds.Save(ctx, k); err != nil {
			return written, err
		}
		written++
		slog.Info("kind_event", "event", "kind_lifecycle_changed", "kind", k.ID, "lifecycle", want)
	}

	for id, on := range input.Lifecycle {
		if known[id] || !on {
			continue
		}
		if err := deps.Kinds.Save(ctx, kind.Kind{ID: id, Label: id, Lifecycle: true}); err != nil {
			return written, err
		}
		written++
		slog.Info("kind_event", "event", "kind_registered", "kind", id)
	}
	return written, nil
}
