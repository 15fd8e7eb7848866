package orchestrators

import (
	"context"
	"log/slog"

	"deleteop/internal/domain/record"
)

// RecordStoreForSeed defines the store interface needed by SeedRecords.
type RecordStoreForSeed interface {
	Create(ctx context.Context, r record.Record) error
	ListRecent(ctx context.Context, limit int) ([]record.Record, error)
}

// SeedRecordsDeps holds dependencies for SeedRecords.
type SeedRecordsDeps struct {
	Records RecordStoreForSeed
}

// sampleRecords cover an opted-in kind, a second opted-in kind and an
// opted-out kind.
func sampleRecords() []record.Record {
	return []record.Record{
		{Kind: "article", ID: "42", Label: "Hello"},
		{Kind: "article", ID: "43", Label: "Release notes"},
		{Kind: "page", ID: "1", Label: "About us"},
		{Kind: "comment", ID: "1", Label: "First!"},
	}
}

// ExecuteSeedRecords creates sample records if the store is empty.
// Intended for development databases only.
// POST: returns the number of records created
func ExecuteSeedRecords(ctx context.Context, deps SeedRecordsDeps) (int, error) {
	existing, err := deps.Records.ListRecent(ctx, 1)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	samples := sampleRecords()
	for _, r := range samples {
		if err := deps.Records.Create(ctx, r); err != nil {
			return 0, err
		}
	}
	slog.Info("record_event", "event", "records_seeded", "count", len(samples))
	return len(samples), nil
}
