package kind

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"deleteop/internal/adapters/storage"
	domain "deleteop/internal/domain/kind"

	"github.com/prometheus/client_golang/prometheus/testutil"
	_ "modernc.org/sqlite"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStore(db)
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, domain.Kind{ID: "article", Label: "Article", Lifecycle: true}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.GetByID(ctx, "article")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Label != "Article" || !got.Lifecycle {
		t.Errorf("got %+v", got)
	}

	// Upsert flips the flag.
	if err := s.Save(ctx, domain.Kind{ID: "article", Label: "Article", Lifecycle: false}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ = s.GetByID(ctx, "article")
	if got.Lifecycle {
		t.Error("Lifecycle still true after upsert")
	}
}

func TestSQLiteStore_SaveRejectsInvalidID(t *testing.T) {
	s := setupTestStore(t)
	err := s.Save(context.Background(), domain.Kind{ID: "Bad Kind"})
	if !errors.Is(err, domain.ErrInvalidID) {
		t.Errorf("err = %v, want ErrInvalidID", err)
	}
}

func TestSQLiteStore_GetByIDNotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetByID(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_List(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	for _, k := range domain.DefaultKinds() {
		if err := s.Save(ctx, k); err != nil {
			t.Fatalf("Save %s: %v", k.ID, err)
		}
	}
	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].ID != "article" || got[1].ID != "comment" || got[2].ID != "page" {
		t.Errorf("order = %s,%s,%s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestSQLiteStore_SupportsLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	for _, k := range domain.DefaultKinds() {
		if err := s.Save(ctx, k); err != nil {
			t.Fatalf("Save %s: %v", k.ID, err)
		}
	}

	tests := []struct {
		id   string
		want bool
	}{
		{"article", true},
		{"page", true},
		{"comment", false},
		{"unknown", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := s.SupportsLifecycle(ctx, tt.id)
			if err != nil {
				t.Fatalf("SupportsLifecycle: %v", err)
			}
			if got != tt.want {
				t.Errorf("SupportsLifecycle(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

// countingStore counts SupportsLifecycle calls reaching the backing store.
type countingStore struct {
	Store
	calls int
}

func (c *countingStore) SupportsLifecycle(ctx context.Context, id string) (bool, error) {
	c.calls++
	return c.Store.SupportsLifecycle(ctx, id)
}

func TestCachedStore_HitsAfterFirstLookup(t *testing.T) {
	backing := &countingStore{Store: setupTestStore(t)}
	ctx := context.Background()
	if err := backing.Save(ctx, domain.Kind{ID: "article", Lifecycle: true}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	c := NewCachedStore(backing, 0, time.Minute)

	hitsBefore := testutil.ToFloat64(cacheHits)
	for i := 0; i < 3; i++ {
		ok, err := c.SupportsLifecycle(ctx, "article")
		if err != nil || !ok {
			t.Fatalf("SupportsLifecycle = %v, %v", ok, err)
		}
	}
	if backing.calls != 1 {
		t.Errorf("backing calls = %d, want 1", backing.calls)
	}
	if got := testutil.ToFloat64(cacheHits) - hitsBefore; got != 2 {
		t.Errorf("cache hits = %v, want 2", got)
	}
}

func TestCachedStore_SaveInvalidates(t *testing.T) {
	backing := &countingStore{Store: setupTestStore(t)}
	ctx := context.Background()
	c := NewCachedStore(backing, 8, time.Minute)

	if err := c.Save(ctx, domain.Kind{ID: "page", Lifecycle: true}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ok, _ := c.SupportsLifecycle(ctx, "page"); !ok {
		t.Fatal("page should opt in")
	}

	if err := c.Save(ctx, domain.Kind{ID: "page", Lifecycle: false}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ok, _ := c.SupportsLifecycle(ctx, "page"); ok {
		t.Error("stale cache: page still opted in after Save")
	}
	if backing.calls != 2 {
		t.Errorf("backing calls = %d, want 2", backing.calls)
	}
}

func TestCachedStore_UnknownKindCached(t *testing.T) {
	backing := &countingStore{Store: setupTestStore(t)}
	c := NewCachedStore(backing, 8, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, err := c.SupportsLifecycle(ctx, "ghost"); ok || err != nil {
			t.Fatalf("SupportsLifecycle = %v, %v", ok, err)
		}
	}
	if backing.calls != 1 {
		t.Errorf("backing calls = %d, want 1", backing.calls)
	}
}
