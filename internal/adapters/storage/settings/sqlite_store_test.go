package settings

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"deleteop/internal/adapters/storage"
	domain "deleteop/internal/domain/settings"

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

func TestSQLiteStore_GetDefaults(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	want := map[string]string{
		domain.KeyDeleteLabel:      "delete",
		domain.KeyDeleteLabelPast:  "deleted",
		domain.KeyPurgeLabel:       "purge",
		domain.KeyPurgeLabelFuture: "purges",
		domain.KeyPurgeLabelPast:   "purged",
	}
	for key, w := range want {
		got, err := s.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get(%s): %v", key, err)
		}
		if got != w {
			t.Errorf("Get(%s) = %q, want %q", key, got, w)
		}
	}
}

func TestSQLiteStore_SaveOverridesDefault(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, domain.Setting{Key: domain.KeyPurgeLabelFuture, Value: "  erases "}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get(ctx, domain.KeyPurgeLabelFuture)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "erases" {
		t.Errorf("Get = %q, want erases", got)
	}

	// Blank reverts to the default.
	if err := s.Save(ctx, domain.Setting{Key: domain.KeyPurgeLabelFuture, Value: " "}); err != nil {
		t.Fatalf("Save blank: %v", err)
	}
	got, _ = s.Get(ctx, domain.KeyPurgeLabelFuture)
	if got != "purges" {
		t.Errorf("Get after revert = %q, want purges", got)
	}
}

func TestSQLiteStore_UnknownKey(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "colour"); !errors.Is(err, domain.ErrUnknownKey) {
		t.Errorf("Get err = %v, want ErrUnknownKey", err)
	}
	if err := s.Save(ctx, domain.Setting{Key: "colour", Value: "red"}); !errors.Is(err, domain.ErrUnknownKey) {
		t.Errorf("Save err = %v, want ErrUnknownKey", err)
	}
}

func TestSQLiteStore_List(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	if err := s.Save(ctx, domain.Setting{Key: domain.KeyDeleteLabel, Value: "trash"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != len(domain.Keys()) {
		t.Fatalf("len = %d, want %d", len(got), len(domain.Keys()))
	}
	if got[0].Key != domain.KeyDeleteLabel || got[0].Value != "trash" {
		t.Errorf("first = %+v, want delete_label=trash", got[0])
	}
	if got[1].Value != "deleted" {
		t.Errorf("second = %+v, want default", got[1])
	}
}

func TestLoadLabels(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	if err := s.Save(ctx, domain.Setting{Key: domain.KeyPurgeLabelPast, Value: "shredded"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	l, err := domain.LoadLabels(ctx, s)
	if err != nil {
		t.Fatalf("LoadLabels: %v", err)
	}
	want := domain.DefaultLabels()
	want.PurgePast = "shredded"
	if l != want {
		t.Errorf("Labels = %+v, want %+v", l, want)
	}
}
