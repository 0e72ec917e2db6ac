package storage

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/shori/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_CRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := &models.Document{
		ID:       "doc1",
		Name:     "a.txt",
		Type:     models.TypeText,
		Content:  "hello",
		Keywords: []string{"alpha"},
		Status:   models.StatusPending,
	}
	if err := store.Create(ctx, doc); err != nil {
		t.Fatal(err)
	}
	if doc.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := store.Get(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "a.txt" || got.Type != models.TypeText || got.Content != "hello" {
		t.Errorf("got %+v", got)
	}
	if got.Status != models.StatusPending {
		t.Errorf("status: got %s", got.Status)
	}
	if len(got.Keywords) != 1 || got.Keywords[0] != "alpha" {
		t.Errorf("keywords: got %v", got.Keywords)
	}
	if got.Result != nil {
		t.Error("result must be null for a pending document")
	}

	name := "renamed.txt"
	kws := []string{"alpha", "beta"}
	updated, err := store.Update(ctx, "doc1", &models.DocumentUpdate{Name: &name, Keywords: &kws})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "renamed.txt" || len(updated.Keywords) != 2 {
		t.Errorf("update result: %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) && !updated.UpdatedAt.Equal(updated.CreatedAt) {
		t.Error("UpdatedAt should be refreshed")
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 doc, got %d", len(list))
	}

	if err := store.Delete(ctx, "doc1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "doc1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "doc1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on re-delete, got %v", err)
	}
}

func TestSQLiteStore_SetStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := &models.Document{ID: "d1", Name: "a", Type: models.TypeText,
		Content: "x", Status: models.StatusPending}
	if err := store.Create(ctx, doc); err != nil {
		t.Fatal(err)
	}

	got, err := store.SetStatus(ctx, "d1", models.StatusProcessing, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusProcessing {
		t.Errorf("status: got %s", got.Status)
	}
	if got.Result != nil {
		t.Error("result must stay null without a payload")
	}

	result := []byte(`{"analysis":"done"}`)
	got, err = store.SetStatus(ctx, "d1", models.StatusCompleted, result)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusCompleted {
		t.Errorf("status: got %s", got.Status)
	}
	if !bytes.Equal(got.Result, result) {
		t.Errorf("result: got %s", got.Result)
	}

	if _, err := store.SetStatus(ctx, "missing", models.StatusCompleted, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
