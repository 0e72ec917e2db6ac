package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/shori/internal/bus"
	"github.com/hyperjump/shori/internal/models"
	"github.com/hyperjump/shori/internal/storage"
)

var testTopics = Topics{
	ImageProcessing: "document-image-processing",
	TextProcessing:  "document-text-processing",
}

func newTestOrchestrator() (*Orchestrator, *storage.MemoryStore, *bus.MemoryBus) {
	store := storage.NewMemoryStore()
	b := bus.NewMemoryBus()
	orch := NewOrchestrator(store, b, testTopics, zap.NewNop())
	return orch, store, b
}

func TestSubmit_happyPath(t *testing.T) {
	orch, store, b := newTestOrchestrator()
	ctx := context.Background()

	doc, err := orch.Submit(ctx, &models.DocumentInput{
		Name: "a.txt", Type: models.TypeText, Content: "hello",
	})
	if err != nil {
		t.Fatal(err)
	}
	if doc.ID == "" {
		t.Error("document should have an ID")
	}
	if doc.Status != models.StatusProcessing {
		t.Errorf("status after submit: got %s, want %s", doc.Status, models.StatusProcessing)
	}

	published := b.Published("document-text-processing")
	if len(published) != 1 {
		t.Fatalf("expected 1 work item, got %d", len(published))
	}
	var item models.WorkItem
	if err := json.Unmarshal(published[0], &item); err != nil {
		t.Fatal(err)
	}
	if item.DocumentID != doc.ID || item.Type != models.TypeText || item.Content != "hello" {
		t.Errorf("unexpected work item: %+v", item)
	}

	stored, err := store.Get(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != models.StatusProcessing {
		t.Errorf("stored status: got %s", stored.Status)
	}
	if stored.Result != nil {
		t.Error("result must be null before completion")
	}
}

func TestSubmit_routing(t *testing.T) {
	orch, _, b := newTestOrchestrator()
	ctx := context.Background()

	_, err := orch.Submit(ctx, &models.DocumentInput{
		Name: "pic.jpg", Type: models.TypeImage, Content: "base64data",
	})
	if err != nil {
		t.Fatal(err)
	}
	if n := len(b.Published("document-image-processing")); n != 1 {
		t.Errorf("image topic: got %d messages, want 1", n)
	}
	if n := len(b.Published("document-text-processing")); n != 0 {
		t.Errorf("text topic: got %d messages, want 0", n)
	}

	_, err = orch.Submit(ctx, &models.DocumentInput{
		Name: "a.txt", Type: models.TypeText, Content: "hello",
	})
	if err != nil {
		t.Fatal(err)
	}
	if n := len(b.Published("document-image-processing")); n != 1 {
		t.Errorf("image topic after text submit: got %d messages, want 1", n)
	}
	if n := len(b.Published("document-text-processing")); n != 1 {
		t.Errorf("text topic: got %d messages, want 1", n)
	}
}

func TestSubmit_publishFailureLeavesPending(t *testing.T) {
	orch, store, b := newTestOrchestrator()
	ctx := context.Background()
	b.FailNextPublish(errors.New("broker down"))

	_, err := orch.Submit(ctx, &models.DocumentInput{
		Name: "a.txt", Type: models.TypeText, Content: "hello",
	})
	if err == nil {
		t.Fatal("expected publish error")
	}

	docs, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 {
		t.Fatalf("record should still exist, got %d documents", len(docs))
	}
	if docs[0].Status != models.StatusPending {
		t.Errorf("status after failed publish: got %s, want %s", docs[0].Status, models.StatusPending)
	}
}

func TestSubmit_validationRejected(t *testing.T) {
	orch, store, _ := newTestOrchestrator()

	_, err := orch.Submit(context.Background(), &models.DocumentInput{})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if store.Len() != 0 {
		t.Error("invalid input must not create a record")
	}
}

func TestSetStatus_rejectsIllegalTransition(t *testing.T) {
	orch, store, _ := newTestOrchestrator()
	ctx := context.Background()

	doc := &models.Document{ID: "d1", Name: "a", Type: models.TypeText,
		Content: "x", Status: models.StatusCompleted}
	if err := store.Create(ctx, doc); err != nil {
		t.Fatal(err)
	}

	_, err := orch.SetStatus(ctx, "d1", models.StatusProcessing, nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	got, _ := store.Get(ctx, "d1")
	if got.Status != models.StatusCompleted {
		t.Errorf("status must be unchanged, got %s", got.Status)
	}
}

func TestGetList_contentElidedByDefault(t *testing.T) {
	orch, _, _ := newTestOrchestrator()
	ctx := context.Background()

	doc, err := orch.Submit(ctx, &models.DocumentInput{
		Name: "a.txt", Type: models.TypeText, Content: "payload",
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := orch.Get(ctx, doc.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "" {
		t.Error("content should be elided by default")
	}

	got, err = orch.Get(ctx, doc.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "payload" {
		t.Errorf("content with includeContent: got %q", got.Content)
	}

	list, err := orch.List(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Content != "" {
		t.Error("list should elide content by default")
	}
}

func TestUpdateDelete(t *testing.T) {
	orch, store, _ := newTestOrchestrator()
	ctx := context.Background()

	doc, err := orch.Submit(ctx, &models.DocumentInput{
		Name: "a.txt", Type: models.TypeText, Content: "hello",
	})
	if err != nil {
		t.Fatal(err)
	}

	name := "renamed.txt"
	kws := []string{"alpha", "beta"}
	updated, err := orch.Update(ctx, doc.ID, &models.DocumentUpdate{Name: &name, Keywords: &kws})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "renamed.txt" || len(updated.Keywords) != 2 {
		t.Errorf("unexpected update result: %+v", updated)
	}

	if _, err := orch.Update(ctx, doc.ID, &models.DocumentUpdate{}); err == nil {
		t.Error("update without fields should fail")
	}
	if _, err := orch.Update(ctx, "missing", &models.DocumentUpdate{Name: &name}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := orch.Delete(ctx, doc.ID); err != nil {
		t.Fatal(err)
	}
	if err := orch.Delete(ctx, doc.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	if store.Len() != 0 {
		t.Error("store should be empty after delete")
	}
}
