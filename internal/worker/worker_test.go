package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/shori/internal/analyze"
	"github.com/hyperjump/shori/internal/bus"
	"github.com/hyperjump/shori/internal/models"
)

const (
	workTopic    = "document-text-processing"
	resultsTopic = "document-processing-results"
)

func newTestWorker(analyzer analyze.Analyzer) (*Worker, *bus.MemoryBus) {
	b := bus.NewMemoryBus()
	w := New(models.TypeText, workTopic, resultsTopic, "text-service-group", analyzer, b, zap.NewNop())
	return w, b
}

func staticAnalyzer(result string) analyze.Analyzer {
	return analyze.Func(func(ctx context.Context, item *models.WorkItem) (json.RawMessage, error) {
		return json.RawMessage(result), nil
	})
}

func workItem(t *testing.T, item models.WorkItem) []byte {
	t.Helper()
	payload, err := json.Marshal(item)
	if err != nil {
		t.Fatal(err)
	}
	return payload
}

func TestHandle_publishesResult(t *testing.T) {
	w, b := newTestWorker(staticAnalyzer(`{"analysis":"ok"}`))
	payload := workItem(t, models.WorkItem{
		DocumentID: "d1", Name: "a.txt", Type: models.TypeText, Content: "hello",
	})

	if err := w.Handle(context.Background(), workTopic, payload); err != nil {
		t.Fatal(err)
	}

	published := b.Published(resultsTopic)
	if len(published) != 1 {
		t.Fatalf("expected 1 result, got %d", len(published))
	}
	var msg models.ResultMessage
	if err := json.Unmarshal(published[0], &msg); err != nil {
		t.Fatal(err)
	}
	if msg.DocumentID != "d1" {
		t.Errorf("documentId: got %s", msg.DocumentID)
	}
	if string(msg.Result) != `{"analysis":"ok"}` {
		t.Errorf("result: got %s", msg.Result)
	}
}

func TestHandle_rejectsMistypedItem(t *testing.T) {
	w, b := newTestWorker(staticAnalyzer(`{}`))
	payload := workItem(t, models.WorkItem{
		DocumentID: "d1", Type: models.TypeImage, Content: "base64",
	})

	if err := w.Handle(context.Background(), workTopic, payload); err != nil {
		t.Fatal(err)
	}
	if len(b.Published(resultsTopic)) != 0 {
		t.Error("mistyped item must not produce a result")
	}
}

func TestHandle_dropsMalformedMessages(t *testing.T) {
	w, b := newTestWorker(staticAnalyzer(`{}`))
	ctx := context.Background()

	for _, payload := range [][]byte{
		[]byte(`garbage`),
		workItem(t, models.WorkItem{Type: models.TypeText, Content: "x"}),
		workItem(t, models.WorkItem{DocumentID: "d1", Type: models.TypeText}),
	} {
		if err := w.Handle(ctx, workTopic, payload); err != nil {
			t.Errorf("malformed message must be dropped, not errored: %v", err)
		}
	}
	if len(b.Published(resultsTopic)) != 0 {
		t.Error("malformed messages must not produce results")
	}
}

func TestHandle_analyzerFailurePublishesNothing(t *testing.T) {
	failing := analyze.Func(func(ctx context.Context, item *models.WorkItem) (json.RawMessage, error) {
		return nil, errors.New("analysis broke")
	})
	w, b := newTestWorker(failing)
	payload := workItem(t, models.WorkItem{
		DocumentID: "d1", Type: models.TypeText, Content: "hello",
	})

	if err := w.Handle(context.Background(), workTopic, payload); err != nil {
		t.Fatalf("analyzer failure is terminal for the message, got %v", err)
	}
	if len(b.Published(resultsTopic)) != 0 {
		t.Error("no result may be published on analyzer failure")
	}
}

func TestHandle_ignoresUnexpectedTopic(t *testing.T) {
	w, b := newTestWorker(staticAnalyzer(`{}`))
	payload := workItem(t, models.WorkItem{
		DocumentID: "d1", Type: models.TypeText, Content: "hello",
	})

	if err := w.Handle(context.Background(), "document-image-processing", payload); err != nil {
		t.Fatal(err)
	}
	if len(b.Published(resultsTopic)) != 0 {
		t.Error("unexpected topic must be ignored")
	}
}
