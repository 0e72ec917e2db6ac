// Package lifecycle implements the document lifecycle orchestration layer:
// intake validation, work item routing, the status state machine, and
// reconciliation of asynchronous worker results.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/shori/internal/bus"
	"github.com/hyperjump/shori/internal/models"
	"github.com/hyperjump/shori/internal/storage"
)

// Topics names the work item destinations per document type.
type Topics struct {
	ImageProcessing string
	TextProcessing  string
}

// TopicFor returns the topic a document of the given type routes to.
func (t Topics) TopicFor(docType models.DocumentType) string {
	if docType == models.TypeImage {
		return t.ImageProcessing
	}
	return t.TextProcessing
}

// Orchestrator validates intake, persists documents, routes work items to
// the type-specific topic, and exposes the CRUD pass-throughs. The store
// is the sole source of truth; the bus carries transient copies.
type Orchestrator struct {
	store     storage.Store
	publisher bus.Publisher
	topics    Topics
	logger    *zap.Logger
}

// NewOrchestrator creates an orchestrator with the given dependencies.
func NewOrchestrator(store storage.Store, publisher bus.Publisher, topics Topics, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		store:     store,
		publisher: publisher,
		topics:    topics,
		logger:    logger,
	}
}

// Submit validates the input, persists the document in pending, publishes
// a work item to the type topic, then transitions the record to processing.
//
// When the publish fails the record stays pending and the error is
// returned; the pending record is not rolled back, so a broker outage at
// this point leaves an unprocessed document behind.
func (o *Orchestrator) Submit(ctx context.Context, input *models.DocumentInput) (*models.Document, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:       uuid.NewString(),
		Name:     input.Name,
		Type:     input.Type,
		Content:  input.Content,
		Keywords: input.Keywords,
		Status:   models.StatusPending,
	}
	if doc.Keywords == nil {
		doc.Keywords = []string{}
	}
	if err := o.store.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	o.logger.Info("document created",
		zap.String("id", doc.ID), zap.String("type", string(doc.Type)))

	topic := o.topics.TopicFor(doc.Type)
	item := models.WorkItem{
		DocumentID: doc.ID,
		Name:       doc.Name,
		Type:       doc.Type,
		Content:    doc.Content,
	}
	if err := o.publisher.Publish(ctx, topic, item); err != nil {
		o.logger.Error("failed to publish work item",
			zap.String("id", doc.ID), zap.String("topic", topic), zap.Error(err))
		return nil, err
	}

	updated, err := o.SetStatus(ctx, doc.ID, models.StatusProcessing, nil)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetStatus applies a status change through the transition table and writes
// it to the store. Illegal transitions fail with ErrInvalidTransition
// before any write happens.
func (o *Orchestrator) SetStatus(ctx context.Context, id string, status models.Status, result []byte) (*models.Document, error) {
	current, err := o.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(current.Status, status); err != nil {
		return nil, err
	}
	return o.store.SetStatus(ctx, id, status, result)
}

// Get returns a document by ID. Content is elided unless includeContent
// is set.
func (o *Orchestrator) Get(ctx context.Context, id string, includeContent bool) (*models.Document, error) {
	doc, err := o.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !includeContent {
		return doc.Sanitized(), nil
	}
	return doc, nil
}

// List returns all documents. Content is elided unless includeContent
// is set.
func (o *Orchestrator) List(ctx context.Context, includeContent bool) ([]*models.Document, error) {
	docs, err := o.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if includeContent {
		return docs, nil
	}
	out := make([]*models.Document, len(docs))
	for i, doc := range docs {
		out[i] = doc.Sanitized()
	}
	return out, nil
}

// Update applies the user-editable fields after validating them.
func (o *Orchestrator) Update(ctx context.Context, id string, upd *models.DocumentUpdate) (*models.Document, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}
	doc, err := o.store.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	return doc.Sanitized(), nil
}

// Delete removes a document.
func (o *Orchestrator) Delete(ctx context.Context, id string) error {
	if err := o.store.Delete(ctx, id); err != nil {
		return err
	}
	o.logger.Info("document deleted", zap.String("id", id))
	return nil
}
