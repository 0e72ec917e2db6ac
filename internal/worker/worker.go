// Package worker implements the dispatch adapter shared by the image and
// text services: one generic worker parameterized by document type, topic,
// and analyzer.
package worker

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/hyperjump/shori/internal/analyze"
	"github.com/hyperjump/shori/internal/bus"
	"github.com/hyperjump/shori/internal/models"
)

// Worker consumes work items from one type-specific topic, invokes the
// analyzer, and publishes the outcome to the results topic.
type Worker struct {
	docType      models.DocumentType
	topic        string
	resultsTopic string
	group        string
	analyzer     analyze.Analyzer
	publisher    bus.Publisher
	logger       *zap.Logger
}

// New creates a worker for the given document type. topic is the work item
// source, resultsTopic the destination for analyzer output, group the
// consumer group to join.
func New(
	docType models.DocumentType,
	topic, resultsTopic, group string,
	analyzer analyze.Analyzer,
	publisher bus.Publisher,
	logger *zap.Logger,
) *Worker {
	return &Worker{
		docType:      docType,
		topic:        topic,
		resultsTopic: resultsTopic,
		group:        group,
		analyzer:     analyzer,
		publisher:    publisher,
		logger:       logger,
	}
}

// Run subscribes to the worker's topic and blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context, sub bus.Subscriber) error {
	return sub.Subscribe(ctx, w.group, []string{w.topic}, w.Handle)
}

// Handle processes one work item. Malformed or mistyped messages are
// logged and dropped; there is no dead-letter path. On analyzer failure
// nothing is published and nothing is retried, so the document stays in
// processing until something else moves it.
func (w *Worker) Handle(ctx context.Context, topic string, payload []byte) error {
	if topic != w.topic {
		w.logger.Warn("message from unexpected topic", zap.String("topic", topic))
		return nil
	}

	var item models.WorkItem
	if err := json.Unmarshal(payload, &item); err != nil {
		w.logger.Error("invalid work item", zap.String("topic", topic), zap.Error(err))
		return nil
	}
	if item.DocumentID == "" || item.Type == "" || item.Content == "" {
		w.logger.Error("invalid work item: missing required fields",
			zap.String("topic", topic))
		return nil
	}
	if item.Type != w.docType {
		w.logger.Error("work item type does not match worker",
			zap.String("documentId", item.DocumentID),
			zap.String("got", string(item.Type)),
			zap.String("want", string(w.docType)))
		return nil
	}

	w.logger.Info("processing document",
		zap.String("documentId", item.DocumentID), zap.String("type", string(item.Type)))

	result, err := w.analyzer.Analyze(ctx, &item)
	if err != nil {
		w.logger.Error("analysis failed",
			zap.String("documentId", item.DocumentID), zap.Error(err))
		return nil
	}

	msg := models.ResultMessage{DocumentID: item.DocumentID, Result: result}
	if err := w.publisher.Publish(ctx, w.resultsTopic, msg); err != nil {
		w.logger.Error("failed to publish result",
			zap.String("documentId", item.DocumentID), zap.Error(err))
		return err
	}

	w.logger.Info("result sent", zap.String("documentId", item.DocumentID))
	return nil
}
