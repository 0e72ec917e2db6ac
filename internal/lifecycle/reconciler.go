package lifecycle

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/hyperjump/shori/internal/bus"
	"github.com/hyperjump/shori/internal/models"
	"github.com/hyperjump/shori/internal/storage"
)

// Reconciler consumes the results topic and applies worker results to the
// stored documents. Result messages carry no success indicator, so every
// correlated result is recorded as completed.
type Reconciler struct {
	orch   *Orchestrator
	logger *zap.Logger
}

// NewReconciler creates a reconciler applying results through orch.
func NewReconciler(orch *Orchestrator, logger *zap.Logger) *Reconciler {
	return &Reconciler{orch: orch, logger: logger}
}

// Run subscribes to topic in the given consumer group and blocks until ctx
// is cancelled.
func (r *Reconciler) Run(ctx context.Context, sub bus.Subscriber, group, topic string) error {
	return sub.Subscribe(ctx, group, []string{topic}, r.Handle)
}

// Handle processes one results-topic message. Malformed messages and
// unknown document IDs are logged and dropped; there is no caller to
// report them to.
func (r *Reconciler) Handle(ctx context.Context, topic string, payload []byte) error {
	var msg models.ResultMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		r.logger.Error("invalid result message", zap.String("topic", topic), zap.Error(err))
		return nil
	}
	if msg.DocumentID == "" || len(msg.Result) == 0 {
		r.logger.Error("invalid result message: missing documentId or result",
			zap.String("topic", topic))
		return nil
	}

	_, err := r.orch.SetStatus(ctx, msg.DocumentID, models.StatusCompleted, msg.Result)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		r.logger.Error("document not found for result",
			zap.String("documentId", msg.DocumentID))
		return nil
	case errors.Is(err, ErrInvalidTransition):
		r.logger.Error("result rejected by state machine",
			zap.String("documentId", msg.DocumentID), zap.Error(err))
		return nil
	case err != nil:
		r.logger.Error("failed to apply result",
			zap.String("documentId", msg.DocumentID), zap.Error(err))
		return err
	}

	r.logger.Info("document completed", zap.String("documentId", msg.DocumentID))
	return nil
}
