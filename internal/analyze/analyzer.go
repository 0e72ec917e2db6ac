// Package analyze provides the content analyzers invoked by workers.
//
// The current analyzers synthesize plausible results rather than inspecting
// the content; they stand in for real vision/NLP backends behind the same
// interface.
package analyze

import (
	"context"
	"encoding/json"

	"github.com/hyperjump/shori/internal/models"
)

// Analyzer produces a result payload for one work item. Implementations
// must be idempotent and side-effect-free: duplicate work items may be
// reprocessed under at-least-once delivery, and the later result simply
// overwrites the earlier one.
type Analyzer interface {
	Analyze(ctx context.Context, item *models.WorkItem) (json.RawMessage, error)
}

// Func adapts a function to the Analyzer interface.
type Func func(ctx context.Context, item *models.WorkItem) (json.RawMessage, error)

// Analyze calls f.
func (f Func) Analyze(ctx context.Context, item *models.WorkItem) (json.RawMessage, error) {
	return f(ctx, item)
}
