package lifecycle

import (
	"errors"
	"fmt"

	"github.com/hyperjump/shori/internal/models"
)

// ErrInvalidTransition is returned when a status change is not permitted
// by the transition table.
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions is the document status state machine. Status only moves
// forward; completed and failed are terminal.
var transitions = map[models.Status][]models.Status{
	models.StatusPending:    {models.StatusProcessing, models.StatusFailed},
	models.StatusProcessing: {models.StatusCompleted, models.StatusFailed},
	models.StatusCompleted:  {},
	models.StatusFailed:     {},
}

// CanTransition reports whether from → to is a valid status change.
// Re-applying a terminal status to itself is allowed: a replayed result
// message is a harmless overwrite, not a distinct transition.
func CanTransition(from, to models.Status) bool {
	if from == to && from.Terminal() {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// checkTransition returns a wrapped ErrInvalidTransition for an illegal
// status change.
func checkTransition(from, to models.Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
