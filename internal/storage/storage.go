// Package storage defines the persistence interface for documents.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/shori/internal/models"
)

// ErrNotFound is returned when no document exists for an identifier.
var ErrNotFound = errors.New("document not found")

// Store defines document persistence operations. All operations are atomic
// per record; connectivity loss surfaces as an error, never silently.
type Store interface {
	Create(ctx context.Context, doc *models.Document) error
	Get(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context) ([]*models.Document, error)
	Update(ctx context.Context, id string, upd *models.DocumentUpdate) (*models.Document, error)
	Delete(ctx context.Context, id string) error

	// SetStatus updates the status and, when result is non-nil, the result
	// payload of a document. It does not validate the transition; that is
	// the orchestration layer's job.
	SetStatus(ctx context.Context, id string, status models.Status, result []byte) (*models.Document, error)

	// Ping reports whether the store is reachable. Used for the startup
	// connectivity check.
	Ping(ctx context.Context) error

	Close() error
}
