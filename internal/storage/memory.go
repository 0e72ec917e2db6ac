package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hyperjump/shori/internal/models"
)

// MemoryStore is an in-memory Store. Suitable for tests and for running
// the gateway without a database.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*models.Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*models.Document)}
}

// Create inserts a document, stamping CreatedAt/UpdatedAt.
func (m *MemoryStore) Create(ctx context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Keywords == nil {
		doc.Keywords = []string{}
	}
	cp := *doc
	m.docs[doc.ID] = &cp
	return nil
}

// Get returns a document by ID, or ErrNotFound.
func (m *MemoryStore) Get(ctx context.Context, id string) (*models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

// List returns all documents ordered by creation time.
func (m *MemoryStore) List(ctx context.Context) ([]*models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := make([]*models.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		cp := *doc
		docs = append(docs, &cp)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	return docs, nil
}

// Update applies the user-editable fields and refreshes UpdatedAt.
func (m *MemoryStore) Update(ctx context.Context, id string, upd *models.DocumentUpdate) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Name != nil {
		doc.Name = *upd.Name
	}
	if upd.Keywords != nil {
		doc.Keywords = *upd.Keywords
	}
	doc.UpdatedAt = time.Now().UTC()
	cp := *doc
	return &cp, nil
}

// Delete removes a document. Returns ErrNotFound when absent.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

// SetStatus updates the status and optionally the result payload.
func (m *MemoryStore) SetStatus(ctx context.Context, id string, status models.Status, result []byte) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	doc.Status = status
	if result != nil {
		doc.Result = append([]byte(nil), result...)
	}
	doc.UpdatedAt = time.Now().UTC()
	cp := *doc
	return &cp, nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

// Len returns the number of stored documents.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}
