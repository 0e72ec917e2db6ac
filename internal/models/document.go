// Package models defines core data structures for documents and bus messages.
package models

import (
	"encoding/json"
	"time"
)

// Status is the processing state of a document.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transition leaves this status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// DocumentType selects which worker processes a document.
type DocumentType string

const (
	TypeImage DocumentType = "image"
	TypeText  DocumentType = "text"
)

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	return t == TypeImage || t == TypeText
}

// Document represents a stored document with its processing state.
// Result stays null until the document reaches a terminal status.
type Document struct {
	ID        string          `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Type      DocumentType    `json:"type" db:"type"`
	Content   string          `json:"content,omitempty" db:"content"`
	Keywords  []string        `json:"keywords" db:"keywords"`
	Status    Status          `json:"status" db:"status"`
	Result    json.RawMessage `json:"result" db:"result"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// Sanitized returns a copy with Content elided, for list/get responses
// that did not ask for the full payload.
func (d *Document) Sanitized() *Document {
	c := *d
	c.Content = ""
	return &c
}

// DocumentInput is the creation payload accepted by the gateway.
type DocumentInput struct {
	Name     string       `json:"name"`
	Type     DocumentType `json:"type"`
	Content  string       `json:"content"`
	Keywords []string     `json:"keywords,omitempty"`
}

// DocumentUpdate carries the user-editable fields. Nil pointers mean
// "leave unchanged"; at least one field must be present.
type DocumentUpdate struct {
	Name     *string   `json:"name,omitempty"`
	Keywords *[]string `json:"keywords,omitempty"`
}

// Empty reports whether the update carries no fields at all.
func (u *DocumentUpdate) Empty() bool {
	return u.Name == nil && u.Keywords == nil
}

// WorkItem is the message sent on a type-specific topic to request
// processing of a document. It is a projection of Document and must not
// be treated as authoritative once the store has been updated.
type WorkItem struct {
	DocumentID string       `json:"documentId"`
	Name       string       `json:"name"`
	Type       DocumentType `json:"type"`
	Content    string       `json:"content"`
}

// ResultMessage is the message workers publish on the results topic.
// It correlates back to a document by identifier only.
type ResultMessage struct {
	DocumentID string          `json:"documentId"`
	Result     json.RawMessage `json:"result"`
}
