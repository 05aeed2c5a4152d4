// Package models defines server-side data models persisted in the database.
package models

import "time"

// EbookStatus is the lifecycle state of an uploaded e-book.
type EbookStatus string

const (
	// EbookPending is set when the signed upload URL is issued.
	EbookPending EbookStatus = "pending"
	// EbookReady is set once the object has been confirmed in storage.
	EbookReady EbookStatus = "ready"
)

// Ebook is the metadata row of one uploaded file. The binary lives in object
// storage under ObjectPath, whose first segment is OwnerID.
type Ebook struct {
	ID         string      `json:"id"`
	OwnerID    string      `json:"ownerId"`
	ObjectPath string      `json:"objectPath"`
	FileName   string      `json:"fileName"`
	SizeBytes  int64       `json:"sizeBytes"`
	MimeType   string      `json:"mimeType"`
	Status     EbookStatus `json:"status"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// ViewLog records that a user was handed a view URL for an object.
type ViewLog struct {
	UserID     string
	ObjectPath string
	ViewedAt   time.Time
	ExpiresAt  time.Time
}
