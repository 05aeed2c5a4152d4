// Package ebooks declares the repository contract for e-book metadata rows
// and its PostgreSQL implementation.
package ebooks

import (
	"context"
	"time"

	"github.com/dmitrijs2005/bea-ebooks/internal/server/models"
)

type Repository interface {
	// Create inserts a new row. ID, OwnerID and ObjectPath must be set.
	Create(ctx context.Context, ebook *models.Ebook) error

	// MarkReady flips the row identified by (objectPath, ownerID) to ready and
	// records the confirmed size. It reports whether a row was updated.
	MarkReady(ctx context.Context, objectPath, ownerID string, sizeBytes int64, at time.Time) (bool, error)

	// ListReady returns the owner's ready rows, newest first.
	ListReady(ctx context.Context, ownerID string) ([]*models.Ebook, error)

	// GetByObjectPath returns the owner's row for objectPath or common.ErrorNotFound.
	GetByObjectPath(ctx context.Context, objectPath, ownerID string) (*models.Ebook, error)
}
