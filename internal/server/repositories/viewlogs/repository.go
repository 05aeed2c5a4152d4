// Package viewlogs stores the audit trail of issued view URLs.
package viewlogs

import (
	"context"

	"github.com/dmitrijs2005/bea-ebooks/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.ViewLog) error
}
