// Package refreshtokens stores the server side of refresh tokens.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/bea-ebooks/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID string, token string, expiresAt time.Time) error

	// Consume deletes the token and returns what it held, in one statement.
	// Of several callers racing on one token at most one gets it; the rest,
	// and callers with an unknown token, get common.ErrorNotFound.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)
}
