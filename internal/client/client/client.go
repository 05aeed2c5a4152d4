// Package client talks to the e-book HTTP API and opens the local session
// store.
package client

import (
	"context"

	"github.com/dmitrijs2005/bea-ebooks/internal/client/models"
)

type Client interface {
	Register(ctx context.Context, email string, password []byte, role string) (*models.Account, error)
	Login(ctx context.Context, email string, password []byte) (*models.TokenPair, error)
	Ping(ctx context.Context) error

	SignUpload(ctx context.Context, req models.SignUploadRequest) (*models.UploadTicket, error)
	Upload(ctx context.Context, uploadURL, contentType string, data []byte) error
	CompleteUpload(ctx context.Context, objectPath string) (*models.CompletedUpload, error)
	ViewURL(ctx context.Context, objectPath string) (*models.ViewURL, error)
	List(ctx context.Context) (*models.EbookList, error)

	SetTokens(pair models.TokenPair)
	Tokens() models.TokenPair
	// OnRefresh is called with the new pair after a transparent refresh.
	OnRefresh(fn func(models.TokenPair))
}
