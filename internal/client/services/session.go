// Package services contains the client workflows: the session kept in the
// local store and the e-book upload/view flows.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/bea-ebooks/internal/client/client"
	"github.com/dmitrijs2005/bea-ebooks/internal/client/models"
	"github.com/dmitrijs2005/bea-ebooks/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/bea-ebooks/internal/dbx"
	"github.com/dmitrijs2005/bea-ebooks/internal/logging"
)

const (
	keyEmail        = "email"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

type SessionService interface {
	Register(ctx context.Context, email string, password []byte, role string) (*models.Account, error)
	Login(ctx context.Context, email string, password []byte) error
	// Restore loads a saved session into the API client. It reports the email
	// of the saved session, or "" when there is none.
	Restore(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
}

type sessionService struct {
	client client.Client
	db     *sql.DB
	logger logging.Logger
}

func NewSessionService(c client.Client, db *sql.DB, l logging.Logger) SessionService {
	s := &sessionService{client: c, db: db, logger: l.With("module", "session")}
	c.OnRefresh(func(pair models.TokenPair) {
		if err := s.saveTokens(context.Background(), s.db, pair); err != nil {
			s.logger.Warn(context.Background(), "could not persist refreshed tokens", "error", err)
		}
	})
	return s
}

func (s *sessionService) repo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

func (s *sessionService) Register(ctx context.Context, email string, password []byte, role string) (*models.Account, error) {
	return s.client.Register(ctx, strings.TrimSpace(email), password, role)
}

// Login authenticates and replaces any saved session in one transaction.
func (s *sessionService) Login(ctx context.Context, email string, password []byte) error {
	email = strings.TrimSpace(email)

	pair, err := s.client.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := s.repo(tx)
		if err := r.Clear(ctx); err != nil {
			return err
		}
		if err := r.Set(ctx, keyEmail, []byte(email)); err != nil {
			return err
		}
		return s.saveTokens(ctx, tx, *pair)
	})
	if err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}
	return nil
}

func (s *sessionService) saveTokens(ctx context.Context, db dbx.DBTX, pair models.TokenPair) error {
	r := s.repo(db)
	if err := r.Set(ctx, keyAccessToken, []byte(pair.AccessToken)); err != nil {
		return err
	}
	return r.Set(ctx, keyRefreshToken, []byte(pair.RefreshToken))
}

func (s *sessionService) Restore(ctx context.Context) (string, error) {
	r := s.repo(s.db)

	email, err := r.Get(ctx, keyEmail)
	if err != nil {
		return "", err
	}
	access, err := r.Get(ctx, keyAccessToken)
	if err != nil {
		return "", err
	}
	refresh, err := r.Get(ctx, keyRefreshToken)
	if err != nil {
		return "", err
	}
	if access == nil && refresh == nil {
		return "", nil
	}

	s.client.SetTokens(models.TokenPair{AccessToken: string(access), RefreshToken: string(refresh)})
	return string(email), nil
}

// Logout forgets the session locally. Refresh tokens expire server side.
func (s *sessionService) Logout(ctx context.Context) error {
	s.client.SetTokens(models.TokenPair{})
	if err := s.repo(s.db).Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *sessionService) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx); err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", client.ErrUnavailable, err)
	}
	return nil
}
