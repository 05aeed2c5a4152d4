// Package inmemory provides map-backed repositories for running the server
// without a database. Data does not survive a restart.
package inmemory

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/bea-ebooks/internal/common"
	"github.com/dmitrijs2005/bea-ebooks/internal/dbx"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/models"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/repositories/ebooks"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/repositories/users"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/repositories/viewlogs"
)

type store struct {
	mu            sync.RWMutex
	seq           int
	users         map[string]*models.User
	refreshTokens map[string]*models.RefreshToken
	ebooks        map[string]*models.Ebook
	viewLogs      []models.ViewLog
}

// Manager implements repomanager.RepositoryManager. The db arguments are
// ignored; every repository shares the same maps.
type Manager struct {
	s    *store
	txMu sync.Mutex
}

func NewManager() *Manager {
	return &Manager{s: &store{
		users:         map[string]*models.User{},
		refreshTokens: map[string]*models.RefreshToken{},
		ebooks:        map[string]*models.Ebook{},
	}}
}

func (m *Manager) RunMigrations(context.Context, *sql.DB) error { return nil }

// RunInTx serializes units of work. There is no rollback: writes made by fn
// before it fails remain visible.
func (m *Manager) RunInTx(ctx context.Context, _ *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, nil)
}

func (m *Manager) Users(dbx.DBTX) users.Repository                 { return &userRepo{m.s} }
func (m *Manager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return &refreshTokenRepo{m.s} }
func (m *Manager) Ebooks(dbx.DBTX) ebooks.Repository               { return &ebookRepo{m.s} }
func (m *Manager) ViewLogs(dbx.DBTX) viewlogs.Repository           { return &viewLogRepo{m.s} }

// ViewLogCount is used by tests and diagnostics.
func (m *Manager) ViewLogCount() int {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return len(m.s.viewLogs)
}

func (s *store) nextID() string {
	s.seq++
	return strconv.Itoa(s.seq)
}

type userRepo struct{ s *store }

func (r *userRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return nil, common.ErrAlreadyExists
		}
	}
	user.ID = r.s.nextID()
	user.CreatedAt = time.Now().UTC()
	cp := *user
	r.s.users[user.ID] = &cp
	return user, nil
}

func (r *userRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

type refreshTokenRepo struct{ s *store }

func (r *refreshTokenRepo) Create(_ context.Context, userID string, token string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.refreshTokens[token] = &models.RefreshToken{
		ID:        r.s.nextID(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (r *refreshTokenRepo) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.refreshTokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.s.refreshTokens, token)
	cp := *t
	return &cp, nil
}

type ebookRepo struct{ s *store }

func (r *ebookRepo) Create(_ context.Context, e *models.Ebook) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ebooks[e.ObjectPath]; ok {
		return common.ErrAlreadyExists
	}
	cp := *e
	r.s.ebooks[e.ObjectPath] = &cp
	return nil
}

func (r *ebookRepo) MarkReady(_ context.Context, objectPath, ownerID string, sizeBytes int64, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.ebooks[objectPath]
	if !ok || e.OwnerID != ownerID {
		return false, nil
	}
	e.Status = models.EbookReady
	e.SizeBytes = sizeBytes
	e.UpdatedAt = at
	return true, nil
}

func (r *ebookRepo) ListReady(_ context.Context, ownerID string) ([]*models.Ebook, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.Ebook, 0)
	for _, e := range r.s.ebooks {
		if e.OwnerID == ownerID && e.Status == models.EbookReady {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ObjectPath > out[j].ObjectPath
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ebookRepo) GetByObjectPath(_ context.Context, objectPath, ownerID string) (*models.Ebook, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.ebooks[objectPath]
	if !ok || e.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	cp := *e
	return &cp, nil
}

type viewLogRepo struct{ s *store }

func (r *viewLogRepo) Create(_ context.Context, entry *models.ViewLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.viewLogs = append(r.s.viewLogs, *entry)
	return nil
}
