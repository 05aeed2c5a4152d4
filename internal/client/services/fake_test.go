package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/bea-ebooks/internal/client/client"
	"github.com/dmitrijs2005/bea-ebooks/internal/client/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, client.RunMigrations(context.Background(), db))
	return db
}

func getMeta(t *testing.T, db *sql.DB, k string) []byte {
	t.Helper()
	var v []byte
	err := db.QueryRow(`SELECT value FROM metadata WHERE key=?`, k).Scan(&v)
	if err == sql.ErrNoRows {
		return nil
	}
	require.NoError(t, err)
	return v
}

// fakeClient records calls made by the services.
type fakeClient struct {
	tokens    models.TokenPair
	onRefresh func(models.TokenPair)

	RegisterErr error
	LoginRet    *models.TokenPair
	LoginErr    error
	PingErr     error

	SignRet     *models.UploadTicket
	SignErr     error
	UploadErr   error
	CompleteErr error
	ViewErr     error
	ListRet     *models.EbookList

	LastSign        models.SignUploadRequest
	LastUploadURL   string
	LastUploadType  string
	LastUploadData  []byte
	LastComplete    string
	LastViewPath    string
	LastRegisterArg string
	calls           []string
}

func (f *fakeClient) Register(_ context.Context, email string, _ []byte, role string) (*models.Account, error) {
	f.calls = append(f.calls, "register")
	f.LastRegisterArg = email + "|" + role
	if f.RegisterErr != nil {
		return nil, f.RegisterErr
	}
	return &models.Account{ID: "u1", Email: email, Role: role}, nil
}

func (f *fakeClient) Login(_ context.Context, _ string, _ []byte) (*models.TokenPair, error) {
	f.calls = append(f.calls, "login")
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	f.tokens = *f.LoginRet
	return f.LoginRet, nil
}

func (f *fakeClient) Ping(context.Context) error { return f.PingErr }

func (f *fakeClient) SignUpload(_ context.Context, req models.SignUploadRequest) (*models.UploadTicket, error) {
	f.calls = append(f.calls, "sign")
	f.LastSign = req
	return f.SignRet, f.SignErr
}

func (f *fakeClient) Upload(_ context.Context, url, contentType string, data []byte) error {
	f.calls = append(f.calls, "put")
	f.LastUploadURL, f.LastUploadType, f.LastUploadData = url, contentType, data
	return f.UploadErr
}

func (f *fakeClient) CompleteUpload(_ context.Context, objectPath string) (*models.CompletedUpload, error) {
	f.calls = append(f.calls, "complete")
	f.LastComplete = objectPath
	if f.CompleteErr != nil {
		return nil, f.CompleteErr
	}
	return &models.CompletedUpload{Success: true, ObjectPath: objectPath, Status: "ready"}, nil
}

func (f *fakeClient) ViewURL(_ context.Context, objectPath string) (*models.ViewURL, error) {
	f.LastViewPath = objectPath
	if f.ViewErr != nil {
		return nil, f.ViewErr
	}
	return &models.ViewURL{URL: "https://s3/" + objectPath, ExpiresIn: 3600}, nil
}

func (f *fakeClient) List(context.Context) (*models.EbookList, error) { return f.ListRet, nil }

func (f *fakeClient) SetTokens(p models.TokenPair)          { f.tokens = p }
func (f *fakeClient) Tokens() models.TokenPair              { return f.tokens }
func (f *fakeClient) OnRefresh(fn func(p models.TokenPair)) { f.onRefresh = fn }
