package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/bea-ebooks/internal/common"
	"github.com/dmitrijs2005/bea-ebooks/internal/logging"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/access"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/auth"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/config"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/models"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/repositories/inmemory"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/services"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/storage"
)

const secret = "test-secret"

type httpErr struct {
	Error string `json:"error"`
}

func newTestServer(t *testing.T) (*Server, *storage.MemoryStore) {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                    secret,
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: time.Hour,
		MaxFileSize:                  104857600,
		UploadURLTTL:                 time.Hour,
		ViewURLTTL:                   time.Hour,
	}
	repos := inmemory.NewManager()
	store := storage.NewMemoryStore("ebooks")
	l := logging.Nop()

	srv := NewServer(Options{
		Address:   "127.0.0.1:0",
		SecretKey: secret,
		Ebooks:    services.NewEbookService(nil, repos, store, access.OwnerPrefixGate{}, cfg, l),
		Users:     services.NewUserService(nil, repos, cfg, l),
		Logger:    l,
	})
	return srv, store
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func registerAndLogin(t *testing.T, h http.Handler, email string) (string, services.TokenPair) {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": "correct horse", "role": "student",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reg := decode[registerResponse](t, rec)

	rec = do(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": "correct horse",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return reg.ID, decode[services.TokenPair](t, rec)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestUploadViewListFlow(t *testing.T) {
	srv, store := newTestServer(t)
	userID, tokens := registerAndLogin(t, srv, "alice@bea.edu")

	rec := do(t, srv, http.MethodPost, "/api/pdf/uploads/sign", tokens.AccessToken, map[string]any{
		"fileName": "report.pdf", "size": 2048, "mime": "application/pdf",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ticket := decode[services.UploadTicket](t, rec)
	assert.Regexp(t, `^`+userID+`/[0-9a-f-]+\.pdf$`, ticket.ObjectPath)
	assert.Equal(t, int64(3600), ticket.ExpiresIn)
	assert.NotEmpty(t, ticket.UploadURL)
	assert.NotEmpty(t, ticket.Token)
	assert.NotEmpty(t, ticket.FileID)

	body := map[string]string{"objectPath": ticket.ObjectPath}

	rec = do(t, srv, http.MethodPost, "/api/pdf/uploads/complete", tokens.AccessToken, body)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/pdf/list", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"pdfs":[],"count":0}`, rec.Body.String())

	store.Put(ticket.ObjectPath, make([]byte, 1000), "application/pdf")

	rec = do(t, srv, http.MethodPost, "/api/pdf/uploads/complete", tokens.AccessToken, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true,"objectPath":"`+ticket.ObjectPath+`","status":"ready"}`, rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/api/pdf/view-url", tokens.AccessToken, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[services.ViewURL](t, rec)
	assert.Contains(t, view.URL, ticket.ObjectPath)
	assert.Equal(t, int64(3600), view.ExpiresIn)
	assert.WithinDuration(t, time.Now().Add(time.Hour), view.ExpiresAt, time.Minute)

	rec = do(t, srv, http.MethodGet, "/api/pdf/list", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[listResponse](t, rec)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, int64(1000), list.PDFs[0].SizeBytes)
	assert.Equal(t, models.EbookReady, list.PDFs[0].Status)
}

func TestPDFEndpoints_Errors(t *testing.T) {
	srv, store := newTestServer(t)
	_, alice := registerAndLogin(t, srv, "alice@bea.edu")
	bobID, _ := registerAndLogin(t, srv, "bob@bea.edu")
	store.Put(bobID+"/book.pdf", []byte("x"), "application/pdf")

	expired, err := auth.GenerateToken("1", models.RoleStudent, []byte(secret), -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		body     any
		wantCode int
	}{
		{"sign without token", http.MethodPost, "/api/pdf/uploads/sign", "", map[string]any{"fileName": "a.pdf", "size": 1}, http.StatusUnauthorized},
		{"list without token", http.MethodGet, "/api/pdf/list", "", nil, http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/pdf/list", "garbage", nil, http.StatusUnauthorized},
		{"expired token", http.MethodGet, "/api/pdf/list", expired, nil, http.StatusUnauthorized},
		{"unsupported type", http.MethodPost, "/api/pdf/uploads/sign", alice.AccessToken, map[string]any{"fileName": "a.docx", "size": 1}, http.StatusBadRequest},
		{"too large", http.MethodPost, "/api/pdf/uploads/sign", alice.AccessToken, map[string]any{"fileName": "a.pdf", "size": 104857601}, http.StatusBadRequest},
		{"missing size", http.MethodPost, "/api/pdf/uploads/sign", alice.AccessToken, map[string]any{"fileName": "a.pdf"}, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/api/pdf/uploads/sign", alice.AccessToken, "{not json", http.StatusBadRequest},
		{"complete without path", http.MethodPost, "/api/pdf/uploads/complete", alice.AccessToken, map[string]string{}, http.StatusBadRequest},
		{"complete other owner", http.MethodPost, "/api/pdf/uploads/complete", alice.AccessToken, map[string]string{"objectPath": bobID + "/book.pdf"}, http.StatusForbidden},
		{"view other owner", http.MethodPost, "/api/pdf/view-url", alice.AccessToken, map[string]string{"objectPath": bobID + "/book.pdf"}, http.StatusForbidden},
		{"view single segment", http.MethodPost, "/api/pdf/view-url", alice.AccessToken, map[string]string{"objectPath": "book.pdf"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[httpErr](t, rec).Error)
		})
	}
}

func TestAuthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	_, tokens := registerAndLogin(t, srv, "alice@bea.edu")

	rec := do(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "alice@bea.edu", "password": "another one"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "not-an-email", "password": "short", "role": "janitor"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode[map[string]string](t, rec)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Equal(t, "role must be one of student, teacher, parent, branch-admin, country-master, super-master", fields["role"])

	rec = do(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@bea.edu", "password": "wrong password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": tokens.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)
	next := decode[services.TokenPair](t, rec)
	assert.NotEqual(t, tokens.RefreshToken, next.RefreshToken)

	rec = do(t, srv, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": tokens.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/auth/refresh", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type brokenEbooks struct{ EbookService }

func (brokenEbooks) ListReady(context.Context, string) ([]*models.Ebook, error) {
	return nil, errors.New("connection reset by peer")
}

func TestInternalErrorsAreGeneric(t *testing.T) {
	srv := NewServer(Options{SecretKey: secret, Ebooks: brokenEbooks{}, Logger: logging.Nop()})
	token, err := auth.GenerateToken("u1", models.RoleStudent, []byte(secret), time.Hour)
	require.NoError(t, err)

	rec := do(t, srv, http.MethodGet, "/api/pdf/list", token, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{common.ErrUnauthenticated, http.StatusUnauthorized},
		{common.ErrorUnauthorized, http.StatusUnauthorized},
		{common.ErrTokenExpired, http.StatusUnauthorized},
		{common.ErrRefreshTokenExpired, http.StatusUnauthorized},
		{common.ErrInvalidArgument, http.StatusBadRequest},
		{common.ErrUnsupportedType, http.StatusBadRequest},
		{common.ErrPayloadTooLarge, http.StatusBadRequest},
		{common.ErrForbidden, http.StatusForbidden},
		{common.ErrorNotFound, http.StatusNotFound},
		{common.ErrAlreadyExists, http.StatusConflict},
		{common.ErrStorage, http.StatusInternalServerError},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	srv := NewServer(Options{Address: "127.0.0.1:0", ShutdownTimeout: time.Second, Logger: logging.Nop()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
