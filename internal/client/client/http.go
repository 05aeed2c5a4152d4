package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/dmitrijs2005/bea-ebooks/internal/client/models"
	"github.com/dmitrijs2005/bea-ebooks/internal/common"
	"github.com/dmitrijs2005/bea-ebooks/internal/netx"
)

type HTTPClient struct {
	baseURL string
	hc      *http.Client

	mu        sync.Mutex
	tokens    models.TokenPair
	onRefresh func(models.TokenPair)
}

func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), hc: hc}
}

func (c *HTTPClient) SetTokens(pair models.TokenPair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = pair
}

func (c *HTTPClient) Tokens() models.TokenPair {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

func (c *HTTPClient) OnRefresh(fn func(models.TokenPair)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRefresh = fn
}

func (c *HTTPClient) Register(ctx context.Context, email string, password []byte, role string) (*models.Account, error) {
	req := map[string]string{"email": email, "password": string(password)}
	if role != "" {
		req["role"] = role
	}
	var acc models.Account
	if err := c.call(ctx, http.MethodPost, "/api/auth/register", req, &acc, false); err != nil {
		return nil, err
	}
	return &acc, nil
}

func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (*models.TokenPair, error) {
	req := map[string]string{"email": email, "password": string(password)}
	var pair models.TokenPair
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", req, &pair, false); err != nil {
		return nil, err
	}
	c.SetTokens(pair)
	return &pair, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/health", nil, nil, false)
}

func (c *HTTPClient) SignUpload(ctx context.Context, req models.SignUploadRequest) (*models.UploadTicket, error) {
	var t models.UploadTicket
	if err := c.call(ctx, http.MethodPost, "/api/pdf/uploads/sign", req, &t, true); err != nil {
		return nil, err
	}
	return &t, nil
}

// Upload sends the file bytes straight to object storage; the API server is
// not involved.
func (c *HTTPClient) Upload(ctx context.Context, uploadURL, contentType string, data []byte) error {
	if err := netx.UploadToPresignedURL(ctx, c.hc, uploadURL, contentType, data); err != nil {
		return fmt.Errorf("upload to storage: %w", err)
	}
	return nil
}

func (c *HTTPClient) CompleteUpload(ctx context.Context, objectPath string) (*models.CompletedUpload, error) {
	var res models.CompletedUpload
	if err := c.call(ctx, http.MethodPost, "/api/pdf/uploads/complete", map[string]string{"objectPath": objectPath}, &res, true); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) ViewURL(ctx context.Context, objectPath string) (*models.ViewURL, error) {
	var res models.ViewURL
	if err := c.call(ctx, http.MethodPost, "/api/pdf/view-url", map[string]string{"objectPath": objectPath}, &res, true); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) List(ctx context.Context) (*models.EbookList, error) {
	var res models.EbookList
	if err := c.call(ctx, http.MethodGet, "/api/pdf/list", nil, &res, true); err != nil {
		return nil, err
	}
	return &res, nil
}

// call performs one request. An authenticated call that fails with an expired
// access token is retried once after rotating the token pair.
func (c *HTTPClient) call(ctx context.Context, method, path string, in, out any, auth bool) error {
	err := c.do(ctx, method, path, in, out, auth)
	if !auth || !isTokenExpired(err) {
		return err
	}

	if rerr := c.refresh(ctx); rerr != nil {
		return fmt.Errorf("refresh token: %w", rerr)
	}
	return c.do(ctx, method, path, in, out, auth)
}

func (c *HTTPClient) refresh(ctx context.Context) error {
	tokens := c.Tokens()
	if tokens.RefreshToken == "" {
		return ErrNotLoggedIn
	}

	var pair models.TokenPair
	req := map[string]string{"refreshToken": tokens.RefreshToken}
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", req, &pair, false); err != nil {
		return err
	}

	c.mu.Lock()
	c.tokens = pair
	fn := c.onRefresh
	c.mu.Unlock()

	if fn != nil {
		fn(pair)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any, auth bool) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if auth {
		token := c.Tokens().AccessToken
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError reads {"error": "..."}. Validation answers carry a field map
// instead; those are rendered as "field: message" pairs.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	msg := strings.TrimSpace(string(raw))
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err == nil {
		if m, ok := payload["error"].(string); ok {
			msg = m
		} else if len(payload) > 0 {
			parts := make([]string, 0, len(payload))
			for k, v := range payload {
				parts = append(parts, fmt.Sprintf("%s: %v", k, v))
			}
			msg = strings.Join(parts, "; ")
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	apiErr := &APIError{Status: resp.StatusCode, Message: msg}
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %w", ErrUnauthorized, apiErr)
	}
	if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusBadGateway {
		return fmt.Errorf("%w: %w", ErrUnavailable, apiErr)
	}
	return apiErr
}

func isTokenExpired(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized && apiErr.Message == common.ErrTokenExpired.Error()
}
