// Package storage issues signed URLs against an object store bucket and
// answers existence and metadata queries about stored objects.
package storage

import (
	"context"
	"errors"
	"net/url"
	"time"
)

// ErrObjectNotFound is returned by Stat when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// signatureParam carries the request signature in SigV4 presigned URLs.
const signatureParam = "X-Amz-Signature"

// SignedUpload is a capability to PUT one object.
type SignedUpload struct {
	URL   string
	Token string
}

type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// ObjectStore is scoped to a single bucket.
type ObjectStore interface {
	SignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (*SignedUpload, error)
	// SignView returns a URL whose response is rendered inline by the browser.
	SignView(ctx context.Context, key string, ttl time.Duration) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Stat(ctx context.Context, key string) (*ObjectInfo, error)
}

func signatureOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get(signatureParam)
}
