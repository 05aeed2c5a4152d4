package storage

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/bea-ebooks/internal/common"
)

type memObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// MemoryStore keeps objects in process memory. The URLs it signs use the
// memory:// scheme and cannot be fetched; Put stands in for the client upload.
type MemoryStore struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]memObject
	now     func() time.Time
}

func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{bucket: bucket, objects: map[string]memObject{}, now: time.Now}
}

// Put stores data under key, replacing any previous object.
func (s *MemoryStore) Put(key string, data []byte, contentType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := append([]byte(nil), data...)
	s.objects[key] = memObject{data: cp, contentType: contentType, modified: s.now().UTC()}
}

// Get returns a copy of the object's bytes.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), o.data...), true
}

func (s *MemoryStore) sign(key string, ttl time.Duration, extra url.Values) (string, string, error) {
	sig, err := common.MakeRandHexString(32)
	if err != nil {
		return "", "", err
	}
	q := url.Values{}
	for k, v := range extra {
		q[k] = v
	}
	q.Set("X-Amz-Expires", strconv.Itoa(int(ttl/time.Second)))
	q.Set(signatureParam, sig)
	u := url.URL{Scheme: "memory", Host: s.bucket, Path: "/" + key, RawQuery: q.Encode()}
	return u.String(), sig, nil
}

func (s *MemoryStore) SignUpload(_ context.Context, key, contentType string, ttl time.Duration) (*SignedUpload, error) {
	if key == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}
	u, sig, err := s.sign(key, ttl, nil)
	if err != nil {
		return nil, err
	}
	return &SignedUpload{URL: u, Token: sig}, nil
}

func (s *MemoryStore) SignView(_ context.Context, key string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key cannot be empty")
	}
	u, _, err := s.sign(key, ttl, url.Values{"response-content-disposition": {"inline"}})
	return u, err
}

func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *MemoryStore) Stat(_ context.Context, key string) (*ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return &ObjectInfo{Key: key, Size: int64(len(o.data)), ContentType: o.contentType, LastModified: o.modified}, nil
}
