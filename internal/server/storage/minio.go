package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dmitrijs2005/bea-ebooks/internal/logging"
)

// MinioStore talks to MinIO through its native client.
type MinioStore struct {
	client *minio.Client
	bucket string
	log    logging.Logger
}

// NewMinioStore accepts BaseEndpoint either as host:port or as a URL.
func NewMinioStore(c S3Config, l logging.Logger) (*MinioStore, error) {
	endpoint := c.BaseEndpoint
	secure := c.UseSSL
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}
	if endpoint == "" {
		return nil, errors.New("minio endpoint is empty")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:        miniocreds.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure:       secure,
		Region:       c.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return &MinioStore{client: client, bucket: c.Bucket, log: l.With("module", "miniostore")}, nil
}

// EnsureBucket creates the bucket when it is missing.
func (s *MinioStore) EnsureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("bucket exists: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("make bucket: %w", err)
	}
	s.log.Info(ctx, "bucket created", "bucket", s.bucket)
	return nil
}

// SignUpload binds Content-Type into the signature, so the PUT must carry the
// same header value.
func (s *MinioStore) SignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (*SignedUpload, error) {
	var headers http.Header
	if contentType != "" {
		headers = http.Header{"Content-Type": []string{contentType}}
	}
	u, err := s.client.PresignHeader(ctx, http.MethodPut, s.bucket, key, ttl, nil, headers)
	if err != nil {
		return nil, err
	}
	return &SignedUpload{URL: u.String(), Token: u.Query().Get(signatureParam)}, nil
}

func (s *MinioStore) SignView(ctx context.Context, key string, ttl time.Duration) (string, error) {
	params := url.Values{}
	params.Set("response-content-disposition", "inline")
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, params)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *MinioStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Stat(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrObjectNotFound) {
		return false, nil
	}
	return false, err
}

func (s *MinioStore) Stat(ctx context.Context, key string) (*ObjectInfo, error) {
	oi, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey" || strings.EqualFold(resp.Code, "NotFound") {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("stat object: %w", err)
	}
	return &ObjectInfo{
		Key:          key,
		Size:         oi.Size,
		ContentType:  oi.ContentType,
		LastModified: oi.LastModified,
	}, nil
}
