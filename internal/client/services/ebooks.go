package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/bea-ebooks/internal/client/client"
	"github.com/dmitrijs2005/bea-ebooks/internal/client/models"
	"github.com/dmitrijs2005/bea-ebooks/internal/filex"
	"github.com/dmitrijs2005/bea-ebooks/internal/logging"
)

var ErrEmptyObjectPath = errors.New("object path is required")

// readFile is a test seam for filex.ReadLimited.
var readFile = filex.ReadLimited

type EbookService interface {
	Upload(ctx context.Context, path string) (*models.CompletedUpload, error)
	List(ctx context.Context) (*models.EbookList, error)
	View(ctx context.Context, objectPath string) (*models.ViewURL, error)
}

type ebookService struct {
	client      client.Client
	maxFileSize int64
	logger      logging.Logger
}

func NewEbookService(c client.Client, maxFileSize int64, l logging.Logger) EbookService {
	return &ebookService{client: c, maxFileSize: maxFileSize, logger: l.With("module", "ebooks")}
}

// Upload runs the two-phase protocol: sign, PUT the bytes to storage, then
// confirm. A failed PUT leaves the record pending on the server.
func (s *ebookService) Upload(ctx context.Context, path string) (*models.CompletedUpload, error) {
	data, err := readFile(path, s.maxFileSize)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(path)
	contentType := contentTypeFor(name)

	ticket, err := s.client.SignUpload(ctx, models.SignUploadRequest{
		FileName: name,
		Size:     int64(len(data)),
		Mime:     contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("sign upload: %w", err)
	}
	s.logger.Debug(ctx, "upload signed", "object_path", ticket.ObjectPath, "expires_in", ticket.ExpiresIn)

	if err := s.client.Upload(ctx, ticket.UploadURL, contentType, data); err != nil {
		return nil, err
	}

	done, err := s.client.CompleteUpload(ctx, ticket.ObjectPath)
	if err != nil {
		return nil, fmt.Errorf("complete upload: %w", err)
	}
	return done, nil
}

func (s *ebookService) List(ctx context.Context) (*models.EbookList, error) {
	return s.client.List(ctx)
}

func (s *ebookService) View(ctx context.Context, objectPath string) (*models.ViewURL, error) {
	objectPath = strings.TrimSpace(objectPath)
	if objectPath == "" {
		return nil, ErrEmptyObjectPath
	}
	return s.client.ViewURL(ctx, objectPath)
}

// contentTypeFor is sent both with the sign request and with the PUT; the
// upload URL is only valid for that content type.
func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".epub":
		return "application/epub+zip"
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
