// Package services contains the server-side business logic: the two-phase
// e-book upload, view URL issuance, listing, and account/token management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/bea-ebooks/internal/common"
	"github.com/dmitrijs2005/bea-ebooks/internal/logging"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/access"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/config"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/models"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/storage"
)

type BeginUploadRequest struct {
	FileName string
	Size     int64
	// MimeType is what the client claims. It is only compared against the
	// type the extension implies and never signed or stored.
	MimeType string
}

// UploadTicket is handed to the client after phase one. ExpiresIn is in seconds.
type UploadTicket struct {
	UploadURL  string `json:"uploadUrl"`
	ObjectPath string `json:"objectPath"`
	Token      string `json:"token"`
	FileID     string `json:"fileId"`
	ExpiresIn  int64  `json:"expiresIn"`
}

type CompletedUpload struct {
	Success    bool               `json:"success"`
	ObjectPath string             `json:"objectPath"`
	Status     models.EbookStatus `json:"status"`
}

type ViewURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
	ExpiresIn int64     `json:"expiresIn"`
}

type EbookService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	store        storage.ObjectStore
	gate         access.Gate
	log          logging.Logger
	maxFileSize  int64
	uploadURLTTL time.Duration
	viewURLTTL   time.Duration

	now   func() time.Time
	newID func() string
}

func NewEbookService(db *sql.DB, m repomanager.RepositoryManager, store storage.ObjectStore, gate access.Gate, cfg *config.Config, l logging.Logger) *EbookService {
	return &EbookService{
		db:           db,
		repomanager:  m,
		store:        store,
		gate:         gate,
		log:          l.With("module", "ebooks"),
		maxFileSize:  cfg.MaxFileSize,
		uploadURLTTL: cfg.UploadURLTTL,
		viewURLTTL:   cfg.ViewURLTTL,
		now:          time.Now,
		newID:        func() string { return uuid.New().String() },
	}
}

// BeginUpload validates the request, signs an upload URL for a fresh object
// path and records a pending row. A failed row insert is logged and does not
// fail the call: the caller still gets a usable upload URL.
func (s *EbookService) BeginUpload(ctx context.Context, ownerID string, req BeginUploadRequest) (*UploadTicket, error) {
	if ownerID == "" {
		return nil, common.ErrUnauthenticated
	}
	if strings.TrimSpace(req.FileName) == "" {
		return nil, fmt.Errorf("%w: fileName is required", common.ErrInvalidArgument)
	}
	if req.Size <= 0 {
		return nil, fmt.Errorf("%w: size is required", common.ErrInvalidArgument)
	}

	ext := FileExtension(req.FileName)
	if !AllowedExtension(ext) {
		return nil, fmt.Errorf("%w: only .pdf and .epub files are accepted", common.ErrUnsupportedType)
	}
	if req.Size > s.maxFileSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", common.ErrPayloadTooLarge, s.maxFileSize)
	}

	fileName := SanitizeFileName(req.FileName)
	id := s.newID()
	objectPath := BuildObjectPath(ownerID, id, ext)

	// The extension alone decides what gets signed and stored.
	mimeType := MimeTypeForExtension(ext)
	if req.MimeType != "" && !sameMediaType(req.MimeType, mimeType) {
		s.log.Warn(ctx, "client mime type ignored", "owner_id", ownerID, "file_name", fileName, "claimed", req.MimeType, "used", mimeType)
	}

	signed, err := s.store.SignUpload(ctx, objectPath, mimeType, s.uploadURLTTL)
	if err != nil {
		s.log.Error(ctx, "sign upload failed", "object_path", objectPath, "error", err)
		return nil, fmt.Errorf("%w: sign upload: %v", common.ErrStorage, err)
	}

	now := s.now().UTC()
	ebook := &models.Ebook{
		ID:         id,
		OwnerID:    ownerID,
		ObjectPath: objectPath,
		FileName:   fileName,
		SizeBytes:  req.Size,
		MimeType:   mimeType,
		Status:     models.EbookPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repomanager.Ebooks(s.db).Create(ctx, ebook); err != nil {
		s.log.Error(ctx, "pending ebook row not written", "object_path", objectPath, "error", err)
	}

	s.log.Info(ctx, "upload signed", "owner_id", ownerID, "object_path", objectPath, "size", req.Size)

	return &UploadTicket{
		UploadURL:  signed.URL,
		ObjectPath: objectPath,
		Token:      signed.Token,
		FileID:     id,
		ExpiresIn:  int64(s.uploadURLTTL / time.Second),
	}, nil
}

// authorizeObject runs the checks shared by completion and viewing: identity,
// argument, ownership and presence in storage, in that order.
func (s *EbookService) authorizeObject(ctx context.Context, ownerID, objectPath string) error {
	if ownerID == "" {
		return common.ErrUnauthenticated
	}
	if objectPath == "" {
		return fmt.Errorf("%w: objectPath is required", common.ErrInvalidArgument)
	}
	if !s.gate.CanAccess(ownerID, objectPath) {
		return common.ErrForbidden
	}

	exists, err := s.store.Exists(ctx, objectPath)
	if err != nil {
		s.log.Error(ctx, "existence check failed", "object_path", objectPath, "error", err)
		return fmt.Errorf("%w: exists: %v", common.ErrStorage, err)
	}
	if !exists {
		return fmt.Errorf("%w: object %s", common.ErrorNotFound, objectPath)
	}
	return nil
}

// CompleteUpload confirms the object is in storage and flips its row to
// ready with the size storage reports. Repeating the call is harmless: a row
// that is already ready at that size is left untouched.
func (s *EbookService) CompleteUpload(ctx context.Context, ownerID, objectPath string) (*CompletedUpload, error) {
	if err := s.authorizeObject(ctx, ownerID, objectPath); err != nil {
		return nil, err
	}

	info, err := s.store.Stat(ctx, objectPath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: object %s", common.ErrorNotFound, objectPath)
		}
		s.log.Error(ctx, "stat failed", "object_path", objectPath, "error", err)
		return nil, fmt.Errorf("%w: stat: %v", common.ErrStorage, err)
	}

	repo := s.repomanager.Ebooks(s.db)
	row, err := repo.GetByObjectPath(ctx, objectPath, ownerID)
	switch {
	case err == nil && row.Status == models.EbookReady && row.SizeBytes == info.Size:
		s.log.Debug(ctx, "upload already completed", "owner_id", ownerID, "object_path", objectPath, "file_name", row.FileName)
		return &CompletedUpload{Success: true, ObjectPath: objectPath, Status: models.EbookReady}, nil
	case err != nil && !errors.Is(err, common.ErrorNotFound):
		s.log.Warn(ctx, "ebook row lookup failed", "object_path", objectPath, "error", err)
	}

	updated, err := repo.MarkReady(ctx, objectPath, ownerID, info.Size, s.now().UTC())
	if err != nil {
		s.log.Error(ctx, "mark ready failed", "object_path", objectPath, "error", err)
		return nil, fmt.Errorf("%w: mark ready: %v", common.ErrStorage, err)
	}
	if !updated {
		s.log.Warn(ctx, "no pending row for completed upload", "owner_id", ownerID, "object_path", objectPath)
	}

	s.log.Info(ctx, "upload completed", "owner_id", ownerID, "object_path", objectPath, "size", info.Size)

	return &CompletedUpload{Success: true, ObjectPath: objectPath, Status: models.EbookReady}, nil
}

// CreateViewURL signs an inline view URL. The audit row is best effort.
func (s *EbookService) CreateViewURL(ctx context.Context, ownerID, objectPath string) (*ViewURL, error) {
	if err := s.authorizeObject(ctx, ownerID, objectPath); err != nil {
		return nil, err
	}

	u, err := s.store.SignView(ctx, objectPath, s.viewURLTTL)
	if err != nil {
		s.log.Error(ctx, "sign view failed", "object_path", objectPath, "error", err)
		return nil, fmt.Errorf("%w: sign view: %v", common.ErrStorage, err)
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.viewURLTTL)

	entry := &models.ViewLog{UserID: ownerID, ObjectPath: objectPath, ViewedAt: now, ExpiresAt: expiresAt}
	if err := s.repomanager.ViewLogs(s.db).Create(ctx, entry); err != nil {
		s.log.Warn(ctx, "view log not written", "object_path", objectPath, "error", err)
	}

	return &ViewURL{URL: u, ExpiresAt: expiresAt, ExpiresIn: int64(s.viewURLTTL / time.Second)}, nil
}

// ListReady returns the owner's ready e-books, newest first.
func (s *EbookService) ListReady(ctx context.Context, ownerID string) ([]*models.Ebook, error) {
	if ownerID == "" {
		return nil, common.ErrUnauthenticated
	}
	list, err := s.repomanager.Ebooks(s.db).ListReady(ctx, ownerID)
	if err != nil {
		s.log.Error(ctx, "list ready failed", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("%w: list: %v", common.ErrStorage, err)
	}
	return list, nil
}

func sameMediaType(claimed, want string) bool {
	mt, _, err := mime.ParseMediaType(claimed)
	if err != nil {
		return false
	}
	return strings.EqualFold(mt, want)
}
