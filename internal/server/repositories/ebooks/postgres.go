package ebooks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bea-ebooks/internal/common"
	"github.com/dmitrijs2005/bea-ebooks/internal/dbx"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const ebookColumns = `id, owner_id, object_path, file_name, size_bytes, mime_type, status, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, e *models.Ebook) error {
	query := `
		INSERT INTO ebooks (id, owner_id, object_path, file_name, size_bytes, mime_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.OwnerID, e.ObjectPath, e.FileName, e.SizeBytes, e.MimeType, string(e.Status), e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// MarkReady never touches rows of another owner: both the path and the owner
// are part of the predicate.
func (r *PostgresRepository) MarkReady(ctx context.Context, objectPath, ownerID string, sizeBytes int64, at time.Time) (bool, error) {
	query := `
		UPDATE ebooks
		SET status = 'ready', size_bytes = $1, updated_at = $2
		WHERE object_path = $3 AND owner_id = $4
	`
	res, err := r.db.ExecContext(ctx, query, sizeBytes, at, objectPath, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to mark ready: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) ListReady(ctx context.Context, ownerID string) ([]*models.Ebook, error) {
	query := `SELECT ` + ebookColumns + ` FROM ebooks
		WHERE owner_id = $1 AND status = 'ready'
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select ebooks: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Ebook, 0)
	for rows.Next() {
		item, err := scanEbook(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) GetByObjectPath(ctx context.Context, objectPath, ownerID string) (*models.Ebook, error) {
	query := `SELECT ` + ebookColumns + ` FROM ebooks
		WHERE object_path = $1 AND owner_id = $2
	`
	item, err := scanEbook(r.db.QueryRowContext(ctx, query, objectPath, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select ebook: %w", err)
	}
	return item, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEbook(s rowScanner) (*models.Ebook, error) {
	var (
		e      models.Ebook
		status string
	)
	if err := s.Scan(&e.ID, &e.OwnerID, &e.ObjectPath, &e.FileName, &e.SizeBytes, &e.MimeType, &status, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Status = models.EbookStatus(status)
	return &e, nil
}
