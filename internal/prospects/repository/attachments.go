package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrAttachmentNotFound = errors.New("attachment not found")

// Attachment is file metadata for documents and photos tied to a prospect.
// The binary itself lives in object storage under FileKey.
type Attachment struct {
	ID          uuid.UUID
	ProspectID  uuid.UUID
	FileKey     string
	FileName    string
	ContentType string
	SizeBytes   int64
	UploadedBy  uuid.UUID
	CreatedAt   time.Time
}

type CreateAttachmentParams struct {
	ProspectID  uuid.UUID
	FileKey     string
	FileName    string
	ContentType string
	SizeBytes   int64
	UploadedBy  uuid.UUID
}

func (r *Repository) CreateAttachment(ctx context.Context, params CreateAttachmentParams) (Attachment, error) {
	var a Attachment
	err := r.pool.QueryRow(ctx, `
		INSERT INTO prospect_attachments (prospect_id, file_key, file_name, content_type, size_bytes, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, prospect_id, file_key, file_name, content_type, size_bytes, uploaded_by, created_at
	`, params.ProspectID, params.FileKey, params.FileName, params.ContentType, params.SizeBytes, params.UploadedBy).Scan(
		&a.ID, &a.ProspectID, &a.FileKey, &a.FileName, &a.ContentType, &a.SizeBytes, &a.UploadedBy, &a.CreatedAt,
	)
	if err != nil {
		return Attachment{}, err
	}
	return a, nil
}

func (r *Repository) GetAttachmentByID(ctx context.Context, id uuid.UUID) (Attachment, error) {
	var a Attachment
	err := r.pool.QueryRow(ctx, `
		SELECT id, prospect_id, file_key, file_name, content_type, size_bytes, uploaded_by, created_at
		FROM prospect_attachments WHERE id = $1
	`, id).Scan(
		&a.ID, &a.ProspectID, &a.FileKey, &a.FileName, &a.ContentType, &a.SizeBytes, &a.UploadedBy, &a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Attachment{}, ErrAttachmentNotFound
	}
	return a, err
}

func (r *Repository) ListAttachments(ctx context.Context, prospectID uuid.UUID) ([]Attachment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, prospect_id, file_key, file_name, content_type, size_bytes, uploaded_by, created_at
		FROM prospect_attachments
		WHERE prospect_id = $1
		ORDER BY created_at DESC
	`, prospectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attachments := make([]Attachment, 0)
	for rows.Next() {
		var a Attachment
		if err := rows.Scan(&a.ID, &a.ProspectID, &a.FileKey, &a.FileName, &a.ContentType, &a.SizeBytes, &a.UploadedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

func (r *Repository) DeleteAttachment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM prospect_attachments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAttachmentNotFound
	}
	return nil
}
