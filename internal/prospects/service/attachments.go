package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"autoplaza_backend/internal/prospects/repository"
	"autoplaza_backend/internal/prospects/transport"
	"autoplaza_backend/platform/apperr"
	"autoplaza_backend/platform/logger"
	"autoplaza_backend/platform/storage"
)

// AttachmentService manages file attachments on prospects. Uploads go
// browser-to-bucket through presigned URLs; the API only ever handles
// metadata.
type AttachmentService struct {
	repo    repository.ProspectsRepository
	storage storage.Service
	bucket  string
	log     *logger.Logger
}

func NewAttachmentService(repo repository.ProspectsRepository, store storage.Service, bucket string, log *logger.Logger) *AttachmentService {
	return &AttachmentService{repo: repo, storage: store, bucket: bucket, log: log}
}

// Enabled reports whether object storage is configured.
func (s *AttachmentService) Enabled() bool {
	return s != nil && s.storage != nil
}

func (s *AttachmentService) guard(ctx context.Context, prospectID, actorID uuid.UUID) error {
	if !s.Enabled() {
		return apperr.New(apperr.KindInternal, "file storage is not configured")
	}
	assigned, err := s.repo.IsAssignedTo(ctx, prospectID, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("prospect not found")
		}
		return err
	}
	if !assigned {
		return apperr.Forbidden("prospect is assigned to another user")
	}
	return nil
}

// RequestUploadURL validates the file and hands back a presigned PUT URL.
func (s *AttachmentService) RequestUploadURL(ctx context.Context, prospectID, actorID uuid.UUID, req transport.RequestUploadURLRequest) (transport.PresignedURLResponse, error) {
	if err := s.guard(ctx, prospectID, actorID); err != nil {
		return transport.PresignedURLResponse{}, err
	}

	presigned, err := s.storage.GenerateUploadURL(ctx, s.bucket, prospectID.String(), req.FileName, req.ContentType, req.SizeBytes)
	if err != nil {
		return transport.PresignedURLResponse{}, apperr.Wrap(apperr.KindBadRequest, err.Error(), err)
	}

	return transport.PresignedURLResponse{
		URL:       presigned.URL,
		FileKey:   presigned.FileKey,
		ExpiresAt: presigned.ExpiresAt,
	}, nil
}

// ConfirmUpload records the metadata after the client finished the PUT.
func (s *AttachmentService) ConfirmUpload(ctx context.Context, prospectID, actorID uuid.UUID, req transport.ConfirmUploadRequest) (transport.AttachmentResponse, error) {
	if err := s.guard(ctx, prospectID, actorID); err != nil {
		return transport.AttachmentResponse{}, err
	}

	attachment, err := s.repo.CreateAttachment(ctx, repository.CreateAttachmentParams{
		ProspectID:  prospectID,
		FileKey:     req.FileKey,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		UploadedBy:  actorID,
	})
	if err != nil {
		return transport.AttachmentResponse{}, err
	}
	return transport.ToAttachmentResponse(attachment), nil
}

func (s *AttachmentService) List(ctx context.Context, prospectID, actorID uuid.UUID) ([]transport.AttachmentResponse, error) {
	if err := s.guard(ctx, prospectID, actorID); err != nil {
		return nil, err
	}

	attachments, err := s.repo.ListAttachments(ctx, prospectID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.AttachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		out = append(out, transport.ToAttachmentResponse(a))
	}
	return out, nil
}

// DownloadURL returns a short-lived presigned GET URL for an attachment.
func (s *AttachmentService) DownloadURL(ctx context.Context, prospectID, attachmentID, actorID uuid.UUID) (transport.PresignedURLResponse, error) {
	if err := s.guard(ctx, prospectID, actorID); err != nil {
		return transport.PresignedURLResponse{}, err
	}

	attachment, err := s.repo.GetAttachmentByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, repository.ErrAttachmentNotFound) {
			return transport.PresignedURLResponse{}, apperr.NotFound("attachment not found")
		}
		return transport.PresignedURLResponse{}, err
	}
	if attachment.ProspectID != prospectID {
		return transport.PresignedURLResponse{}, apperr.NotFound("attachment not found")
	}

	presigned, err := s.storage.GenerateDownloadURL(ctx, s.bucket, attachment.FileKey)
	if err != nil {
		return transport.PresignedURLResponse{}, err
	}
	return transport.PresignedURLResponse{
		URL:       presigned.URL,
		FileKey:   presigned.FileKey,
		ExpiresAt: presigned.ExpiresAt,
	}, nil
}

// Delete removes the object and its metadata. Object deletion failures are
// logged, not surfaced: an orphaned object is cheaper than a dangling row.
func (s *AttachmentService) Delete(ctx context.Context, prospectID, attachmentID, actorID uuid.UUID) error {
	if err := s.guard(ctx, prospectID, actorID); err != nil {
		return err
	}

	attachment, err := s.repo.GetAttachmentByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, repository.ErrAttachmentNotFound) {
			return apperr.NotFound("attachment not found")
		}
		return err
	}
	if attachment.ProspectID != prospectID {
		return apperr.NotFound("attachment not found")
	}

	if err := s.storage.DeleteObject(ctx, s.bucket, attachment.FileKey); err != nil {
		s.log.Warn("failed to delete attachment object", "file_key", attachment.FileKey, "error", err)
	}

	if err := s.repo.DeleteAttachment(ctx, attachmentID); err != nil {
		if errors.Is(err, repository.ErrAttachmentNotFound) {
			return apperr.NotFound("attachment not found")
		}
		return err
	}
	return nil
}
