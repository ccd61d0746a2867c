package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"autoplaza_backend/internal/prospects/domain"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// ProspectReader provides read-only access to prospect data.
type ProspectReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Prospect, error)
	List(ctx context.Context, filter ListFilter, now time.Time) ([]domain.Prospect, int, error)
	ListByAssignee(ctx context.Context, userID uuid.UUID) ([]domain.Prospect, error)
	ListByCreator(ctx context.Context, userID uuid.UUID) ([]domain.Prospect, error)
	ListHot(ctx context.Context, now time.Time, assignedTo *uuid.UUID, limit int) ([]domain.Prospect, error)
	ListStale(ctx context.Context, now time.Time, assignedTo *uuid.UUID, limit int) ([]domain.Prospect, error)
	ListUpcomingAppointments(ctx context.Context, now time.Time, assignedTo *uuid.UUID, limit int) ([]domain.Prospect, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
}

// ProspectWriter provides write operations for prospect management.
type ProspectWriter interface {
	Create(ctx context.Context, prospect *domain.Prospect) error
	Update(ctx context.Context, prospect *domain.Prospect) error
	Delete(ctx context.Context, id uuid.UUID) error
	BulkDelete(ctx context.Context, ids []uuid.UUID) (int, error)
}

// AssignmentStore handles ownership checks and the append-only
// reassignment audit trail.
type AssignmentStore interface {
	IsAssignedTo(ctx context.Context, id uuid.UUID, userID uuid.UUID) (bool, error)
	AppendReassignment(ctx context.Context, prospectID uuid.UUID, entry domain.ReassignmentEntry, updatedAt time.Time) error
}

// StatsReader provides access to funnel aggregates.
type StatsReader interface {
	GetStats(ctx context.Context, now time.Time) (Stats, error)
}

// AttachmentStore manages file attachment metadata for prospects.
type AttachmentStore interface {
	CreateAttachment(ctx context.Context, params CreateAttachmentParams) (Attachment, error)
	GetAttachmentByID(ctx context.Context, id uuid.UUID) (Attachment, error)
	ListAttachments(ctx context.Context, prospectID uuid.UUID) ([]Attachment, error)
	DeleteAttachment(ctx context.Context, id uuid.UUID) error
}

// =====================================
// Composite Interface
// =====================================

// ProspectsRepository defines the complete interface for prospect data
// operations. Composed of smaller, focused interfaces for better testability.
type ProspectsRepository interface {
	ProspectReader
	ProspectWriter
	AssignmentStore
	StatsReader
	AttachmentStore
}

// Ensure Repository implements ProspectsRepository
var _ ProspectsRepository = (*Repository)(nil)
