package transport

import (
	"time"

	"github.com/google/uuid"

	"autoplaza_backend/internal/prospects/domain"
	"autoplaza_backend/internal/prospects/repository"
)

// Request DTOs

type BudgetDTO struct {
	Min int64 `json:"min" validate:"min=0"`
	Max int64 `json:"max" validate:"min=0"`
}

type CreateProspectRequest struct {
	Name                     string        `json:"name" validate:"required,min=1,max=200"`
	Phone                    string        `json:"phone" validate:"required,min=5,max=20"`
	Email                    *string       `json:"email,omitempty" validate:"omitempty,email"`
	Source                   domain.Source `json:"source" validate:"required,oneof=mercadolibre facebook instagram whatsapp website referral other"`
	SourceDetails            *string       `json:"sourceDetails,omitempty" validate:"omitempty,max=500"`
	InterestedListingID      OptionalUUID  `json:"interestedListingId,omitempty" validate:"-"`
	InterestedListingTitle   *string       `json:"interestedListingTitle,omitempty" validate:"omitempty,max=300"`
	ManualListingDescription *string       `json:"manualListingDescription,omitempty" validate:"omitempty,max=1000"`
	Budget                   *BudgetDTO    `json:"budget,omitempty"`
	Message                  *string       `json:"message,omitempty" validate:"omitempty,max=2000"`
	Tags                     []string      `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50"`
}

type UpdateStatusRequest struct {
	Status domain.Status `json:"status" validate:"required,oneof=new contacted appointment_scheduled qualified converted not_interested"`
}

type ScheduleAppointmentRequest struct {
	Date  time.Time `json:"date" validate:"required"`
	Notes *string   `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type UpdateContactRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

type UpdateInterestRequest struct {
	InterestedListingID      OptionalUUID `json:"interestedListingId,omitempty" validate:"-"`
	InterestedListingTitle   *string      `json:"interestedListingTitle,omitempty" validate:"omitempty,max=300"`
	ManualListingDescription *string      `json:"manualListingDescription,omitempty" validate:"omitempty,max=1000"`
	Budget                   *BudgetDTO   `json:"budget,omitempty"`
}

type UpdateNotesRequest struct {
	Notes string `json:"notes" validate:"max=5000"`
}

type TagRequest struct {
	Tag string `json:"tag" validate:"required,min=1,max=50"`
}

type ReassignRequest struct {
	NewAssigneeID uuid.UUID `json:"newAssigneeId" validate:"required"`
	Reason        string    `json:"reason" validate:"required,min=1,max=500"`
}

// BulkUpdateRequest applies the same partial update to many prospects.
// Tags, when present, replace the whole tag set.
type BulkUpdateRequest struct {
	IDs    []uuid.UUID    `json:"ids" validate:"required,min=1,max=500"`
	Status *domain.Status `json:"status,omitempty" validate:"omitempty,oneof=new contacted appointment_scheduled qualified converted not_interested"`
	Tags   *[]string      `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50"`
	Notes  *string        `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

type BulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,max=500"`
}

type ListProspectsRequest struct {
	Status         *domain.Status `form:"status" validate:"omitempty,oneof=new contacted appointment_scheduled qualified converted not_interested"`
	Source         *domain.Source `form:"source" validate:"omitempty,oneof=mercadolibre facebook instagram whatsapp website referral other"`
	AssignedTo     *uuid.UUID     `form:"assignedTo"`
	CreatedBy      *uuid.UUID     `form:"createdBy"`
	IsHot          *bool          `form:"isHot"`
	IsStale        *bool          `form:"isStale"`
	HasAppointment *bool          `form:"hasAppointment"`
	Tags           []string       `form:"tags" validate:"omitempty,dive,min=1,max=50"`
	Search         string         `form:"search" validate:"max=100"`
	CreatedAfter   *time.Time     `form:"createdAfter" time_format:"2006-01-02T15:04:05Z07:00"`
	CreatedBefore  *time.Time     `form:"createdBefore" time_format:"2006-01-02T15:04:05Z07:00"`
	SortBy         string         `form:"sortBy" validate:"omitempty,oneof=recent oldest priority name"`
	Page           int            `form:"page" validate:"omitempty,min=1"`
	PageSize       int            `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type RequestUploadURLRequest struct {
	FileName    string `json:"fileName" validate:"required,min=1,max=255"`
	ContentType string `json:"contentType" validate:"required"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,min=1"`
}

type ConfirmUploadRequest struct {
	FileKey     string `json:"fileKey" validate:"required,max=512"`
	FileName    string `json:"fileName" validate:"required,min=1,max=255"`
	ContentType string `json:"contentType" validate:"required"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,min=1"`
}

// Response DTOs

type ReassignmentResponse struct {
	FromUserID   uuid.UUID `json:"fromUserId"`
	ToUserID     uuid.UUID `json:"toUserId"`
	ReassignedBy uuid.UUID `json:"reassignedBy"`
	Reason       string    `json:"reason"`
	Timestamp    time.Time `json:"timestamp"`
}

type ProspectResponse struct {
	ID                       uuid.UUID              `json:"id"`
	Name                     string                 `json:"name"`
	Phone                    string                 `json:"phone"`
	Email                    *string                `json:"email,omitempty"`
	Source                   domain.Source          `json:"source"`
	SourceDetails            *string                `json:"sourceDetails,omitempty"`
	Status                   domain.Status          `json:"status"`
	InterestedListingID      *uuid.UUID             `json:"interestedListingId,omitempty"`
	InterestedListingTitle   *string                `json:"interestedListingTitle,omitempty"`
	ManualListingDescription *string                `json:"manualListingDescription,omitempty"`
	Budget                   *BudgetDTO             `json:"budget,omitempty"`
	Message                  *string                `json:"message,omitempty"`
	Notes                    *string                `json:"notes,omitempty"`
	AppointmentDate          *time.Time             `json:"appointmentDate,omitempty"`
	AppointmentNotes         *string                `json:"appointmentNotes,omitempty"`
	Tags                     []string               `json:"tags"`
	CreatedBy                uuid.UUID              `json:"createdBy"`
	AssignedTo               *uuid.UUID             `json:"assignedTo,omitempty"`
	ReassignmentHistory      []ReassignmentResponse `json:"reassignmentHistory,omitempty"`
	IsHot                    bool                   `json:"isHot"`
	IsStale                  bool                   `json:"isStale"`
	DaysOld                  int                    `json:"daysOld"`
	CreatedAt                time.Time              `json:"createdAt"`
	UpdatedAt                time.Time              `json:"updatedAt"`
}

type ProspectListResponse struct {
	Items    []ProspectResponse `json:"items"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
}

type StatsResponse struct {
	Total            int                   `json:"total"`
	ByStatus         map[domain.Status]int `json:"byStatus"`
	BySource         map[domain.Source]int `json:"bySource"`
	Recent           int                   `json:"recent"`
	Hot              int                   `json:"hot"`
	Stale            int                   `json:"stale"`
	Converted        int                   `json:"converted"`
	WithAppointments int                   `json:"withAppointments"`
}

// DuplicateCheckResponse echoes the normalized phone so the UI shows what
// was actually compared.
type DuplicateCheckResponse struct {
	Phone  string `json:"phone"`
	Exists bool   `json:"exists"`
}

type DashboardResponse struct {
	Stats                StatsResponse      `json:"stats"`
	Hot                  []ProspectResponse `json:"hot"`
	Stale                []ProspectResponse `json:"stale"`
	UpcomingAppointments []ProspectResponse `json:"upcomingAppointments"`
	Newest               []ProspectResponse `json:"newest"`
}

// BulkUpdateResponse reports the outcome of a bulk mutation. Errors are
// formatted as "<id>: <message>" so callers can match failures to inputs.
type BulkUpdateResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

type BulkDeleteResponse struct {
	Deleted int `json:"deleted"`
}

type ReportResponse struct {
	GeneratedAt          time.Time          `json:"generatedAt"`
	TotalMatching        int                `json:"totalMatching"`
	Truncated            bool               `json:"truncated"`
	Rows                 []ProspectResponse `json:"rows"`
	AverageDaysToConvert *float64           `json:"averageDaysToConvert,omitempty"`
	Stats                StatsResponse      `json:"stats"`
}

type AttachmentResponse struct {
	ID          uuid.UUID `json:"id"`
	ProspectID  uuid.UUID `json:"prospectId"`
	FileKey     string    `json:"fileKey"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	UploadedBy  uuid.UUID `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type PresignedURLResponse struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Mapping helpers

func ToBudgetDTO(b *domain.Budget) *BudgetDTO {
	if b == nil {
		return nil
	}
	return &BudgetDTO{Min: b.Min, Max: b.Max}
}

func ToProspectResponse(p domain.Prospect, now time.Time) ProspectResponse {
	history := make([]ReassignmentResponse, 0, len(p.ReassignmentHistory))
	for _, e := range p.ReassignmentHistory {
		history = append(history, ReassignmentResponse{
			FromUserID:   e.FromUserID,
			ToUserID:     e.ToUserID,
			ReassignedBy: e.ReassignedBy,
			Reason:       e.Reason,
			Timestamp:    e.Timestamp,
		})
	}

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	return ProspectResponse{
		ID:                       p.ID,
		Name:                     p.Name,
		Phone:                    p.Phone,
		Email:                    p.Email,
		Source:                   p.Source,
		SourceDetails:            p.SourceDetails,
		Status:                   p.Status,
		InterestedListingID:      p.InterestedListingID,
		InterestedListingTitle:   p.InterestedListingTitle,
		ManualListingDescription: p.ManualListingDescription,
		Budget:                   ToBudgetDTO(p.Budget),
		Message:                  p.Message,
		Notes:                    p.Notes,
		AppointmentDate:          p.AppointmentDate,
		AppointmentNotes:         p.AppointmentNotes,
		Tags:                     tags,
		CreatedBy:                p.CreatedBy,
		AssignedTo:               p.AssignedTo,
		ReassignmentHistory:      history,
		IsHot:                    p.IsHot(now),
		IsStale:                  p.IsStale(now),
		DaysOld:                  p.DaysOld(now),
		CreatedAt:                p.CreatedAt,
		UpdatedAt:                p.UpdatedAt,
	}
}

func ToProspectResponses(prospects []domain.Prospect, now time.Time) []ProspectResponse {
	out := make([]ProspectResponse, 0, len(prospects))
	for _, p := range prospects {
		out = append(out, ToProspectResponse(p, now))
	}
	return out
}

func ToStatsResponse(s repository.Stats) StatsResponse {
	return StatsResponse{
		Total:            s.Total,
		ByStatus:         s.ByStatus,
		BySource:         s.BySource,
		Recent:           s.Recent,
		Hot:              s.Hot,
		Stale:            s.Stale,
		Converted:        s.Converted,
		WithAppointments: s.WithAppointments,
	}
}

func ToAttachmentResponse(a repository.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:          a.ID,
		ProspectID:  a.ProspectID,
		FileKey:     a.FileKey,
		FileName:    a.FileName,
		ContentType: a.ContentType,
		SizeBytes:   a.SizeBytes,
		UploadedBy:  a.UploadedBy,
		CreatedAt:   a.CreatedAt,
	}
}
