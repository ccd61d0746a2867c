package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"autoplaza_backend/internal/events"
	"autoplaza_backend/internal/prospects/cache"
	"autoplaza_backend/internal/prospects/domain"
	"autoplaza_backend/internal/prospects/repository"
	"autoplaza_backend/internal/prospects/transport"
	"autoplaza_backend/platform/apperr"
	"autoplaza_backend/platform/clock"
	"autoplaza_backend/platform/logger"
	"autoplaza_backend/platform/phone"
)

// reportMaxRows caps the rows materialized in a report. The aggregates still
// cover the full matching set.
const reportMaxRows = 1000

// ReminderScheduler enqueues appointment reminders. A nil implementation
// disables reminders without the service having to care.
type ReminderScheduler interface {
	ScheduleAppointmentReminder(ctx context.Context, prospectID uuid.UUID, prospectName string, appointmentDate time.Time) error
}

// ManageService serves the write side: creation, guarded mutations,
// reassignment, bulk operations and reports.
type ManageService struct {
	repo      repository.ProspectsRepository
	stats     *cache.StatsCache
	bus       events.Bus
	clk       clock.Clock
	policy    ReassignPolicy
	reminders ReminderScheduler
	log       *logger.Logger
}

func NewManageService(
	repo repository.ProspectsRepository,
	stats *cache.StatsCache,
	bus events.Bus,
	clk clock.Clock,
	policy ReassignPolicy,
	reminders ReminderScheduler,
	log *logger.Logger,
) *ManageService {
	if policy == nil {
		policy = AllowAllPolicy{}
	}
	return &ManageService{
		repo:      repo,
		stats:     stats,
		bus:       bus,
		clk:       clk,
		policy:    policy,
		reminders: reminders,
		log:       log,
	}
}

func (s *ManageService) Create(ctx context.Context, actorID uuid.UUID, req transport.CreateProspectRequest) (transport.ProspectResponse, error) {
	now := s.clk.Now()
	normalizedPhone := phone.NormalizeE164(req.Phone)

	// Pre-check gives a friendly error; the unique index is the real guard.
	exists, err := s.repo.ExistsByPhone(ctx, normalizedPhone)
	if err != nil {
		return transport.ProspectResponse{}, err
	}
	if exists {
		return transport.ProspectResponse{}, apperr.Conflict("a prospect with this phone already exists")
	}

	prospect := domain.Prospect{
		ID:                       uuid.New(),
		Name:                     req.Name,
		Phone:                    normalizedPhone,
		Email:                    req.Email,
		Source:                   req.Source,
		SourceDetails:            req.SourceDetails,
		Status:                   domain.StatusNew,
		InterestedListingTitle:   req.InterestedListingTitle,
		ManualListingDescription: req.ManualListingDescription,
		Message:                  req.Message,
		Tags:                     dedupeTags(req.Tags),
		CreatedBy:                actorID,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	if req.InterestedListingID.Set {
		prospect.InterestedListingID = req.InterestedListingID.Value
	}
	if req.Budget != nil {
		prospect.Budget = &domain.Budget{Min: req.Budget.Min, Max: req.Budget.Max}
	}

	if violations := prospect.Validate(); len(violations) > 0 {
		return transport.ProspectResponse{}, apperr.ValidationList(violations)
	}

	if err := s.repo.Create(ctx, &prospect); err != nil {
		if errors.Is(err, repository.ErrDuplicatePhone) {
			return transport.ProspectResponse{}, apperr.Conflict("a prospect with this phone already exists")
		}
		return transport.ProspectResponse{}, err
	}

	s.stats.Invalidate(ctx)
	s.bus.Publish(ctx, events.ProspectCreated{
		BaseEvent:  events.NewBaseEvent(),
		ProspectID: prospect.ID,
		Name:       prospect.Name,
		Phone:      prospect.Phone,
		Source:     string(prospect.Source),
		CreatedBy:  actorID,
	})

	return transport.ToProspectResponse(prospect, now), nil
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// loadOwned fetches the prospect and enforces the ownership guard shared by
// every mutation: not found before forbidden, so an actor cannot probe for
// the existence of prospects they do not own.
func (s *ManageService) loadOwned(ctx context.Context, id, actorID uuid.UUID) (domain.Prospect, error) {
	prospect, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Prospect{}, apperr.NotFound("prospect not found")
		}
		return domain.Prospect{}, err
	}
	if !prospect.IsAssignedTo(actorID) {
		return domain.Prospect{}, apperr.Forbidden("prospect is assigned to another user")
	}
	return prospect, nil
}

func (s *ManageService) persist(ctx context.Context, prospect *domain.Prospect) (transport.ProspectResponse, error) {
	if violations := prospect.Validate(); len(violations) > 0 {
		return transport.ProspectResponse{}, apperr.ValidationList(violations)
	}
	if err := s.repo.Update(ctx, prospect); err != nil {
		if errors.Is(err, repository.ErrDuplicatePhone) {
			return transport.ProspectResponse{}, apperr.Conflict("a prospect with this phone already exists")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ProspectResponse{}, apperr.NotFound("prospect not found")
		}
		return transport.ProspectResponse{}, err
	}
	s.stats.Invalidate(ctx)
	return transport.ToProspectResponse(*prospect, prospect.UpdatedAt), nil
}

func (s *ManageService) UpdateStatus(ctx context.Context, id, actorID uuid.UUID, req transport.UpdateStatusRequest) (transport.ProspectResponse, error) {
	prospect, err := s.loadOwned(ctx, id, actorID)
	if err != nil {
		return transport.ProspectResponse{}, err
	}

	now := s.clk.Now()
	prospect.UpdateStatus(req.Status, now)

	resp, err := s.persist(ctx, &prospect)
	if err != nil {
		return transport.ProspectResponse{}, err
	}

	if req.Status == domain.StatusConverted {
		s.bus.Publish(ctx, events.ProspectConverted{
			BaseEvent:    events.NewBaseEvent(),
			ProspectID:   prospect.ID,
			ProspectName: prospect.Name,
			ConvertedBy:  actorID,
			DaysOld:      prospect.DaysOld(now),
		})
	}
	return resp, nil
}

func (s *ManageService) ScheduleAppointment(ctx context.Context, id, actorID uuid.UUID, req transport.ScheduleAppointmentRequest) (transport.ProspectResponse, error) {
	prospect, err := s.loadOwned(ctx, id, actorID)
	if err != nil {
		return transport.ProspectResponse{}, err
	}

	prospect.ScheduleAppointment(req.Date, req.Notes, s.clk.Now())

	resp, err := s.persist(ctx, &prospect)
	if err != nil {
		return transport.ProspectResponse{}, err
	}

	s.bus.Publish(ctx, events.AppointmentScheduled{
		BaseEvent:       events.NewBaseEvent(),
		ProspectID:      prospect.ID,
		ProspectName:    prospect.Name,
		ProspectPhone:   prospect.Phone,
		AppointmentDate: req.Date,
		ScheduledBy:     actorID,
	})

	if s.reminders != nil {
		if err := s.reminders.ScheduleAppointmentReminder(ctx, prospect.ID, prospect.Name, req.Date); err != nil {
			s.log.Warn("failed to schedule appointment reminder", "prospect_id", prospect.ID, "error", err)
		}
	}
	return resp, nil
}

func (s *ManageService) UpdateContact(ctx context.Context, id, actorID uuid.UUID, req transport.UpdateContactRequest) (transport.ProspectResponse, error) {
	prospect, err := s.loadOwned(ctx, id, actorID)
	if err != nil {
		return transport.ProspectResponse{}, err
	}

	update := domain.ContactUpdate{Name: req.Name, Email: req.Email}
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone)
		update.Phone = &normalized
	}
	prospect.UpdateContactInfo(update, s.clk.Now())

	return s.persist(ctx, &prospect)
}

func (s *ManageService) UpdateInterest(ctx context.Context, id, actorID uuid.UUID, req transport.UpdateInterestRequest) (transport.ProspectResponse, error) {
	prospect, err := s.loadOwned(ctx, id, actorID)
	if err != nil {
		return transport.ProspectResponse{}, err
	}

	update := domain.InterestUpdate{
		InterestedListingTitle:   req.InterestedListingTitle,
		ManualListingDescription: req.ManualListingDescription,
	}
	if req.InterestedListingID.Set {
		update.InterestedListingID = req.InterestedListingID.Value
	}
	if req.Budget != nil {
		update.Budget = &domain.Budget{Min: req.Budget.Min, Max: req.Budget.Max}
	}
	prospect.UpdateInterest(update, s.clk.Now())

	return s.persist(ctx, &prospect)
}

func (s *ManageService) UpdateNotes(ctx context.Context, id, actorID uuid.UUID, req transport.UpdateNotesRequest) (transport.ProspectResponse, error) {
	prospect, err := s.loadOwned(ctx, id, actorID)
	if err != nil {
		return transport.ProspectResponse{}, err
	}
	prospect.UpdateNotes(req.Notes, s.clk.Now())
	return s.persist(ctx, &prospect)
}

func (s *ManageService) AddTag(ctx context.Context, id, actorID uuid.UUID, req transport.TagRequest) (transport.ProspectResponse, error) {
	prospect, err := s.loadOwned(ctx, id, actorID)
	if err != nil {
		return transport.ProspectResponse{}, err
	}
	prospect.AddTag(req.Tag, s.clk.Now())
	return s.persist(ctx, &prospect)
}

func (s *ManageService) RemoveTag(ctx context.Context, id, actorID uuid.UUID, req transport.TagRequest) (transport.ProspectResponse, error) {
	prospect, err := s.loadOwned(ctx, id, actorID)
	if err != nil {
		return transport.ProspectResponse{}, err
	}
	prospect.RemoveTag(req.Tag, s.clk.Now())
	return s.persist(ctx, &prospect)
}

// Reassign transfers ownership. Unlike the other mutations it is not gated on
// current ownership; the injected policy decides who may move a lead.
func (s *ManageService) Reassign(ctx context.Context, id, actorID uuid.UUID, actorRoles []string, req transport.ReassignRequest) (transport.ProspectResponse, error) {
	prospect, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ProspectResponse{}, apperr.NotFound("prospect not found")
		}
		return transport.ProspectResponse{}, err
	}

	if err := s.policy.Authorize(actorID, actorRoles, &prospect); err != nil {
		return transport.ProspectResponse{}, err
	}
	if !prospect.CanBeReassigned() {
		return transport.ProspectResponse{}, apperr.Conflict("prospect cannot be reassigned")
	}

	now := s.clk.Now()
	if err := prospect.Reassign(req.NewAssigneeID, actorID, req.Reason, now); err != nil {
		if errors.Is(err, domain.ErrEmptyReassignReason) {
			return transport.ProspectResponse{}, apperr.Validation("reassignment reason is required")
		}
		return transport.ProspectResponse{}, err
	}

	entry := prospect.ReassignmentHistory[len(prospect.ReassignmentHistory)-1]
	if err := s.repo.AppendReassignment(ctx, prospect.ID, entry, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ProspectResponse{}, apperr.NotFound("prospect not found")
		}
		return transport.ProspectResponse{}, err
	}

	s.bus.Publish(ctx, events.ProspectReassigned{
		BaseEvent:    events.NewBaseEvent(),
		ProspectID:   prospect.ID,
		ProspectName: prospect.Name,
		FromUserID:   entry.FromUserID,
		ToUserID:     entry.ToUserID,
		ReassignedBy: actorID,
		Reason:       req.Reason,
	})

	return transport.ToProspectResponse(prospect, now), nil
}

// BulkUpdate applies the same partial update to many prospects with per-item
// isolation: one bad id never rolls back the rest. Every mutation still goes
// through the same guards as the single-item path.
func (s *ManageService) BulkUpdate(ctx context.Context, actorID uuid.UUID, req transport.BulkUpdateRequest) (transport.BulkUpdateResponse, error) {
	result := transport.BulkUpdateResponse{Errors: []string{}}

	for _, id := range req.IDs {
		if err := s.applyBulkItem(ctx, id, actorID, req); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", id, bulkErrorMessage(err)))
			continue
		}
		result.Success++
	}
	return result, nil
}

func (s *ManageService) applyBulkItem(ctx context.Context, id, actorID uuid.UUID, req transport.BulkUpdateRequest) error {
	prospect, err := s.loadOwned(ctx, id, actorID)
	if err != nil {
		return err
	}

	now := s.clk.Now()
	if req.Status != nil {
		prospect.UpdateStatus(*req.Status, now)
	}
	if req.Tags != nil {
		// Bulk tag writes replace the whole set.
		prospect.Tags = dedupeTags(*req.Tags)
		prospect.UpdatedAt = now
	}
	if req.Notes != nil {
		prospect.UpdateNotes(*req.Notes, now)
	}

	_, err = s.persist(ctx, &prospect)
	return err
}

func bulkErrorMessage(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func (s *ManageService) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, id, actorID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("prospect not found")
		}
		return err
	}
	s.stats.Invalidate(ctx)
	return nil
}

// BulkDelete removes many prospects at once. Reserved for managers at the
// routing layer; no per-item ownership check.
func (s *ManageService) BulkDelete(ctx context.Context, req transport.BulkDeleteRequest) (transport.BulkDeleteResponse, error) {
	deleted, err := s.repo.BulkDelete(ctx, req.IDs)
	if err != nil {
		return transport.BulkDeleteResponse{}, err
	}
	s.stats.Invalidate(ctx)
	return transport.BulkDeleteResponse{Deleted: deleted}, nil
}

// GenerateReport materializes a filtered snapshot of the funnel. Row output
// is capped; the aggregates and the total always reflect the full matching
// set. Average days to convert is computed over the converted rows in the
// snapshot, from creation to the converting update.
func (s *ManageService) GenerateReport(ctx context.Context, req transport.ListProspectsRequest) (transport.ReportResponse, error) {
	now := s.clk.Now()

	filter := toListFilter(req)
	filter.Limit = reportMaxRows
	filter.Offset = 0

	prospects, total, err := s.repo.List(ctx, filter, now)
	if err != nil {
		return transport.ReportResponse{}, err
	}

	stats, err := s.stats.GetStats(ctx, now)
	if err != nil {
		return transport.ReportResponse{}, err
	}

	var avgDays *float64
	var convertedDays float64
	var convertedCount int
	for _, p := range prospects {
		if p.Status != domain.StatusConverted {
			continue
		}
		convertedDays += p.UpdatedAt.Sub(p.CreatedAt).Hours() / 24
		convertedCount++
	}
	if convertedCount > 0 {
		avg := convertedDays / float64(convertedCount)
		avgDays = &avg
	}

	return transport.ReportResponse{
		GeneratedAt:          now,
		TotalMatching:        total,
		Truncated:            total > len(prospects),
		Rows:                 transport.ToProspectResponses(prospects, now),
		AverageDaysToConvert: avgDays,
		Stats:                transport.ToStatsResponse(stats),
	}, nil
}
