package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"autoplaza_backend/internal/prospects/domain"
	"autoplaza_backend/internal/prospects/repository"
	platformevents "autoplaza_backend/platform/events"
	"autoplaza_backend/platform/logger"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

// fakeRepo is an in-memory ProspectsRepository for service tests.
type fakeRepo struct {
	mu          sync.Mutex
	prospects   map[uuid.UUID]domain.Prospect
	attachments map[uuid.UUID]repository.Attachment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		prospects:   make(map[uuid.UUID]domain.Prospect),
		attachments: make(map[uuid.UUID]repository.Attachment),
	}
}

func (f *fakeRepo) Create(_ context.Context, p *domain.Prospect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.prospects {
		if existing.Phone == p.Phone {
			return repository.ErrDuplicatePhone
		}
	}
	f.prospects[p.ID] = *p
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Prospect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prospects[id]
	if !ok {
		return domain.Prospect{}, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) List(_ context.Context, filter repository.ListFilter, now time.Time) ([]domain.Prospect, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]domain.Prospect, 0, len(f.prospects))
	for _, p := range f.prospects {
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if !ownedBy(p, filter.AssignedTo) {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if filter.Limit > 0 && len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, total, nil
}

func (f *fakeRepo) ListByAssignee(_ context.Context, userID uuid.UUID) ([]domain.Prospect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Prospect, 0)
	for _, p := range f.prospects {
		if p.IsAssignedTo(userID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByCreator(_ context.Context, userID uuid.UUID) ([]domain.Prospect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Prospect, 0)
	for _, p := range f.prospects {
		if p.CreatedBy == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func ownedBy(p domain.Prospect, assignedTo *uuid.UUID) bool {
	return assignedTo == nil || p.IsAssignedTo(*assignedTo)
}

func (f *fakeRepo) ListHot(_ context.Context, now time.Time, assignedTo *uuid.UUID, limit int) ([]domain.Prospect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Prospect, 0)
	for _, p := range f.prospects {
		if p.IsHot(now) && ownedBy(p, assignedTo) {
			out = append(out, p)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) ListStale(_ context.Context, now time.Time, assignedTo *uuid.UUID, limit int) ([]domain.Prospect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Prospect, 0)
	for _, p := range f.prospects {
		if p.IsStale(now) && ownedBy(p, assignedTo) {
			out = append(out, p)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) ListUpcomingAppointments(_ context.Context, now time.Time, assignedTo *uuid.UUID, limit int) ([]domain.Prospect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Prospect, 0)
	for _, p := range f.prospects {
		if p.AppointmentDate != nil && !p.AppointmentDate.Before(now) && ownedBy(p, assignedTo) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentDate.Before(*out[j].AppointmentDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.prospects {
		if p.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) Update(_ context.Context, p *domain.Prospect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.prospects[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	// The audit trail is only touched through AppendReassignment.
	updated := *p
	updated.ReassignmentHistory = stored.ReassignmentHistory
	updated.AssignedTo = stored.AssignedTo
	f.prospects[p.ID] = updated
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.prospects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.prospects, id)
	return nil
}

func (f *fakeRepo) BulkDelete(_ context.Context, ids []uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	deleted := 0
	for _, id := range ids {
		if _, ok := f.prospects[id]; ok {
			delete(f.prospects, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeRepo) IsAssignedTo(_ context.Context, id uuid.UUID, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prospects[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	return p.IsAssignedTo(userID), nil
}

func (f *fakeRepo) AppendReassignment(_ context.Context, prospectID uuid.UUID, entry domain.ReassignmentEntry, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prospects[prospectID]
	if !ok {
		return repository.ErrNotFound
	}
	p.ReassignmentHistory = append(p.ReassignmentHistory, entry)
	assignee := entry.ToUserID
	p.AssignedTo = &assignee
	p.UpdatedAt = updatedAt
	f.prospects[prospectID] = p
	return nil
}

func (f *fakeRepo) GetStats(_ context.Context, now time.Time) (repository.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := repository.Stats{
		ByStatus: make(map[domain.Status]int),
		BySource: make(map[domain.Source]int),
	}
	for _, p := range f.prospects {
		stats.Total++
		stats.ByStatus[p.Status]++
		stats.BySource[p.Source]++
		if p.IsHot(now) {
			stats.Hot++
		}
		if p.IsStale(now) {
			stats.Stale++
		}
		if p.Status == domain.StatusConverted {
			stats.Converted++
		}
		if p.AppointmentDate != nil {
			stats.WithAppointments++
		}
		if now.Sub(p.CreatedAt) <= domain.RecentWindow {
			stats.Recent++
		}
	}
	return stats, nil
}

func (f *fakeRepo) CreateAttachment(_ context.Context, params repository.CreateAttachmentParams) (repository.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := repository.Attachment{
		ID:          uuid.New(),
		ProspectID:  params.ProspectID,
		FileKey:     params.FileKey,
		FileName:    params.FileName,
		ContentType: params.ContentType,
		SizeBytes:   params.SizeBytes,
		UploadedBy:  params.UploadedBy,
		CreatedAt:   testNow,
	}
	f.attachments[a.ID] = a
	return a, nil
}

func (f *fakeRepo) GetAttachmentByID(_ context.Context, id uuid.UUID) (repository.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attachments[id]
	if !ok {
		return repository.Attachment{}, repository.ErrAttachmentNotFound
	}
	return a, nil
}

func (f *fakeRepo) ListAttachments(_ context.Context, prospectID uuid.UUID) ([]repository.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Attachment, 0)
	for _, a := range f.attachments {
		if a.ProspectID == prospectID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) DeleteAttachment(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.attachments[id]; !ok {
		return repository.ErrAttachmentNotFound
	}
	delete(f.attachments, id)
	return nil
}

var _ repository.ProspectsRepository = (*fakeRepo)(nil)

// fakeBus records published events synchronously.
type fakeBus struct {
	mu     sync.Mutex
	events []platformevents.Event
}

func (b *fakeBus) Publish(_ context.Context, event platformevents.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *fakeBus) PublishSync(ctx context.Context, event platformevents.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *fakeBus) Subscribe(string, platformevents.Handler) {}

func (b *fakeBus) published(name string) []platformevents.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]platformevents.Event, 0)
	for _, e := range b.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

// fakeReminders records reminder scheduling calls.
type fakeReminders struct {
	mu    sync.Mutex
	calls []uuid.UUID
}

func (r *fakeReminders) ScheduleAppointmentReminder(_ context.Context, prospectID uuid.UUID, _ string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, prospectID)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New("development")
}
