package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyReassignReason is returned when a reassignment carries no reason.
var ErrEmptyReassignReason = errors.New("reassignment reason is required")

// Budget is the price range a prospect is willing to spend, in whole currency
// units. Immutable once attached; updates replace the whole value.
type Budget struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// ReassignmentEntry is one row of the tamper-evident ownership audit trail.
// Entries are append-only: once written they are never edited or removed.
type ReassignmentEntry struct {
	FromUserID   uuid.UUID `json:"fromUserId"`
	ToUserID     uuid.UUID `json:"toUserId"`
	ReassignedBy uuid.UUID `json:"reassignedBy"`
	Reason       string    `json:"reason"`
	Timestamp    time.Time `json:"timestamp"`
}

// Prospect is the lead aggregate root. All mutations go through methods;
// callers never assign fields directly. Ownership checks live in the service
// layer; the entity only enforces structural rules.
type Prospect struct {
	ID uuid.UUID

	Name  string
	Phone string
	Email *string

	Source        Source
	SourceDetails *string

	Status Status

	InterestedListingID      *uuid.UUID
	InterestedListingTitle   *string
	ManualListingDescription *string
	Budget                   *Budget

	Message *string
	Notes   *string

	AppointmentDate  *time.Time
	AppointmentNotes *string

	Tags []string

	CreatedBy  uuid.UUID
	AssignedTo *uuid.UUID // nil until the first explicit reassignment

	ReassignmentHistory []ReassignmentEntry

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContactUpdate carries a partial contact-info change; nil fields are untouched.
type ContactUpdate struct {
	Name  *string
	Phone *string
	Email *string
}

// InterestUpdate carries a partial interest change; nil fields are untouched.
type InterestUpdate struct {
	InterestedListingID      *uuid.UUID
	InterestedListingTitle   *string
	ManualListingDescription *string
	Budget                   *Budget
}

// UpdateStatus moves the prospect to a new funnel position and bumps UpdatedAt.
// Any status may move to any other.
func (p *Prospect) UpdateStatus(newStatus Status, now time.Time) {
	p.Status = newStatus
	p.UpdatedAt = now
}

// ScheduleAppointment records a visit and forces the status to
// appointment_scheduled as one atomic transition. The date is deliberately
// not required to be in the future: this records an appointment, it does not
// arbitrate calendars.
func (p *Prospect) ScheduleAppointment(date time.Time, notes *string, now time.Time) {
	p.AppointmentDate = &date
	p.AppointmentNotes = notes
	p.Status = StatusAppointmentScheduled
	p.UpdatedAt = now
}

// UpdateContactInfo applies a partial contact update.
func (p *Prospect) UpdateContactInfo(update ContactUpdate, now time.Time) {
	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Phone != nil {
		p.Phone = *update.Phone
	}
	if update.Email != nil {
		p.Email = update.Email
	}
	p.UpdatedAt = now
}

// UpdateInterest applies a partial interest update.
func (p *Prospect) UpdateInterest(update InterestUpdate, now time.Time) {
	if update.InterestedListingID != nil {
		p.InterestedListingID = update.InterestedListingID
	}
	if update.InterestedListingTitle != nil {
		p.InterestedListingTitle = update.InterestedListingTitle
	}
	if update.ManualListingDescription != nil {
		p.ManualListingDescription = update.ManualListingDescription
	}
	if update.Budget != nil {
		p.Budget = update.Budget
	}
	p.UpdatedAt = now
}

// UpdateNotes replaces the free-text notes.
func (p *Prospect) UpdateNotes(text string, now time.Time) {
	p.Notes = &text
	p.UpdatedAt = now
}

// AddTag adds a tag with set semantics: duplicates are suppressed.
func (p *Prospect) AddTag(tag string, now time.Time) {
	for _, existing := range p.Tags {
		if existing == tag {
			return
		}
	}
	p.Tags = append(p.Tags, tag)
	p.UpdatedAt = now
}

// RemoveTag removes a tag if present.
func (p *Prospect) RemoveTag(tag string, now time.Time) {
	for i, existing := range p.Tags {
		if existing == tag {
			p.Tags = append(p.Tags[:i], p.Tags[i+1:]...)
			p.UpdatedAt = now
			return
		}
	}
}

// Reassign transfers ownership to newAssignee and appends an audit entry.
// The from side is the current assignee, falling back to the creator when the
// prospect was never explicitly assigned. Fails only on an empty reason.
func (p *Prospect) Reassign(newAssignee, reassignedBy uuid.UUID, reason string, now time.Time) error {
	if reason == "" {
		return ErrEmptyReassignReason
	}

	fromUserID := p.CreatedBy
	if p.AssignedTo != nil {
		fromUserID = *p.AssignedTo
	}

	p.ReassignmentHistory = append(p.ReassignmentHistory, ReassignmentEntry{
		FromUserID:   fromUserID,
		ToUserID:     newAssignee,
		ReassignedBy: reassignedBy,
		Reason:       reason,
		Timestamp:    now,
	})
	assignee := newAssignee
	p.AssignedTo = &assignee
	p.UpdatedAt = now
	return nil
}

// IsAssignedTo reports whether actorID currently owns this prospect. A
// prospect with no explicit assignee belongs to its creator.
func (p *Prospect) IsAssignedTo(actorID uuid.UUID) bool {
	if p.AssignedTo != nil {
		return *p.AssignedTo == actorID
	}
	return p.CreatedBy == actorID
}

// CurrentAssignee resolves the acting owner (explicit assignee or creator).
func (p *Prospect) CurrentAssignee() uuid.UUID {
	if p.AssignedTo != nil {
		return *p.AssignedTo
	}
	return p.CreatedBy
}

// CanBeReassigned is always true in the base model: converted and
// not_interested prospects stay reassignable. Stricter policies are layered
// by callers, never here.
func (p *Prospect) CanBeReassigned() bool {
	return true
}

// Validate returns every structural violation as a human-readable message so
// callers can surface all problems at once. It never panics and business
// state (status, assignment) is never a violation.
func (p *Prospect) Validate() []string {
	var violations []string

	if p.Name == "" {
		violations = append(violations, "name is required")
	}
	if p.Phone == "" {
		violations = append(violations, "phone is required")
	}
	if !IsValidStatus(p.Status) {
		violations = append(violations, fmt.Sprintf("unknown status %q", p.Status))
	}
	if !IsValidSource(p.Source) {
		violations = append(violations, fmt.Sprintf("unknown source %q", p.Source))
	}
	if p.Budget != nil {
		if p.Budget.Min < 0 || p.Budget.Max < 0 {
			violations = append(violations, "budget amounts must be non-negative")
		}
		if p.Budget.Min > p.Budget.Max {
			violations = append(violations, fmt.Sprintf("budget minimum %d exceeds maximum %d", p.Budget.Min, p.Budget.Max))
		}
	}

	return violations
}

// DaysOld returns the whole days elapsed since creation. Monotonically
// non-decreasing as now advances.
func (p *Prospect) DaysOld(now time.Time) int {
	age := now.Sub(p.CreatedAt)
	if age < 0 {
		return 0
	}
	return int(age.Hours() / 24)
}

// IsHot applies the shared classification policy to this prospect.
func (p *Prospect) IsHot(now time.Time) bool {
	return IsHot(p.Status, p.CreatedAt, now)
}

// IsStale applies the shared classification policy to this prospect.
func (p *Prospect) IsStale(now time.Time) bool {
	return IsStale(p.Status, p.UpdatedAt, now)
}

// Summary is a read-optimized projection for list views. It never includes
// the reassignment history.
type Summary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Status     Status    `json:"status"`
	Source     Source    `json:"source"`
	DaysOld    int       `json:"daysOld"`
	AssignedTo uuid.UUID `json:"assignedTo"`
	TagCount   int       `json:"tagCount"`
}

// ToSummary builds the list-view projection at the given instant.
func (p *Prospect) ToSummary(now time.Time) Summary {
	return Summary{
		ID:         p.ID,
		Name:       p.Name,
		Phone:      p.Phone,
		Status:     p.Status,
		Source:     p.Source,
		DaysOld:    p.DaysOld(now),
		AssignedTo: p.CurrentAssignee(),
		TagCount:   len(p.Tags),
	}
}
