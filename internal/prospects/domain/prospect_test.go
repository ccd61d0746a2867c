package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestProspect(now time.Time) *Prospect {
	return &Prospect{
		ID:        uuid.New(),
		Name:      "Laura Mendoza",
		Phone:     "+525512345678",
		Source:    SourceWebsite,
		Status:    StatusNew,
		CreatedBy: uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestScheduleAppointmentForcesStatus(t *testing.T) {
	now := baseTime
	p := newTestProspect(now)
	p.Status = StatusQualified

	visit := now.Add(48 * time.Hour)
	notes := "bring trade-in paperwork"
	p.ScheduleAppointment(visit, &notes, now.Add(time.Hour))

	if p.Status != StatusAppointmentScheduled {
		t.Errorf("status = %s, want %s", p.Status, StatusAppointmentScheduled)
	}
	if p.AppointmentDate == nil || !p.AppointmentDate.Equal(visit) {
		t.Errorf("appointment date = %v, want %v", p.AppointmentDate, visit)
	}
	if !p.UpdatedAt.Equal(now.Add(time.Hour)) {
		t.Errorf("updatedAt = %v, want %v", p.UpdatedAt, now.Add(time.Hour))
	}
}

func TestReassign(t *testing.T) {
	now := baseTime
	p := newTestProspect(now)
	creator := p.CreatedBy
	newOwner := uuid.New()
	manager := uuid.New()

	t.Run("empty reason is rejected", func(t *testing.T) {
		err := p.Reassign(newOwner, manager, "", now)
		if !errors.Is(err, ErrEmptyReassignReason) {
			t.Fatalf("err = %v, want ErrEmptyReassignReason", err)
		}
		if len(p.ReassignmentHistory) != 0 {
			t.Fatal("history must stay empty after a rejected reassignment")
		}
	})

	t.Run("first reassignment records creator as from side", func(t *testing.T) {
		if err := p.Reassign(newOwner, manager, "vacation coverage", now); err != nil {
			t.Fatalf("Reassign() error = %v", err)
		}

		if len(p.ReassignmentHistory) != 1 {
			t.Fatalf("history length = %d, want 1", len(p.ReassignmentHistory))
		}
		entry := p.ReassignmentHistory[0]
		if entry.FromUserID != creator {
			t.Errorf("fromUserID = %s, want creator %s", entry.FromUserID, creator)
		}
		if entry.ToUserID != newOwner {
			t.Errorf("toUserID = %s, want %s", entry.ToUserID, newOwner)
		}
		if entry.ReassignedBy != manager {
			t.Errorf("reassignedBy = %s, want %s", entry.ReassignedBy, manager)
		}
		if p.AssignedTo == nil || *p.AssignedTo != newOwner {
			t.Errorf("assignedTo = %v, want %s", p.AssignedTo, newOwner)
		}
	})

	t.Run("second reassignment records previous assignee as from side", func(t *testing.T) {
		thirdOwner := uuid.New()
		if err := p.Reassign(thirdOwner, manager, "territory change", now.Add(time.Hour)); err != nil {
			t.Fatalf("Reassign() error = %v", err)
		}

		if len(p.ReassignmentHistory) != 2 {
			t.Fatalf("history length = %d, want 2", len(p.ReassignmentHistory))
		}
		if p.ReassignmentHistory[1].FromUserID != newOwner {
			t.Errorf("fromUserID = %s, want %s", p.ReassignmentHistory[1].FromUserID, newOwner)
		}
		// First entry is untouched.
		if p.ReassignmentHistory[0].ToUserID != newOwner {
			t.Error("earlier history entry was mutated")
		}
	})
}

func TestIsAssignedTo(t *testing.T) {
	now := baseTime
	p := newTestProspect(now)
	other := uuid.New()

	if !p.IsAssignedTo(p.CreatedBy) {
		t.Error("unassigned prospect must belong to its creator")
	}
	if p.IsAssignedTo(other) {
		t.Error("unassigned prospect must not belong to a stranger")
	}

	if err := p.Reassign(other, uuid.New(), "handover", now); err != nil {
		t.Fatalf("Reassign() error = %v", err)
	}
	if !p.IsAssignedTo(other) {
		t.Error("reassigned prospect must belong to the new assignee")
	}
	if p.IsAssignedTo(p.CreatedBy) {
		t.Error("after reassignment the creator no longer owns the prospect")
	}
}

func TestCanBeReassignedForEveryStatus(t *testing.T) {
	p := newTestProspect(baseTime)
	for _, s := range AllStatuses {
		p.Status = s
		if !p.CanBeReassigned() {
			t.Errorf("status %s must be reassignable", s)
		}
	}
}

func TestTagsSetSemantics(t *testing.T) {
	now := baseTime
	p := newTestProspect(now)

	p.AddTag("urgente", now)
	p.AddTag("credito", now)
	p.AddTag("urgente", now)

	if len(p.Tags) != 2 {
		t.Fatalf("tags = %v, want 2 unique entries", p.Tags)
	}

	p.RemoveTag("urgente", now)
	if len(p.Tags) != 1 || p.Tags[0] != "credito" {
		t.Errorf("tags after removal = %v, want [credito]", p.Tags)
	}

	// Removing an absent tag is a no-op.
	p.RemoveTag("missing", now)
	if len(p.Tags) != 1 {
		t.Errorf("tags = %v, want unchanged", p.Tags)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Prospect)
		wantLen int
		wantSub string
	}{
		{
			name:    "valid prospect has no violations",
			mutate:  func(p *Prospect) {},
			wantLen: 0,
		},
		{
			name:    "missing name",
			mutate:  func(p *Prospect) { p.Name = "" },
			wantLen: 1,
			wantSub: "name",
		},
		{
			name: "missing name and phone accumulate",
			mutate: func(p *Prospect) {
				p.Name = ""
				p.Phone = ""
			},
			wantLen: 2,
		},
		{
			name:    "unknown status",
			mutate:  func(p *Prospect) { p.Status = Status("archived") },
			wantLen: 1,
			wantSub: "status",
		},
		{
			name:    "unknown source",
			mutate:  func(p *Prospect) { p.Source = Source("carrier_pigeon") },
			wantLen: 1,
			wantSub: "source",
		},
		{
			name:    "inverted budget",
			mutate:  func(p *Prospect) { p.Budget = &Budget{Min: 500000, Max: 200000} },
			wantLen: 1,
			wantSub: "budget",
		},
		{
			name:    "negative budget",
			mutate:  func(p *Prospect) { p.Budget = &Budget{Min: -1, Max: 200000} },
			wantLen: 1,
			wantSub: "non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProspect(baseTime)
			tt.mutate(p)

			violations := p.Validate()
			if len(violations) != tt.wantLen {
				t.Fatalf("violations = %v, want %d entries", violations, tt.wantLen)
			}
			if tt.wantSub != "" {
				found := false
				for _, v := range violations {
					if strings.Contains(v, tt.wantSub) {
						found = true
					}
				}
				if !found {
					t.Errorf("violations %v do not mention %q", violations, tt.wantSub)
				}
			}
		})
	}
}

func TestDaysOld(t *testing.T) {
	p := newTestProspect(baseTime)
	p.CreatedAt = baseTime.Add(-10*24*time.Hour - 6*time.Hour)

	if got := p.DaysOld(baseTime); got != 10 {
		t.Errorf("DaysOld() = %d, want 10", got)
	}
	if got := p.DaysOld(p.CreatedAt); got != 0 {
		t.Errorf("DaysOld() at creation = %d, want 0", got)
	}
}

// End-to-end lifecycle walkthrough: a prospect is created, contacted, cools
// off, books an appointment, and converts. Classification tracks each step.
func TestLifecycleScenario(t *testing.T) {
	created := baseTime
	p := newTestProspect(created)

	// Day 0: new, neither hot nor stale.
	if p.IsHot(created) || p.IsStale(created) {
		t.Fatal("fresh prospect must be neither hot nor stale")
	}

	// Day 1: contacted. Hot because inside the contact window.
	day1 := created.Add(24 * time.Hour)
	p.UpdateStatus(StatusContacted, day1)
	if !p.IsHot(day1) {
		t.Fatal("contacted on day 1 must be hot")
	}

	// Day 5: still contacted, but the window has passed.
	day5 := created.Add(5 * 24 * time.Hour)
	if p.IsHot(day5) {
		t.Fatal("contacted past the window must not be hot")
	}
	if p.IsStale(day5) {
		t.Fatal("contacted prospect can never be stale")
	}

	// Day 6: appointment booked. Hot regardless of age.
	day6 := created.Add(6 * 24 * time.Hour)
	visit := created.Add(8 * 24 * time.Hour)
	p.ScheduleAppointment(visit, nil, day6)
	if !p.IsHot(day6) {
		t.Fatal("appointment scheduled must be hot")
	}
	if !p.IsHot(created.Add(60 * 24 * time.Hour)) {
		t.Fatal("appointment scheduled must stay hot indefinitely")
	}

	// Day 9: converted. No longer hot.
	day9 := created.Add(9 * 24 * time.Hour)
	p.UpdateStatus(StatusConverted, day9)
	if p.IsHot(day9) {
		t.Fatal("converted prospect must not be hot")
	}
	if len(p.Validate()) != 0 {
		t.Fatalf("lifecycle left the prospect invalid: %v", p.Validate())
	}
}
