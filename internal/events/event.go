// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"autoplaza_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Prospect Domain Events
// =============================================================================

// ProspectCreated is published when a new prospect enters the funnel.
type ProspectCreated struct {
	BaseEvent
	ProspectID uuid.UUID `json:"prospectId"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Source     string    `json:"source"`
	CreatedBy  uuid.UUID `json:"createdBy"`
}

func (e ProspectCreated) EventName() string { return "prospects.prospect.created" }

// ProspectReassigned is published when ownership of a prospect moves.
type ProspectReassigned struct {
	BaseEvent
	ProspectID   uuid.UUID `json:"prospectId"`
	ProspectName string    `json:"prospectName"`
	FromUserID   uuid.UUID `json:"fromUserId"`
	ToUserID     uuid.UUID `json:"toUserId"`
	ReassignedBy uuid.UUID `json:"reassignedBy"`
	Reason       string    `json:"reason"`
}

func (e ProspectReassigned) EventName() string { return "prospects.prospect.reassigned" }

// AppointmentScheduled is published when a showroom visit is booked.
type AppointmentScheduled struct {
	BaseEvent
	ProspectID      uuid.UUID `json:"prospectId"`
	ProspectName    string    `json:"prospectName"`
	ProspectPhone   string    `json:"prospectPhone"`
	AppointmentDate time.Time `json:"appointmentDate"`
	ScheduledBy     uuid.UUID `json:"scheduledBy"`
}

func (e AppointmentScheduled) EventName() string { return "prospects.appointment.scheduled" }

// AppointmentReminderDue is published by the scheduler worker when a booked
// visit is imminent.
type AppointmentReminderDue struct {
	BaseEvent
	ProspectID      uuid.UUID `json:"prospectId"`
	ProspectName    string    `json:"prospectName"`
	ProspectPhone   string    `json:"prospectPhone"`
	AppointmentDate time.Time `json:"appointmentDate"`
}

func (e AppointmentReminderDue) EventName() string { return "prospects.appointment.reminder_due" }

// ProspectConverted is published when a prospect reaches the converted status.
type ProspectConverted struct {
	BaseEvent
	ProspectID   uuid.UUID `json:"prospectId"`
	ProspectName string    `json:"prospectName"`
	ConvertedBy  uuid.UUID `json:"convertedBy"`
	DaysOld      int       `json:"daysOld"`
}

func (e ProspectConverted) EventName() string { return "prospects.prospect.converted" }
