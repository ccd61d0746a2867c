// Package notification bridges domain events to outbound email. Identity is
// external to this system, so notifications go to the configured sales inbox
// rather than to per-user addresses.
package notification

import (
	"context"
	"time"

	"autoplaza_backend/internal/email"
	"autoplaza_backend/internal/events"
	"autoplaza_backend/platform/logger"
)

const dateLayout = "02/01/2006 15:04"

// Notifier subscribes to prospect lifecycle events and emails the sales
// inbox. Delivery failures are logged, never propagated: a lost email must
// not fail the operation that triggered it.
type Notifier struct {
	sender email.Sender
	inbox  string
	log    *logger.Logger
}

func NewNotifier(sender email.Sender, inbox string, log *logger.Logger) *Notifier {
	return &Notifier{sender: sender, inbox: inbox, log: log}
}

// Enabled reports whether the notifier has both a sender and a destination.
func (n *Notifier) Enabled() bool {
	return n != nil && n.sender != nil && n.inbox != ""
}

// Subscribe registers the notifier on the event bus. A disabled notifier
// registers nothing.
func (n *Notifier) Subscribe(bus events.Bus) {
	if !n.Enabled() {
		return
	}

	bus.Subscribe(events.ProspectCreated{}.EventName(), events.HandlerFunc(n.onProspectCreated))
	bus.Subscribe(events.ProspectReassigned{}.EventName(), events.HandlerFunc(n.onProspectReassigned))
	bus.Subscribe(events.AppointmentScheduled{}.EventName(), events.HandlerFunc(n.onAppointmentScheduled))
	bus.Subscribe(events.AppointmentReminderDue{}.EventName(), events.HandlerFunc(n.onAppointmentReminderDue))
}

func (n *Notifier) onProspectCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(events.ProspectCreated)
	if !ok {
		return nil
	}
	if err := n.sender.SendProspectCreatedEmail(ctx, n.inbox, e.Name, e.Source); err != nil {
		n.log.Error("prospect created email failed", "prospect_id", e.ProspectID, "error", err)
	}
	return nil
}

func (n *Notifier) onProspectReassigned(ctx context.Context, event events.Event) error {
	e, ok := event.(events.ProspectReassigned)
	if !ok {
		return nil
	}
	if err := n.sender.SendProspectReassignedEmail(ctx, n.inbox, e.ProspectName, e.Reason); err != nil {
		n.log.Error("prospect reassigned email failed", "prospect_id", e.ProspectID, "error", err)
	}
	return nil
}

func (n *Notifier) onAppointmentScheduled(ctx context.Context, event events.Event) error {
	e, ok := event.(events.AppointmentScheduled)
	if !ok {
		return nil
	}
	if err := n.sender.SendAppointmentScheduledEmail(ctx, n.inbox, e.ProspectName, formatDate(e.AppointmentDate)); err != nil {
		n.log.Error("appointment scheduled email failed", "prospect_id", e.ProspectID, "error", err)
	}
	return nil
}

func (n *Notifier) onAppointmentReminderDue(ctx context.Context, event events.Event) error {
	e, ok := event.(events.AppointmentReminderDue)
	if !ok {
		return nil
	}
	if err := n.sender.SendAppointmentReminderEmail(ctx, n.inbox, e.ProspectName, e.ProspectPhone, formatDate(e.AppointmentDate)); err != nil {
		n.log.Error("appointment reminder email failed", "prospect_id", e.ProspectID, "error", err)
	}
	return nil
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}
