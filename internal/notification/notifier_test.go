package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"autoplaza_backend/internal/email"
	"autoplaza_backend/internal/events"
	"autoplaza_backend/platform/logger"
)

type sentMail struct {
	kind string
	to   string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeSender) record(kind, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{kind: kind, to: to})
	return f.err
}

func (f *fakeSender) SendProspectCreatedEmail(_ context.Context, to, _, _ string) error {
	return f.record("created", to)
}

func (f *fakeSender) SendProspectReassignedEmail(_ context.Context, to, _, _ string) error {
	return f.record("reassigned", to)
}

func (f *fakeSender) SendAppointmentScheduledEmail(_ context.Context, to, _, _ string) error {
	return f.record("scheduled", to)
}

func (f *fakeSender) SendAppointmentReminderEmail(_ context.Context, to, _, _, _ string) error {
	return f.record("reminder", to)
}

var _ email.Sender = (*fakeSender)(nil)

func (f *fakeSender) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	kinds := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		kinds = append(kinds, m.kind)
	}
	return kinds
}

func TestNotifierSendsToInbox(t *testing.T) {
	sender := &fakeSender{}
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	NewNotifier(sender, "ventas@example.com", log).Subscribe(bus)

	ctx := context.Background()
	prospectID := uuid.New()

	if err := bus.PublishSync(ctx, events.ProspectCreated{
		BaseEvent:  events.NewBaseEvent(),
		ProspectID: prospectID,
		Name:       "Laura Medina",
		Source:     "mercadolibre",
	}); err != nil {
		t.Fatalf("publish created: %v", err)
	}
	if err := bus.PublishSync(ctx, events.AppointmentReminderDue{
		BaseEvent:       events.NewBaseEvent(),
		ProspectID:      prospectID,
		ProspectName:    "Laura Medina",
		ProspectPhone:   "+5215512345678",
		AppointmentDate: time.Now().Add(24 * time.Hour),
	}); err != nil {
		t.Fatalf("publish reminder: %v", err)
	}

	kinds := sender.kinds()
	if len(kinds) != 2 || kinds[0] != "created" || kinds[1] != "reminder" {
		t.Fatalf("sent = %v, want [created reminder]", kinds)
	}
	for _, m := range sender.sent {
		if m.to != "ventas@example.com" {
			t.Fatalf("mail went to %q, want sales inbox", m.to)
		}
	}
}

func TestNotifierSwallowsSenderErrors(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	NewNotifier(sender, "ventas@example.com", log).Subscribe(bus)

	err := bus.PublishSync(context.Background(), events.ProspectCreated{
		BaseEvent:  events.NewBaseEvent(),
		ProspectID: uuid.New(),
		Name:       "Laura Medina",
		Source:     "website",
	})
	if err != nil {
		t.Fatalf("delivery failure must not propagate, got %v", err)
	}
}

func TestDisabledNotifierRegistersNothing(t *testing.T) {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)

	tests := []struct {
		name     string
		notifier *Notifier
	}{
		{"no sender", NewNotifier(nil, "ventas@example.com", log)},
		{"no inbox", NewNotifier(&fakeSender{}, "", log)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.notifier.Enabled() {
				t.Fatal("notifier should report disabled")
			}
			tt.notifier.Subscribe(bus)
		})
	}

	if err := bus.PublishSync(context.Background(), events.ProspectCreated{
		BaseEvent:  events.NewBaseEvent(),
		ProspectID: uuid.New(),
		Name:       "Laura Medina",
		Source:     "referral",
	}); err != nil {
		t.Fatalf("publish with no subscribers: %v", err)
	}
}
