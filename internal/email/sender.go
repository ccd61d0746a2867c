// Package email delivers outbound notification mail over SMTP.
package email

import "context"

// Sender delivers the notification emails the prospect lifecycle produces.
type Sender interface {
	SendProspectCreatedEmail(ctx context.Context, toEmail, prospectName, source string) error
	SendProspectReassignedEmail(ctx context.Context, toEmail, prospectName, reason string) error
	SendAppointmentScheduledEmail(ctx context.Context, toEmail, prospectName, appointmentDate string) error
	SendAppointmentReminderEmail(ctx context.Context, toEmail, prospectName, prospectPhone, appointmentDate string) error
}
