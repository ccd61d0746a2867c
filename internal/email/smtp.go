package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"

	"autoplaza_backend/platform/config"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates an SMTPSender from the email configuration.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendProspectCreatedEmail(ctx context.Context, toEmail, prospectName, source string) error {
	content, err := renderEmailTemplate("prospect_created.html", prospectCreatedData{
		baseEmailData: baseEmailData{
			Title:   "Nuevo prospecto",
			Heading: "Nuevo prospecto recibido",
		},
		ProspectName: prospectName,
		Source:       source,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectProspectCreated, content)
}

func (s *SMTPSender) SendProspectReassignedEmail(ctx context.Context, toEmail, prospectName, reason string) error {
	content, err := renderEmailTemplate("prospect_reassigned.html", prospectReassignedData{
		baseEmailData: baseEmailData{
			Title:   "Prospecto reasignado",
			Heading: "Prospecto reasignado",
		},
		ProspectName: prospectName,
		Reason:       reason,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectProspectReassigned, content)
}

func (s *SMTPSender) SendAppointmentScheduledEmail(ctx context.Context, toEmail, prospectName, appointmentDate string) error {
	content, err := renderEmailTemplate("appointment_scheduled.html", appointmentData{
		baseEmailData: baseEmailData{
			Title:   "Cita agendada",
			Heading: "Cita agendada",
		},
		ProspectName:    prospectName,
		AppointmentDate: appointmentDate,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectAppointmentScheduled, content)
}

func (s *SMTPSender) SendAppointmentReminderEmail(ctx context.Context, toEmail, prospectName, prospectPhone, appointmentDate string) error {
	content, err := renderEmailTemplate("appointment_reminder.html", appointmentData{
		baseEmailData: baseEmailData{
			Title:   "Recordatorio de cita",
			Heading: "Recordatorio de cita",
		},
		ProspectName:    prospectName,
		ProspectPhone:   prospectPhone,
		AppointmentDate: appointmentDate,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectAppointmentReminder, content)
}

var _ Sender = (*SMTPSender)(nil)
