package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	subjectProspectCreated      = "Nuevo prospecto recibido"
	subjectProspectReassigned   = "Prospecto reasignado"
	subjectAppointmentScheduled = "Cita agendada"
	subjectAppointmentReminder  = "Recordatorio de cita"
)

type baseEmailData struct {
	Title   string
	Heading string
}

type prospectCreatedData struct {
	baseEmailData
	ProspectName string
	Source       string
}

type prospectReassignedData struct {
	baseEmailData
	ProspectName string
	Reason       string
}

type appointmentData struct {
	baseEmailData
	ProspectName    string
	ProspectPhone   string
	AppointmentDate string
}

func renderEmailTemplate(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render email template %s: %w", name, err)
	}
	return buf.String(), nil
}
