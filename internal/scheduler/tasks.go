package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskAppointmentReminder = "prospects.appointment.reminder"

// ReminderLeadTime is how far ahead of the visit the reminder fires.
const ReminderLeadTime = 24 * time.Hour

type AppointmentReminderPayload struct {
	ProspectID      string    `json:"prospectId"`
	ProspectName    string    `json:"prospectName"`
	AppointmentDate time.Time `json:"appointmentDate"`
}

func NewAppointmentReminderTask(payload AppointmentReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAppointmentReminder, data), nil
}

func ParseAppointmentReminderPayload(task *asynq.Task) (AppointmentReminderPayload, error) {
	var payload AppointmentReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AppointmentReminderPayload{}, err
	}
	return payload, nil
}
