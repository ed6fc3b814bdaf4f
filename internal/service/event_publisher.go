package service

import (
	"context"
	"time"

	"hospital-scheduler/internal/domain/entity"
)

// Appointment event types, also used as routing keys
const (
	EventAppointmentCreated = "appointment.created"
	EventAppointmentDeleted = "appointment.deleted"
	EventAppointmentCleared = "appointment.cleared"
)

// AppointmentEvent describes a change to the schedule. Appointment fields are
// zero for EventAppointmentCleared.
type AppointmentEvent struct {
	Type          string    `json:"type"`
	AppointmentID int64     `json:"appointment_id,omitempty"`
	PatientID     int64     `json:"patient_id,omitempty"`
	DoctorID      int64     `json:"doctor_id,omitempty"`
	RoomID        int64     `json:"room_id,omitempty"`
	RoomName      string    `json:"room_name,omitempty"`
	StartsAt      time.Time `json:"starts_at,omitempty"`
	FinishesAt    time.Time `json:"finishes_at,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewAppointmentEvent builds an event of the given type for appointment
func NewAppointmentEvent(eventType string, appointment *entity.Appointment) AppointmentEvent {
	evt := AppointmentEvent{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
	}
	if appointment != nil {
		evt.AppointmentID = appointment.ID
		evt.PatientID = appointment.PatientID
		evt.DoctorID = appointment.DoctorID
		evt.RoomID = appointment.RoomID
		evt.RoomName = appointment.Room.RoomName
		evt.StartsAt = appointment.StartsAt
		evt.FinishesAt = appointment.FinishesAt
	}
	return evt
}

type EventPublisher interface {
	PublishAppointmentEvent(ctx context.Context, evt AppointmentEvent) error
}

// NoopEventPublisher drops every event. Used when no broker is configured.
type NoopEventPublisher struct{}

func (NoopEventPublisher) PublishAppointmentEvent(ctx context.Context, evt AppointmentEvent) error {
	return nil
}
