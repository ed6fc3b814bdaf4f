package dto

import "time"

// Request DTOs

type CreateAppointmentRequest struct {
	PatientID  int64     `json:"patient_id" validate:"required,gt=0"`
	DoctorID   int64     `json:"doctor_id" validate:"required,gt=0"`
	RoomName   string    `json:"room_name" validate:"required"`
	StartsAt   time.Time `json:"starts_at" validate:"required"`   // RFC 3339
	FinishesAt time.Time `json:"finishes_at" validate:"required"` // RFC 3339
}

// Response DTOs

type AppointmentResponse struct {
	ID         int64           `json:"id"`
	Patient    PatientResponse `json:"patient"`
	Doctor     DoctorResponse  `json:"doctor"`
	Room       RoomResponse    `json:"room"`
	StartsAt   time.Time       `json:"starts_at"`
	FinishesAt time.Time       `json:"finishes_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
