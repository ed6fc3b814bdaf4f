package converter

import (
	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment with its preloaded references
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:         appointment.ID,
		Patient:    *PatientToResponse(&appointment.Patient),
		Doctor:     *DoctorToResponse(&appointment.Doctor),
		Room:       *RoomToResponse(&appointment.Room),
		StartsAt:   appointment.StartsAt,
		FinishesAt: appointment.FinishesAt,
		CreatedAt:  appointment.CreatedAt,
	}
}

func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}

// AppointmentsToListResponse wraps the converted appointments with their count
func AppointmentsToListResponse(appointments []entity.Appointment) *dto.AppointmentListResponse {
	return &dto.AppointmentListResponse{
		Appointments: AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}
}
