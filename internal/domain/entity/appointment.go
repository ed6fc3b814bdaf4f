package entity

import "time"

// Appointment books a patient and a doctor into a room for a time range.
// Appointments are never updated in place.
type Appointment struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID  int64     `gorm:"not null;index" json:"patient_id"`
	DoctorID   int64     `gorm:"not null;index" json:"doctor_id"`
	RoomID     int64     `gorm:"not null;index" json:"room_id"`
	StartsAt   time.Time `gorm:"not null;index" json:"starts_at"`
	FinishesAt time.Time `gorm:"not null" json:"finishes_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Patient Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  Doctor  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Room    Room    `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsDateRangeInvalid reports whether the appointment cannot be admitted because
// it does not start strictly before it finishes.
func (a *Appointment) IsDateRangeInvalid() bool {
	return a.StartsAt.After(a.FinishesAt) ||
		a.FinishesAt.Before(a.StartsAt) ||
		a.StartsAt.Equal(a.FinishesAt)
}

// Overlaps reports whether a and other occupy the same room at some instant.
// Ranges are treated as closed, so appointments that only touch at an
// endpoint still overlap.
func (a *Appointment) Overlaps(other *Appointment) bool {
	if !a.SameRoom(other) {
		return false
	}
	return !a.StartsAt.After(other.FinishesAt) && !a.FinishesAt.Before(other.StartsAt)
}

// SameRoom compares room IDs when both sides have one, room names otherwise
func (a *Appointment) SameRoom(other *Appointment) bool {
	if a.RoomID != 0 && other.RoomID != 0 {
		return a.RoomID == other.RoomID
	}
	return a.Room.RoomName == other.Room.RoomName
}
