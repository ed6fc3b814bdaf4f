package repository

import (
	"hospital-scheduler/internal/domain/entity"

	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id int64) (*entity.Appointment, error)
	FindAll(db *gorm.DB) ([]entity.Appointment, error)
	DeleteByID(db *gorm.DB, id int64) (int64, error)
	DeleteAll(db *gorm.DB) (int64, error)
}
