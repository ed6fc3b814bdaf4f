package repository

import (
	"hospital-scheduler/internal/domain/entity"

	"gorm.io/gorm"
)

type DoctorRepository interface {
	Create(db *gorm.DB, doctor *entity.Doctor) error
	FindByID(db *gorm.DB, id int64) (*entity.Doctor, error)
	FindAll(db *gorm.DB) ([]entity.Doctor, error)
	DeleteByID(db *gorm.DB, id int64) (int64, error)
	DeleteAll(db *gorm.DB) (int64, error)
}
