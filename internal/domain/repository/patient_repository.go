package repository

import (
	"hospital-scheduler/internal/domain/entity"

	"gorm.io/gorm"
)

type PatientRepository interface {
	Create(db *gorm.DB, patient *entity.Patient) error
	FindByID(db *gorm.DB, id int64) (*entity.Patient, error)
	FindAll(db *gorm.DB) ([]entity.Patient, error)
	DeleteByID(db *gorm.DB, id int64) (int64, error)
	DeleteAll(db *gorm.DB) (int64, error)
}
