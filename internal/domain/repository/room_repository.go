package repository

import (
	"hospital-scheduler/internal/domain/entity"

	"gorm.io/gorm"
)

// RoomRepository addresses rooms by name rather than by id
type RoomRepository interface {
	Create(db *gorm.DB, room *entity.Room) error
	FindByID(db *gorm.DB, id int64) (*entity.Room, error)
	FindByName(db *gorm.DB, roomName string) (*entity.Room, error)
	FindAll(db *gorm.DB) ([]entity.Room, error)
	DeleteByName(db *gorm.DB, roomName string) (int64, error)
	DeleteAll(db *gorm.DB) (int64, error)
}
