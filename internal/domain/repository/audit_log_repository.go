package repository

import (
	"hospital-scheduler/internal/domain/entity"

	"gorm.io/gorm"
)

// AuditLogFilter narrows FindAll. Zero values match everything.
type AuditLogFilter struct {
	// Entity matches actions of one entity kind, e.g. "appointment"
	Entity string
	Action string
}

type AuditLogRepository interface {
	Create(db *gorm.DB, log *entity.AuditLog) error
	FindAll(db *gorm.DB, filter AuditLogFilter) ([]entity.AuditLog, error)
	FindByID(db *gorm.DB, id int64) (*entity.AuditLog, error)
}
