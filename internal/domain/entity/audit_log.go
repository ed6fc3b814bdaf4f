package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AuditLog records a create or delete performed through the API
type AuditLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Action    string    `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  JSON      `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// Audit actions
const (
	AuditActionDoctorCreate         = "doctor.create"
	AuditActionDoctorDelete         = "doctor.delete"
	AuditActionDoctorDeleteAll      = "doctor.delete_all"
	AuditActionPatientCreate        = "patient.create"
	AuditActionPatientDelete        = "patient.delete"
	AuditActionPatientDeleteAll     = "patient.delete_all"
	AuditActionRoomCreate           = "room.create"
	AuditActionRoomDelete           = "room.delete"
	AuditActionRoomDeleteAll        = "room.delete_all"
	AuditActionAppointmentCreate    = "appointment.create"
	AuditActionAppointmentDelete    = "appointment.delete"
	AuditActionAppointmentDeleteAll = "appointment.delete_all"
)

var auditActions = map[string]struct{}{
	AuditActionDoctorCreate:         {},
	AuditActionDoctorDelete:         {},
	AuditActionDoctorDeleteAll:      {},
	AuditActionPatientCreate:        {},
	AuditActionPatientDelete:        {},
	AuditActionPatientDeleteAll:     {},
	AuditActionRoomCreate:           {},
	AuditActionRoomDelete:           {},
	AuditActionRoomDeleteAll:        {},
	AuditActionAppointmentCreate:    {},
	AuditActionAppointmentDelete:    {},
	AuditActionAppointmentDeleteAll: {},
}

// IsAuditAction reports whether action is one this service writes
func IsAuditAction(action string) bool {
	_, ok := auditActions[action]
	return ok
}
