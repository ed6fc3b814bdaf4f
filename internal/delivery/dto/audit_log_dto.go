package dto

import (
	"time"

	"hospital-scheduler/internal/domain/entity"
)

// Response DTOs

type AuditLogResponse struct {
	ID        int64       `json:"id"`
	Action    string      `json:"action"`
	Metadata  entity.JSON `json:"metadata"`
	CreatedAt time.Time   `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}

// Request DTOs

// AuditLogFilterRequest is read from the query string of GET /audit-logs
type AuditLogFilterRequest struct {
	Entity string `validate:"omitempty,oneof=doctor patient room appointment"`
	Action string `validate:"omitempty,max=100"`
}
