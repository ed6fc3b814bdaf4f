package usecase

import (
	"context"
	"errors"
	"strings"

	"hospital-scheduler/internal/converter"
	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/domain/entity"
	"hospital-scheduler/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAuditLogNotFound    = errors.New("audit log not found")
	ErrUnknownAuditAction  = errors.New("unknown audit action")
	ErrAuditFilterMismatch = errors.New("audit action does not belong to the requested entity")
)

type AuditLogUsecase interface {
	GetAllAuditLogs(ctx context.Context, filter *dto.AuditLogFilterRequest) (*dto.AuditLogListResponse, error)
	GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error)
}

type auditLogUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		db:           db,
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

// GetAllAuditLogs lists audit entries, newest first. A nil filter lists
// everything; Entity="appointment" gives the appointment history.
func (u *auditLogUsecase) GetAllAuditLogs(ctx context.Context, filter *dto.AuditLogFilterRequest) (*dto.AuditLogListResponse, error) {
	var query repository.AuditLogFilter
	if filter != nil {
		if filter.Action != "" && !entity.IsAuditAction(filter.Action) {
			return nil, ErrUnknownAuditAction
		}
		if filter.Entity != "" && filter.Action != "" && !strings.HasPrefix(filter.Action, filter.Entity+".") {
			return nil, ErrAuditFilterMismatch
		}
		query = repository.AuditLogFilter{Entity: filter.Entity, Action: filter.Action}
	}

	logs, err := u.auditLogRepo.FindAll(u.db.WithContext(ctx), query)
	if err != nil {
		u.log.WithFields(logrus.Fields{
			"entity": query.Entity,
			"action": query.Action,
		}).Warnf("Failed to find audit logs: %+v", err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}

func (u *auditLogUsecase) GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error) {
	auditLog, err := u.auditLogRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find audit log %d: %+v", id, err)
		return nil, err
	}
	if auditLog == nil {
		return nil, ErrAuditLogNotFound
	}

	return converter.AuditLogToResponse(auditLog), nil
}
