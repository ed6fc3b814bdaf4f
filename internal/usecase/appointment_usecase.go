package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"hospital-scheduler/internal/converter"
	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/domain/entity"
	"hospital-scheduler/internal/domain/repository"
	"hospital-scheduler/internal/domain/scheduling"
	"hospital-scheduler/internal/service"
	"hospital-scheduler/pkg/metrics"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrInvalidDateRange    = errors.New("appointment must start before it finishes")
	ErrAppointmentOverlap  = errors.New("appointment overlaps another appointment in the same room")
)

// Timeout for cache invalidation and event publishing after a commit
const afterCommitTimeout = 5 * time.Second

type AppointmentUsecase interface {
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentListResponse, error)
	GetAppointment(ctx context.Context, appointmentID int64) (*dto.AppointmentResponse, error)
	GetAllAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
	DeleteAppointment(ctx context.Context, appointmentID int64) error
	DeleteAllAppointments(ctx context.Context) error
}

type appointmentUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	appointmentRepo  repository.AppointmentRepository
	patientRepo      repository.PatientRepository
	doctorRepo       repository.DoctorRepository
	roomRepo         repository.RoomRepository
	auditService     service.AuditService
	appointmentCache service.AppointmentCache
	eventPublisher   service.EventPublisher
	roomLocker       service.RoomLocker
}

// NewAppointmentUsecase wires the creation workflow. roomLocker may be nil, in
// which case the overlap scan and the insert are not serialized and two
// concurrent requests for the same slot can both be admitted.
func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	roomRepo repository.RoomRepository,
	auditService service.AuditService,
	appointmentCache service.AppointmentCache,
	eventPublisher service.EventPublisher,
	roomLocker service.RoomLocker,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:               db,
		log:              log,
		appointmentRepo:  appointmentRepo,
		patientRepo:      patientRepo,
		doctorRepo:       doctorRepo,
		roomRepo:         roomRepo,
		auditService:     auditService,
		appointmentCache: appointmentCache,
		eventPublisher:   eventPublisher,
		roomLocker:       roomLocker,
	}
}

// CreateAppointment admits a new appointment and returns the full schedule.
//
// Flow:
// 1. Reject a range that does not start before it finishes
// 2. Resolve patient, doctor and room (room by name)
// 3. Optionally lock the room
// 4. Scan all stored appointments for an overlap
// 5. Insert appointment + audit log in one transaction
// 6. Invalidate the list cache and publish appointment.created
func (u *appointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentListResponse, error) {
	candidate := &entity.Appointment{
		StartsAt:   req.StartsAt,
		FinishesAt: req.FinishesAt,
	}

	// Step 1: the range is checked before storage is touched
	if candidate.IsDateRangeInvalid() {
		metrics.AppointmentAdmissions.WithLabelValues(scheduling.RejectInvalidRange.String()).Inc()
		return nil, ErrInvalidDateRange
	}

	// Step 2: resolve references
	db := u.db.WithContext(ctx)

	patient, err := u.patientRepo.FindByID(db, req.PatientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %d: %+v", req.PatientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	doctor, err := u.doctorRepo.FindByID(db, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	room, err := u.roomRepo.FindByName(db, req.RoomName)
	if err != nil {
		u.log.Warnf("Failed to find room %q: %+v", req.RoomName, err)
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	candidate.PatientID, candidate.Patient = patient.ID, *patient
	candidate.DoctorID, candidate.Doctor = doctor.ID, *doctor
	candidate.RoomID, candidate.Room = room.ID, *room

	// Step 3: held until the insert is committed
	if u.roomLocker != nil {
		unlock := u.roomLocker.Lock(room.ID)
		defer unlock()
	}

	// Step 4: overlap scan against a snapshot of every stored appointment
	existing, err := u.appointmentRepo.FindAll(db)
	if err != nil {
		u.log.Warnf("Failed to load appointments for overlap check: %+v", err)
		return nil, err
	}

	decision := scheduling.CanAdmit(candidate, existing)
	metrics.AppointmentAdmissions.WithLabelValues(decision.String()).Inc()

	switch decision {
	case scheduling.RejectInvalidRange:
		return nil, ErrInvalidDateRange
	case scheduling.RejectOverlap:
		u.log.Infof("Appointment rejected: room=%s, starts_at=%s, finishes_at=%s overlaps an existing appointment",
			room.RoomName, candidate.StartsAt.Format(time.RFC3339), candidate.FinishesAt.Format(time.RFC3339))
		return nil, ErrAppointmentOverlap
	}

	// Step 5: persist
	tx := db.Begin()
	defer tx.Rollback()

	if err := u.appointmentRepo.Create(tx, candidate); err != nil {
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, entity.AuditActionAppointmentCreate, "appointment", strconv.FormatInt(candidate.ID, 10), converter.AppointmentToResponse(candidate)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Appointment created: id=%d, room=%s, patient=%d, doctor=%d", candidate.ID, room.RoomName, patient.ID, doctor.ID)

	// Step 6
	u.afterCommit(service.NewAppointmentEvent(service.EventAppointmentCreated, candidate))

	appointments, err := u.appointmentRepo.FindAll(db)
	if err != nil {
		u.log.Warnf("Failed to reload appointments: %+v", err)
		return nil, err
	}

	return converter.AppointmentsToListResponse(appointments), nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, appointmentID int64) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	return converter.AppointmentToResponse(appointment), nil
}

// GetAllAppointments serves from the cache when it can and falls back to the
// database when the cache misses or Redis is unavailable.
func (u *appointmentUsecase) GetAllAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	cached, found, err := u.appointmentCache.GetAll(ctx)
	if err != nil {
		u.log.Warnf("Appointment cache unavailable, reading from database: %+v", err)
	} else if found {
		return converter.AppointmentsToListResponse(cached), nil
	}

	// Taken before the read so a write committed meanwhile makes SetAll a no-op
	gen, genErr := u.appointmentCache.Generation(ctx)
	if genErr != nil {
		u.log.Warnf("Appointment cache generation unavailable, not caching: %+v", genErr)
	}

	appointments, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to find all appointments: %+v", err)
		return nil, err
	}

	if genErr == nil {
		if err := u.appointmentCache.SetAll(ctx, gen, appointments); err != nil {
			u.log.Warnf("Failed to cache appointments: %+v", err)
		}
	}

	return converter.AppointmentsToListResponse(appointments), nil
}

func (u *appointmentUsecase) DeleteAppointment(ctx context.Context, appointmentID int64) error {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", appointmentID, err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if _, err := u.appointmentRepo.DeleteByID(tx, appointmentID); err != nil {
		u.log.Warnf("Failed to delete appointment %d: %+v", appointmentID, err)
		return err
	}

	if err := u.auditService.LogDelete(ctx, tx, entity.AuditActionAppointmentDelete, "appointment", strconv.FormatInt(appointmentID, 10), converter.AppointmentToResponse(appointment)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.log.Infof("Appointment deleted: id=%d", appointmentID)
	u.afterCommit(service.NewAppointmentEvent(service.EventAppointmentDeleted, appointment))
	return nil
}

func (u *appointmentUsecase) DeleteAllAppointments(ctx context.Context) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	deleted, err := u.appointmentRepo.DeleteAll(tx)
	if err != nil {
		u.log.Warnf("Failed to delete all appointments: %+v", err)
		return err
	}

	if err := u.auditService.LogDelete(ctx, tx, entity.AuditActionAppointmentDeleteAll, "appointment", "", map[string]int64{"deleted": deleted}); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.log.Infof("All appointments deleted: count=%d", deleted)
	u.afterCommit(service.NewAppointmentEvent(service.EventAppointmentCleared, nil))
	return nil
}

// afterCommit drops the cached list and publishes evt. Neither failure undoes
// the committed change, so both are only logged. A detached context is used so
// a client disconnect does not leave the cache stale.
func (u *appointmentUsecase) afterCommit(evt service.AppointmentEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), afterCommitTimeout)
	defer cancel()

	if err := u.appointmentCache.Invalidate(ctx); err != nil {
		u.log.Warnf("Failed to invalidate appointment cache (non-fatal): %+v", err)
	}

	if err := u.eventPublisher.PublishAppointmentEvent(ctx, evt); err != nil {
		u.log.Warnf("Failed to publish %s event (non-fatal): %+v", evt.Type, err)
	}
}
