package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/domain/entity"
	"hospital-scheduler/internal/service"
	"hospital-scheduler/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/gorm"
)

var day = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

type appointmentFixture struct {
	db        *gorm.DB
	mock      sqlmock.Sqlmock
	appts     *mockAppointmentRepository
	patients  *mockPatientRepository
	doctors   *mockDoctorRepository
	rooms     *mockRoomRepository
	audit     *mockAuditService
	cache     *mockAppointmentCache
	publisher *mockEventPublisher
	locker    *mockRoomLocker
}

func newAppointmentFixture(t *testing.T, existing ...entity.Appointment) *appointmentFixture {
	t.Helper()
	db, mock := testutil.NewMockDB(t)
	return &appointmentFixture{
		db:    db,
		mock:  mock,
		appts: newMockAppointmentRepository(existing...),
		patients: newMockPatientRepository(entity.Patient{
			ID:     1,
			Person: entity.Person{FirstName: "Ana", LastName: "Lopez", Age: 34, Email: "ana@example.com"},
		}),
		doctors: newMockDoctorRepository(entity.Doctor{
			ID:     1,
			Person: entity.Person{FirstName: "Perla", LastName: "Amalia", Age: 50, Email: "perla@example.com"},
		}),
		rooms: newMockRoomRepository(
			entity.Room{ID: 1, RoomName: "Dermatology"},
			entity.Room{ID: 2, RoomName: "Cardiology"},
		),
		audit:     &mockAuditService{},
		cache:     &mockAppointmentCache{},
		publisher: &mockEventPublisher{},
	}
}

func (f *appointmentFixture) usecase() AppointmentUsecase {
	var locker service.RoomLocker
	if f.locker != nil {
		locker = f.locker
	}
	return NewAppointmentUsecase(f.db, newTestLogger(), f.appts, f.patients, f.doctors, f.rooms,
		f.audit, f.cache, f.publisher, locker)
}

func booking(room string, start, finish time.Time) *dto.CreateAppointmentRequest {
	return &dto.CreateAppointmentRequest{
		PatientID:  1,
		DoctorID:   1,
		RoomName:   room,
		StartsAt:   start,
		FinishesAt: finish,
	}
}

func stored(id, roomID int64, roomName string, start, finish time.Time) entity.Appointment {
	return entity.Appointment{
		ID:         id,
		PatientID:  1,
		DoctorID:   1,
		RoomID:     roomID,
		StartsAt:   start,
		FinishesAt: finish,
		Room:       entity.Room{ID: roomID, RoomName: roomName},
	}
}

func TestCreateAppointment_Admitted(t *testing.T) {
	f := newAppointmentFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.usecase().CreateAppointment(context.Background(), booking("Dermatology", at(9, 0), at(9, 30)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Total != 1 || len(resp.Appointments) != 1 {
		t.Fatalf("expected one appointment in the returned list, got %+v", resp)
	}

	got := resp.Appointments[0]
	if got.Room.RoomName != "Dermatology" {
		t.Errorf("expected room Dermatology, got %q", got.Room.RoomName)
	}
	if !got.StartsAt.Equal(at(9, 0)) || !got.FinishesAt.Equal(at(9, 30)) {
		t.Errorf("unexpected range %s..%s", got.StartsAt, got.FinishesAt)
	}

	assertActions(t, f.audit, entity.AuditActionAppointmentCreate)
	if f.cache.InvalidateCalls != 1 {
		t.Errorf("expected cache invalidated once, got %d", f.cache.InvalidateCalls)
	}
	if len(f.publisher.Events) != 1 || f.publisher.Events[0].Type != service.EventAppointmentCreated {
		t.Errorf("expected one %s event, got %+v", service.EventAppointmentCreated, f.publisher.Events)
	}
}

func TestCreateAppointment_ReturnsWholeSchedule(t *testing.T) {
	f := newAppointmentFixture(t,
		stored(1, 2, "Cardiology", at(9, 0), at(10, 0)),
		stored(2, 1, "Dermatology", at(8, 0), at(8, 30)),
	)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.usecase().CreateAppointment(context.Background(), booking("Dermatology", at(9, 0), at(9, 30)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Total != 3 {
		t.Errorf("expected 3 appointments, got %d", resp.Total)
	}
}

func TestCreateAppointment_InvalidRange(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		finish time.Time
	}{
		{"equal instants", at(9, 0), at(9, 0)},
		{"inverted", at(10, 0), at(9, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAppointmentFixture(t)
			// unknown references prove the range is checked first
			req := booking("Nowhere", tt.start, tt.finish)
			req.PatientID = 99

			_, err := f.usecase().CreateAppointment(context.Background(), req)
			if !errors.Is(err, ErrInvalidDateRange) {
				t.Fatalf("expected ErrInvalidDateRange, got %v", err)
			}
			if f.appts.FindAllCalls != 0 || f.appts.CreateCalls != 0 {
				t.Errorf("storage touched: FindAll=%d Create=%d", f.appts.FindAllCalls, f.appts.CreateCalls)
			}
		})
	}
}

func TestCreateAppointment_UnknownReference(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(req *dto.CreateAppointmentRequest)
		wantErr error
	}{
		{"patient", func(req *dto.CreateAppointmentRequest) { req.PatientID = 42 }, ErrPatientNotFound},
		{"doctor", func(req *dto.CreateAppointmentRequest) { req.DoctorID = 42 }, ErrDoctorNotFound},
		{"room", func(req *dto.CreateAppointmentRequest) { req.RoomName = "Oncology" }, ErrRoomNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAppointmentFixture(t)
			req := booking("Dermatology", at(9, 0), at(9, 30))
			tt.mutate(req)

			_, err := f.usecase().CreateAppointment(context.Background(), req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if f.appts.count() != 0 {
				t.Error("appointment must not be stored")
			}
		})
	}
}

func TestCreateAppointment_Overlap(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		finish time.Time
	}{
		{"identical", at(9, 0), at(9, 30)},
		{"contained", at(9, 10), at(9, 20)},
		{"covering", at(8, 0), at(10, 0)},
		{"touching end", at(9, 30), at(10, 0)},
		{"touching start", at(8, 30), at(9, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAppointmentFixture(t, stored(1, 1, "Dermatology", at(9, 0), at(9, 30)))

			_, err := f.usecase().CreateAppointment(context.Background(), booking("Dermatology", tt.start, tt.finish))
			if !errors.Is(err, ErrAppointmentOverlap) {
				t.Fatalf("expected ErrAppointmentOverlap, got %v", err)
			}
			if f.appts.CreateCalls != 0 {
				t.Error("rejected appointment must not be inserted")
			}
			if len(f.audit.Actions) != 0 || len(f.publisher.Events) != 0 || f.cache.InvalidateCalls != 0 {
				t.Error("rejection must have no side effects")
			}
		})
	}
}

func TestCreateAppointment_SameTimeDifferentRoom(t *testing.T) {
	f := newAppointmentFixture(t, stored(1, 2, "Cardiology", at(9, 0), at(9, 30)))
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.usecase().CreateAppointment(context.Background(), booking("Dermatology", at(9, 0), at(9, 30)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("expected 2 appointments, got %d", resp.Total)
	}
}

func TestCreateAppointment_AdjacentAfterGap(t *testing.T) {
	f := newAppointmentFixture(t, stored(1, 1, "Dermatology", at(9, 0), at(9, 30)))
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	_, err := f.usecase().CreateAppointment(context.Background(), booking("Dermatology", at(9, 31), at(10, 0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateAppointment_InsertFailureRollsBack(t *testing.T) {
	f := newAppointmentFixture(t)
	f.appts.CreateError = errors.New("connection reset")
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.usecase().CreateAppointment(context.Background(), booking("Dermatology", at(9, 0), at(9, 30)))
	if err == nil {
		t.Fatal("expected error")
	}
	if f.cache.InvalidateCalls != 0 || len(f.publisher.Events) != 0 {
		t.Error("nothing may happen after a failed insert")
	}
}

func TestCreateAppointment_PublishFailureIsNotFatal(t *testing.T) {
	f := newAppointmentFixture(t)
	f.publisher.PublishError = errors.New("broker unavailable")
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp, err := f.usecase().CreateAppointment(context.Background(), booking("Dermatology", at(9, 0), at(9, 30)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("expected 1 appointment, got %d", resp.Total)
	}
}

func TestCreateAppointment_LocksRoomWhenSerialized(t *testing.T) {
	f := newAppointmentFixture(t)
	f.locker = &mockRoomLocker{}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	if _, err := f.usecase().CreateAppointment(context.Background(), booking("Cardiology", at(9, 0), at(9, 30))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.locker.Locks[2] != 1 {
		t.Errorf("expected room 2 locked once, got %v", f.locker.Locks)
	}
}

func TestGetAllAppointments_ReadThrough(t *testing.T) {
	f := newAppointmentFixture(t, stored(1, 1, "Dermatology", at(9, 0), at(9, 30)))
	uc := f.usecase()

	first, err := uc.GetAllAppointments(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := uc.GetAllAppointments(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Total != 1 || second.Total != 1 {
		t.Errorf("expected 1 appointment both times, got %d and %d", first.Total, second.Total)
	}
	if f.appts.FindAllCalls != 1 {
		t.Errorf("expected one database read, got %d", f.appts.FindAllCalls)
	}
	if f.cache.SetCalls != 1 {
		t.Errorf("expected cache filled once, got %d", f.cache.SetCalls)
	}
}

func TestGetAllAppointments_CacheErrorFallsBack(t *testing.T) {
	f := newAppointmentFixture(t, stored(1, 1, "Dermatology", at(9, 0), at(9, 30)))
	f.cache.GetError = errors.New("circuit breaker is open")

	resp, err := f.usecase().GetAllAppointments(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("expected 1 appointment, got %d", resp.Total)
	}
	if f.appts.FindAllCalls != 1 {
		t.Errorf("expected database read, got %d", f.appts.FindAllCalls)
	}
}

// pausingAppointmentRepository blocks the first FindAll after it has read
// the rows, until release is closed
type pausingAppointmentRepository struct {
	*mockAppointmentRepository
	read    chan struct{}
	release chan struct{}
	once    sync.Once
}

func (p *pausingAppointmentRepository) FindAll(db *gorm.DB) ([]entity.Appointment, error) {
	appointments, err := p.mockAppointmentRepository.FindAll(db)
	p.once.Do(func() {
		close(p.read)
		<-p.release
	})
	return appointments, err
}

func TestGetAllAppointments_ReadRacingDeleteIsNotCached(t *testing.T) {
	f := newAppointmentFixture(t, stored(3, 1, "Dermatology", at(9, 0), at(9, 30)))
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	repo := &pausingAppointmentRepository{
		mockAppointmentRepository: f.appts,
		read:                      make(chan struct{}),
		release:                   make(chan struct{}),
	}
	uc := NewAppointmentUsecase(f.db, newTestLogger(), repo, f.patients, f.doctors, f.rooms,
		f.audit, f.cache, f.publisher, nil)

	type result struct {
		resp *dto.AppointmentListResponse
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := uc.GetAllAppointments(context.Background())
		done <- result{resp, err}
	}()

	<-repo.read
	if err := uc.DeleteAppointment(context.Background(), 3); err != nil {
		t.Fatalf("DeleteAppointment() error = %v", err)
	}
	close(repo.release)

	stale := <-done
	if stale.err != nil {
		t.Fatalf("GetAllAppointments() error = %v", stale.err)
	}
	if stale.resp.Total != 1 {
		t.Fatalf("expected the in-flight read to see 1 appointment, got %d", stale.resp.Total)
	}
	if f.cache.StaleSetCalls != 1 {
		t.Errorf("expected the in-flight list to be refused by the cache, got %d stale sets", f.cache.StaleSetCalls)
	}

	fresh, err := uc.GetAllAppointments(context.Background())
	if err != nil {
		t.Fatalf("GetAllAppointments() error = %v", err)
	}
	if fresh.Total != f.appts.count() || fresh.Total != 0 {
		t.Errorf("listed %d appointments, stored %d", fresh.Total, f.appts.count())
	}
}

func TestGetAppointment_NotFound(t *testing.T) {
	f := newAppointmentFixture(t)

	_, err := f.usecase().GetAppointment(context.Background(), 5)
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestDeleteAppointment(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		f := newAppointmentFixture(t)

		err := f.usecase().DeleteAppointment(context.Background(), 5)
		if !errors.Is(err, ErrAppointmentNotFound) {
			t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
		}
		if len(f.publisher.Events) != 0 {
			t.Error("no event expected")
		}
	})

	t.Run("deleted", func(t *testing.T) {
		f := newAppointmentFixture(t, stored(3, 1, "Dermatology", at(9, 0), at(9, 30)))
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		if err := f.usecase().DeleteAppointment(context.Background(), 3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.appts.count() != 0 {
			t.Error("appointment still stored")
		}
		assertActions(t, f.audit, entity.AuditActionAppointmentDelete)
		if f.cache.InvalidateCalls != 1 {
			t.Errorf("expected cache invalidated, got %d", f.cache.InvalidateCalls)
		}
		if len(f.publisher.Events) != 1 || f.publisher.Events[0].Type != service.EventAppointmentDeleted {
			t.Errorf("expected %s event, got %+v", service.EventAppointmentDeleted, f.publisher.Events)
		}
	})
}

func TestDeleteAllAppointments(t *testing.T) {
	f := newAppointmentFixture(t,
		stored(1, 1, "Dermatology", at(9, 0), at(9, 30)),
		stored(2, 2, "Cardiology", at(9, 0), at(9, 30)),
	)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	if err := f.usecase().DeleteAllAppointments(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.appts.count() != 0 {
		t.Errorf("expected no appointments, got %d", f.appts.count())
	}
	assertActions(t, f.audit, entity.AuditActionAppointmentDeleteAll)
	if len(f.publisher.Events) != 1 || f.publisher.Events[0].Type != service.EventAppointmentCleared {
		t.Errorf("expected %s event, got %+v", service.EventAppointmentCleared, f.publisher.Events)
	}
}
