package usecase

import (
	"context"
	"io"
	"sync"
	"testing"

	"hospital-scheduler/internal/domain/entity"
	"hospital-scheduler/internal/domain/repository"
	"hospital-scheduler/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// mockDoctorRepository keeps doctors in memory
type mockDoctorRepository struct {
	doctors map[int64]*entity.Doctor
	nextID  int64

	CreateError    error
	FindError      error
	DeleteError    error
	DeleteAllError error

	DeleteCalls []int64
}

var _ repository.DoctorRepository = (*mockDoctorRepository)(nil)

func newMockDoctorRepository(doctors ...entity.Doctor) *mockDoctorRepository {
	m := &mockDoctorRepository{doctors: make(map[int64]*entity.Doctor), nextID: 1}
	for i := range doctors {
		d := doctors[i]
		m.doctors[d.ID] = &d
		if d.ID >= m.nextID {
			m.nextID = d.ID + 1
		}
	}
	return m
}

func (m *mockDoctorRepository) Create(db *gorm.DB, doctor *entity.Doctor) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	doctor.ID = m.nextID
	m.nextID++
	stored := *doctor
	m.doctors[doctor.ID] = &stored
	return nil
}

func (m *mockDoctorRepository) FindByID(db *gorm.DB, id int64) (*entity.Doctor, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	d, ok := m.doctors[id]
	if !ok {
		return nil, nil
	}
	found := *d
	return &found, nil
}

func (m *mockDoctorRepository) FindAll(db *gorm.DB) ([]entity.Doctor, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	var doctors []entity.Doctor
	for id := int64(1); id < m.nextID; id++ {
		if d, ok := m.doctors[id]; ok {
			doctors = append(doctors, *d)
		}
	}
	return doctors, nil
}

func (m *mockDoctorRepository) DeleteByID(db *gorm.DB, id int64) (int64, error) {
	m.DeleteCalls = append(m.DeleteCalls, id)
	if m.DeleteError != nil {
		return 0, m.DeleteError
	}
	if _, ok := m.doctors[id]; !ok {
		return 0, nil
	}
	delete(m.doctors, id)
	return 1, nil
}

func (m *mockDoctorRepository) DeleteAll(db *gorm.DB) (int64, error) {
	if m.DeleteAllError != nil {
		return 0, m.DeleteAllError
	}
	n := int64(len(m.doctors))
	m.doctors = make(map[int64]*entity.Doctor)
	return n, nil
}

// mockPatientRepository keeps patients in memory
type mockPatientRepository struct {
	patients map[int64]*entity.Patient
	nextID   int64

	FindError error
}

var _ repository.PatientRepository = (*mockPatientRepository)(nil)

func newMockPatientRepository(patients ...entity.Patient) *mockPatientRepository {
	m := &mockPatientRepository{patients: make(map[int64]*entity.Patient), nextID: 1}
	for i := range patients {
		p := patients[i]
		m.patients[p.ID] = &p
		if p.ID >= m.nextID {
			m.nextID = p.ID + 1
		}
	}
	return m
}

func (m *mockPatientRepository) Create(db *gorm.DB, patient *entity.Patient) error {
	patient.ID = m.nextID
	m.nextID++
	stored := *patient
	m.patients[patient.ID] = &stored
	return nil
}

func (m *mockPatientRepository) FindByID(db *gorm.DB, id int64) (*entity.Patient, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	p, ok := m.patients[id]
	if !ok {
		return nil, nil
	}
	found := *p
	return &found, nil
}

func (m *mockPatientRepository) FindAll(db *gorm.DB) ([]entity.Patient, error) {
	var patients []entity.Patient
	for id := int64(1); id < m.nextID; id++ {
		if p, ok := m.patients[id]; ok {
			patients = append(patients, *p)
		}
	}
	return patients, nil
}

func (m *mockPatientRepository) DeleteByID(db *gorm.DB, id int64) (int64, error) {
	if _, ok := m.patients[id]; !ok {
		return 0, nil
	}
	delete(m.patients, id)
	return 1, nil
}

func (m *mockPatientRepository) DeleteAll(db *gorm.DB) (int64, error) {
	n := int64(len(m.patients))
	m.patients = make(map[int64]*entity.Patient)
	return n, nil
}

// mockRoomRepository keeps rooms in memory keyed by name
type mockRoomRepository struct {
	rooms  map[string]*entity.Room
	nextID int64

	CreateError error
	DeleteError error
}

var _ repository.RoomRepository = (*mockRoomRepository)(nil)

func newMockRoomRepository(rooms ...entity.Room) *mockRoomRepository {
	m := &mockRoomRepository{rooms: make(map[string]*entity.Room), nextID: 1}
	for i := range rooms {
		r := rooms[i]
		m.rooms[r.RoomName] = &r
		if r.ID >= m.nextID {
			m.nextID = r.ID + 1
		}
	}
	return m
}

func (m *mockRoomRepository) Create(db *gorm.DB, room *entity.Room) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	room.ID = m.nextID
	m.nextID++
	stored := *room
	m.rooms[room.RoomName] = &stored
	return nil
}

func (m *mockRoomRepository) FindByID(db *gorm.DB, id int64) (*entity.Room, error) {
	for _, r := range m.rooms {
		if r.ID == id {
			found := *r
			return &found, nil
		}
	}
	return nil, nil
}

func (m *mockRoomRepository) FindByName(db *gorm.DB, roomName string) (*entity.Room, error) {
	r, ok := m.rooms[roomName]
	if !ok {
		return nil, nil
	}
	found := *r
	return &found, nil
}

func (m *mockRoomRepository) FindAll(db *gorm.DB) ([]entity.Room, error) {
	var rooms []entity.Room
	for _, r := range m.rooms {
		rooms = append(rooms, *r)
	}
	return rooms, nil
}

func (m *mockRoomRepository) DeleteByName(db *gorm.DB, roomName string) (int64, error) {
	if m.DeleteError != nil {
		return 0, m.DeleteError
	}
	if _, ok := m.rooms[roomName]; !ok {
		return 0, nil
	}
	delete(m.rooms, roomName)
	return 1, nil
}

func (m *mockRoomRepository) DeleteAll(db *gorm.DB) (int64, error) {
	n := int64(len(m.rooms))
	m.rooms = make(map[string]*entity.Room)
	return n, nil
}

// mockAppointmentRepository keeps appointments in insertion order
type mockAppointmentRepository struct {
	mu           sync.Mutex
	appointments []entity.Appointment
	nextID       int64

	CreateError  error
	FindAllError error

	CreateCalls  int
	FindAllCalls int
}

var _ repository.AppointmentRepository = (*mockAppointmentRepository)(nil)

func newMockAppointmentRepository(appointments ...entity.Appointment) *mockAppointmentRepository {
	m := &mockAppointmentRepository{nextID: 1}
	for _, a := range appointments {
		m.appointments = append(m.appointments, a)
		if a.ID >= m.nextID {
			m.nextID = a.ID + 1
		}
	}
	return m
}

func (m *mockAppointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateError != nil {
		return m.CreateError
	}
	appointment.ID = m.nextID
	m.nextID++
	m.appointments = append(m.appointments, *appointment)
	return nil
}

func (m *mockAppointmentRepository) FindByID(db *gorm.DB, id int64) (*entity.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.appointments {
		if m.appointments[i].ID == id {
			found := m.appointments[i]
			return &found, nil
		}
	}
	return nil, nil
}

func (m *mockAppointmentRepository) FindAll(db *gorm.DB) ([]entity.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FindAllCalls++
	if m.FindAllError != nil {
		return nil, m.FindAllError
	}
	return append([]entity.Appointment(nil), m.appointments...), nil
}

func (m *mockAppointmentRepository) DeleteByID(db *gorm.DB, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.appointments {
		if m.appointments[i].ID == id {
			m.appointments = append(m.appointments[:i], m.appointments[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *mockAppointmentRepository) DeleteAll(db *gorm.DB) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.appointments))
	m.appointments = nil
	return n, nil
}

func (m *mockAppointmentRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.appointments)
}

// mockAuditService records the actions it was asked to log
type mockAuditService struct {
	Actions  []string
	LogError error
}

var _ service.AuditService = (*mockAuditService)(nil)

func (m *mockAuditService) LogCreate(ctx context.Context, tx *gorm.DB, action string, entityName string, entityID string, newValue interface{}) error {
	m.Actions = append(m.Actions, action)
	return m.LogError
}

func (m *mockAuditService) LogDelete(ctx context.Context, tx *gorm.DB, action string, entityName string, entityID string, oldValue interface{}) error {
	m.Actions = append(m.Actions, action)
	return m.LogError
}

// mockAppointmentCache is an in-memory AppointmentCache with the same
// generation rule as the Redis one
type mockAppointmentCache struct {
	mu         sync.Mutex
	cached     []entity.Appointment
	found      bool
	generation int64

	GetError error

	GetCalls        int
	SetCalls        int
	StaleSetCalls   int
	InvalidateCalls int
}

var _ service.AppointmentCache = (*mockAppointmentCache)(nil)

func (m *mockAppointmentCache) GetAll(ctx context.Context) ([]entity.Appointment, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.GetError != nil {
		return nil, false, m.GetError
	}
	return m.cached, m.found, nil
}

func (m *mockAppointmentCache) Generation(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation, nil
}

func (m *mockAppointmentCache) SetAll(ctx context.Context, gen int64, appointments []entity.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	if gen != m.generation {
		m.StaleSetCalls++
		return nil
	}
	m.cached = appointments
	m.found = true
	return nil
}

func (m *mockAppointmentCache) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InvalidateCalls++
	m.generation++
	m.cached = nil
	m.found = false
	return nil
}

// mockEventPublisher records published events
type mockEventPublisher struct {
	Events       []service.AppointmentEvent
	PublishError error
}

var _ service.EventPublisher = (*mockEventPublisher)(nil)

func (m *mockEventPublisher) PublishAppointmentEvent(ctx context.Context, evt service.AppointmentEvent) error {
	m.Events = append(m.Events, evt)
	return m.PublishError
}

// mockRoomLocker counts Lock calls per room
type mockRoomLocker struct {
	mu    sync.Mutex
	Locks map[int64]int
}

var _ service.RoomLocker = (*mockRoomLocker)(nil)

func (m *mockRoomLocker) Lock(roomID int64) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Locks == nil {
		m.Locks = make(map[int64]int)
	}
	m.Locks[roomID]++
	return func() {}
}

func assertActions(t *testing.T, audit *mockAuditService, want ...string) {
	t.Helper()
	if len(audit.Actions) != len(want) {
		t.Fatalf("expected audit actions %v, got %v", want, audit.Actions)
	}
	for i := range want {
		if audit.Actions[i] != want[i] {
			t.Errorf("audit action %d: expected %q, got %q", i, want[i], audit.Actions[i])
		}
	}
}
