package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/pkg/response"

	"github.com/sirupsen/logrus"
)

type mockDoctorUsecase struct {
	CreateFn    func(ctx context.Context, req *dto.CreatePersonRequest) (*dto.DoctorResponse, error)
	GetFn       func(ctx context.Context, id int64) (*dto.DoctorResponse, error)
	GetAllFn    func(ctx context.Context) (*dto.DoctorListResponse, error)
	DeleteFn    func(ctx context.Context, id int64) error
	DeleteAllFn func(ctx context.Context) error
}

func (m *mockDoctorUsecase) CreateDoctor(ctx context.Context, req *dto.CreatePersonRequest) (*dto.DoctorResponse, error) {
	return m.CreateFn(ctx, req)
}

func (m *mockDoctorUsecase) GetDoctor(ctx context.Context, id int64) (*dto.DoctorResponse, error) {
	return m.GetFn(ctx, id)
}

func (m *mockDoctorUsecase) GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	return m.GetAllFn(ctx)
}

func (m *mockDoctorUsecase) DeleteDoctor(ctx context.Context, id int64) error {
	return m.DeleteFn(ctx, id)
}

func (m *mockDoctorUsecase) DeleteAllDoctors(ctx context.Context) error {
	return m.DeleteAllFn(ctx)
}

type mockRoomUsecase struct {
	CreateFn    func(ctx context.Context, req *dto.CreateRoomRequest) (*dto.RoomResponse, error)
	GetFn       func(ctx context.Context, name string) (*dto.RoomResponse, error)
	GetAllFn    func(ctx context.Context) (*dto.RoomListResponse, error)
	DeleteFn    func(ctx context.Context, name string) error
	DeleteAllFn func(ctx context.Context) error
}

func (m *mockRoomUsecase) CreateRoom(ctx context.Context, req *dto.CreateRoomRequest) (*dto.RoomResponse, error) {
	return m.CreateFn(ctx, req)
}

func (m *mockRoomUsecase) GetRoom(ctx context.Context, name string) (*dto.RoomResponse, error) {
	return m.GetFn(ctx, name)
}

func (m *mockRoomUsecase) GetAllRooms(ctx context.Context) (*dto.RoomListResponse, error) {
	return m.GetAllFn(ctx)
}

func (m *mockRoomUsecase) DeleteRoom(ctx context.Context, name string) error {
	return m.DeleteFn(ctx, name)
}

func (m *mockRoomUsecase) DeleteAllRooms(ctx context.Context) error {
	return m.DeleteAllFn(ctx)
}

type mockAppointmentUsecase struct {
	CreateFn    func(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentListResponse, error)
	GetFn       func(ctx context.Context, id int64) (*dto.AppointmentResponse, error)
	GetAllFn    func(ctx context.Context) (*dto.AppointmentListResponse, error)
	DeleteFn    func(ctx context.Context, id int64) error
	DeleteAllFn func(ctx context.Context) error

	CreateCalls int
}

func (m *mockAppointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentListResponse, error) {
	m.CreateCalls++
	return m.CreateFn(ctx, req)
}

func (m *mockAppointmentUsecase) GetAppointment(ctx context.Context, id int64) (*dto.AppointmentResponse, error) {
	return m.GetFn(ctx, id)
}

func (m *mockAppointmentUsecase) GetAllAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	return m.GetAllFn(ctx)
}

func (m *mockAppointmentUsecase) DeleteAppointment(ctx context.Context, id int64) error {
	return m.DeleteFn(ctx, id)
}

func (m *mockAppointmentUsecase) DeleteAllAppointments(ctx context.Context) error {
	return m.DeleteAllFn(ctx)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type mockAuditLogUsecase struct {
	GetFn    func(ctx context.Context, id int64) (*dto.AuditLogResponse, error)
	GetAllFn func(ctx context.Context, filter *dto.AuditLogFilterRequest) (*dto.AuditLogListResponse, error)
}

func (m *mockAuditLogUsecase) GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error) {
	return m.GetFn(ctx, id)
}

func (m *mockAuditLogUsecase) GetAllAuditLogs(ctx context.Context, filter *dto.AuditLogFilterRequest) (*dto.AuditLogListResponse, error) {
	return m.GetAllFn(ctx, filter)
}
