package usecase

import (
	"context"
	"errors"

	"hospital-scheduler/internal/converter"
	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/domain/entity"
	"hospital-scheduler/internal/domain/repository"
	"hospital-scheduler/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomNameExists = errors.New("room name already exists")
	ErrRoomInUse      = errors.New("room is referenced by an appointment")
)

// RoomUsecase addresses rooms by their unique name
type RoomUsecase interface {
	CreateRoom(ctx context.Context, req *dto.CreateRoomRequest) (*dto.RoomResponse, error)
	GetRoom(ctx context.Context, roomName string) (*dto.RoomResponse, error)
	GetAllRooms(ctx context.Context) (*dto.RoomListResponse, error)
	DeleteRoom(ctx context.Context, roomName string) error
	DeleteAllRooms(ctx context.Context) error
}

type roomUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	roomRepo     repository.RoomRepository
	auditService service.AuditService
}

func NewRoomUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	roomRepo repository.RoomRepository,
	auditService service.AuditService,
) RoomUsecase {
	return &roomUsecase{
		db:           db,
		log:          log,
		roomRepo:     roomRepo,
		auditService: auditService,
	}
}

func (u *roomUsecase) CreateRoom(ctx context.Context, req *dto.CreateRoomRequest) (*dto.RoomResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	room := &entity.Room{RoomName: req.RoomName}
	if err := u.roomRepo.Create(tx, room); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRoomNameExists
		}
		u.log.Warnf("Failed to create room: %+v", err)
		return nil, err
	}

	response := converter.RoomToResponse(room)
	if err := u.auditService.LogCreate(ctx, tx, entity.AuditActionRoomCreate, "room", room.RoomName, response); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Room created: id=%d, name=%s", room.ID, room.RoomName)
	return response, nil
}

func (u *roomUsecase) GetRoom(ctx context.Context, roomName string) (*dto.RoomResponse, error) {
	room, err := u.roomRepo.FindByName(u.db.WithContext(ctx), roomName)
	if err != nil {
		u.log.Warnf("Failed to find room %q: %+v", roomName, err)
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	return converter.RoomToResponse(room), nil
}

func (u *roomUsecase) GetAllRooms(ctx context.Context) (*dto.RoomListResponse, error) {
	rooms, err := u.roomRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to find all rooms: %+v", err)
		return nil, err
	}

	return &dto.RoomListResponse{
		Rooms: converter.RoomsToResponses(rooms),
		Total: len(rooms),
	}, nil
}

func (u *roomUsecase) DeleteRoom(ctx context.Context, roomName string) error {
	room, err := u.roomRepo.FindByName(u.db.WithContext(ctx), roomName)
	if err != nil {
		u.log.Warnf("Failed to find room %q: %+v", roomName, err)
		return err
	}
	if room == nil {
		return ErrRoomNotFound
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if _, err := u.roomRepo.DeleteByName(tx, roomName); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrRoomInUse
		}
		u.log.Warnf("Failed to delete room %q: %+v", roomName, err)
		return err
	}

	if err := u.auditService.LogDelete(ctx, tx, entity.AuditActionRoomDelete, "room", roomName, converter.RoomToResponse(room)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.log.Infof("Room deleted: name=%s", roomName)
	return nil
}

func (u *roomUsecase) DeleteAllRooms(ctx context.Context) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	deleted, err := u.roomRepo.DeleteAll(tx)
	if err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrRoomInUse
		}
		u.log.Warnf("Failed to delete all rooms: %+v", err)
		return err
	}

	if err := u.auditService.LogDelete(ctx, tx, entity.AuditActionRoomDeleteAll, "room", "", map[string]int64{"deleted": deleted}); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.log.Infof("All rooms deleted: count=%d", deleted)
	return nil
}
