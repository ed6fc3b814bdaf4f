package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"hospital-scheduler/internal/delivery/dto"
	"hospital-scheduler/internal/usecase"
	"hospital-scheduler/pkg/response"
	"hospital-scheduler/pkg/validator"

	"github.com/gorilla/mux"
)

// RoomHandler addresses rooms by the {roomName} path variable
type RoomHandler struct {
	roomUsecase usecase.RoomUsecase
	validator   *validator.CustomValidator
}

func NewRoomHandler(roomUsecase usecase.RoomUsecase, validator *validator.CustomValidator) *RoomHandler {
	return &RoomHandler{
		roomUsecase: roomUsecase,
		validator:   validator,
	}
}

func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	room, err := h.roomUsecase.CreateRoom(r.Context(), &req)
	if err != nil {
		if errors.Is(err, usecase.ErrRoomNameExists) {
			response.Conflict(w, "Room name already exists")
			return
		}
		response.InternalServerError(w, "Failed to create room")
		return
	}

	response.Success(w, http.StatusCreated, "Room created successfully", room)
}

func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.roomUsecase.GetRoom(r.Context(), mux.Vars(r)["roomName"])
	if err != nil {
		if errors.Is(err, usecase.ErrRoomNotFound) {
			response.NotFound(w, "Room not found")
			return
		}
		response.InternalServerError(w, "Failed to get room")
		return
	}

	response.Success(w, http.StatusOK, "Room retrieved successfully", room)
}

func (h *RoomHandler) GetAllRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.roomUsecase.GetAllRooms(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get rooms")
		return
	}

	if rooms.Total == 0 {
		response.NoContent(w)
		return
	}

	response.Success(w, http.StatusOK, "Rooms retrieved successfully", rooms)
}

func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	err := h.roomUsecase.DeleteRoom(r.Context(), mux.Vars(r)["roomName"])
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrRoomNotFound):
			response.NotFound(w, "Room not found")
		case errors.Is(err, usecase.ErrRoomInUse):
			response.Conflict(w, "Room has appointments")
		default:
			response.InternalServerError(w, "Failed to delete room")
		}
		return
	}

	response.Success(w, http.StatusOK, "Room deleted successfully", nil)
}

func (h *RoomHandler) DeleteAllRooms(w http.ResponseWriter, r *http.Request) {
	if err := h.roomUsecase.DeleteAllRooms(r.Context()); err != nil {
		if errors.Is(err, usecase.ErrRoomInUse) {
			response.Conflict(w, "Rooms have appointments")
			return
		}
		response.InternalServerError(w, "Failed to delete rooms")
		return
	}

	response.Success(w, http.StatusOK, "Rooms deleted successfully", nil)
}
