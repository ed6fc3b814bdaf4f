package dto

import "time"

// Request DTOs

type CreateRoomRequest struct {
	RoomName string `json:"room_name" validate:"required,max=100"`
}

// Response DTOs

type RoomResponse struct {
	ID        int64     `json:"id"`
	RoomName  string    `json:"room_name"`
	CreatedAt time.Time `json:"created_at"`
}

type RoomListResponse struct {
	Rooms []RoomResponse `json:"rooms"`
	Total int            `json:"total"`
}
