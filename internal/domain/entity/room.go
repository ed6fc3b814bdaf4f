package entity

import "time"

// Room is looked up and deleted by its unique name
type Room struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomName  string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"room_name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Room) TableName() string {
	return "rooms"
}
