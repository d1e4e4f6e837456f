package models

import (
	"time"

	"github.com/angelmondragon/hotelops-backend/pkg/enums"
)

// Room is a physical room identified by its "<floor>-<number>" label.
type Room struct {
	ID        uint             `gorm:"column:id;primaryKey;autoIncrement"`
	Number    string           `gorm:"column:number;type:varchar(16);uniqueIndex;not null"`
	Floor     int              `gorm:"column:floor;not null"`
	Status    enums.RoomStatus `gorm:"column:status;type:varchar(32);not null;default:free"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
