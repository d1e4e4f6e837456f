package models

import (
	"time"

	"github.com/angelmondragon/hotelops-backend/pkg/enums"
)

// Staff is a hotel employee who can be assigned housekeeping tasks.
type Staff struct {
	ID        uint              `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string            `gorm:"column:name;not null"`
	Role      string            `gorm:"column:role;not null"`
	Status    enums.StaffStatus `gorm:"column:status;type:varchar(16);not null;index"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Staff) TableName() string {
	return "staff"
}
