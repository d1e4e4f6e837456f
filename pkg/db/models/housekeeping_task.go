package models

import (
	"time"

	"github.com/angelmondragon/hotelops-backend/pkg/enums"
)

// HousekeepingTask is a unit of housekeeping or maintenance work on a room.
type HousekeepingTask struct {
	ID               uint             `gorm:"column:id;primaryKey;autoIncrement"`
	RoomID           uint             `gorm:"column:room_id;not null;index"`
	RoomNumber       string           `gorm:"column:room_number;type:varchar(16);not null"`
	StaffID          *uint            `gorm:"column:staff_id;index"`
	Assignee         string           `gorm:"column:assignee;not null"`
	Type             enums.TaskType   `gorm:"column:task_type;type:varchar(32);not null"`
	Status           enums.TaskStatus `gorm:"column:status;type:varchar(32);not null;index"`
	EstimatedMinutes int              `gorm:"column:estimated_minutes;not null"`
	ActualMinutes    *int             `gorm:"column:actual_minutes"`
	Notes            string           `gorm:"column:notes"`
	OpenedAt         time.Time        `gorm:"column:opened_at;not null"`
	CompletedAt      *time.Time       `gorm:"column:completed_at"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`

	Consumptions []TaskConsumption `gorm:"foreignKey:TaskID"`
}

func (HousekeepingTask) TableName() string {
	return "housekeeping_tasks"
}
