package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaskConsumption records one consumed line of a completed task.
type TaskConsumption struct {
	ID         uint            `gorm:"column:id;primaryKey;autoIncrement"`
	TaskID     uint            `gorm:"column:task_id;not null;index"`
	ItemID     uint            `gorm:"column:item_id;not null"`
	ItemName   string          `gorm:"column:item_name;not null"`
	Quantity   int             `gorm:"column:quantity;not null"`
	UnitValue  decimal.Decimal `gorm:"column:unit_value;type:numeric(12,2);not null"`
	TotalValue decimal.Decimal `gorm:"column:total_value;type:numeric(12,2);not null"`
	MovementID uint            `gorm:"column:movement_id;not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
