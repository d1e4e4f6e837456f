package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/hotelops-backend/pkg/enums"
)

// StockMovement is an append-only ledger row.
type StockMovement struct {
	ID              uint                    `gorm:"column:id;primaryKey;autoIncrement"`
	ItemID          uint                    `gorm:"column:item_id;not null;index"`
	Kind            enums.StockMovementKind `gorm:"column:kind;type:varchar(16);not null"`
	Quantity        int                     `gorm:"column:quantity;not null"`
	UnitValueAtTime decimal.Decimal         `gorm:"column:unit_value_at_time;type:numeric(12,2);not null"`
	TotalValue      decimal.Decimal         `gorm:"column:total_value;type:numeric(12,2);not null"`
	QuantityAfter   int                     `gorm:"column:quantity_after;not null"`
	Note            string                  `gorm:"column:note"`
	TaskID          *uint                   `gorm:"column:task_id"`
	ReservationID   *uint                   `gorm:"column:reservation_id"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
}
