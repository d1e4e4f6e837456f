package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/hotelops-backend/pkg/enums"
)

// InventoryItem is a consumable SKU. QuantityOnHand always equals the fold of
// its stock movements.
type InventoryItem struct {
	ID             uint                      `gorm:"column:id;primaryKey;autoIncrement"`
	Name           string                    `gorm:"column:name;not null"`
	Category       string                    `gorm:"column:category;index"`
	Unit           string                    `gorm:"column:unit"`
	QuantityOnHand int                       `gorm:"column:quantity_on_hand;not null;default:0;check:quantity_on_hand >= 0"`
	UnitValue      decimal.Decimal           `gorm:"column:unit_value;type:numeric(12,2);not null"`
	MinThreshold   int                       `gorm:"column:min_threshold;not null;default:0"`
	MaxThreshold   int                       `gorm:"column:max_threshold;not null;default:0"`
	Status         enums.InventoryItemStatus `gorm:"column:status;type:varchar(16);not null;default:active"`
	Notes          string                    `gorm:"column:notes"`
	CreatedAt      time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

// BelowMinimum reports whether the item sits at or below its restock threshold.
func (i InventoryItem) BelowMinimum() bool {
	return i.MinThreshold > 0 && i.QuantityOnHand <= i.MinThreshold
}
