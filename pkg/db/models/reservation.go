package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/hotelops-backend/pkg/enums"
)

// Reservation binds a guest to a room for a date range. Guest name and
// document are snapshotted at check-in.
type Reservation struct {
	ID                    uint                    `gorm:"column:id;primaryKey;autoIncrement"`
	GuestID               uint                    `gorm:"column:guest_id;not null;index"`
	GuestName             string                  `gorm:"column:guest_name;not null"`
	GuestDocument         string                  `gorm:"column:guest_document;not null"`
	RoomID                uint                    `gorm:"column:room_id;not null;index"`
	RoomNumber            string                  `gorm:"column:room_number;type:varchar(16);not null"`
	CheckInDate           time.Time               `gorm:"column:check_in_date;not null"`
	CheckOutDate          time.Time               `gorm:"column:check_out_date;not null"`
	Nights                int                     `gorm:"column:nights;not null"`
	NightlyRate           decimal.Decimal         `gorm:"column:nightly_rate;type:numeric(12,2);not null"`
	Total                 decimal.Decimal         `gorm:"column:total;type:numeric(12,2);not null"`
	Status                enums.ReservationStatus `gorm:"column:status;type:varchar(32);not null;index"`
	Reason                *string                 `gorm:"column:reason"`
	PreviousReservationID *uint                   `gorm:"column:previous_reservation_id"`
	CreatedAt             time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
