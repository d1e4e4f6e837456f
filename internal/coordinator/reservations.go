package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/hotelops-backend/internal/inventory"
	"github.com/angelmondragon/hotelops-backend/internal/reservations"
	"github.com/angelmondragon/hotelops-backend/internal/rooms"
	"github.com/angelmondragon/hotelops-backend/pkg/db/models"
	"github.com/angelmondragon/hotelops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hotelops-backend/pkg/errors"
)

type CheckInInput struct {
	GuestID      uint
	RoomNumber   string
	CheckInDate  time.Time
	CheckOutDate time.Time
	NightlyRate  decimal.Decimal
	Operator     string
}

type ReservationInput struct {
	ReservationID uint
	Operator      string
}

type CancelInput struct {
	ReservationID uint
	Reason        string
	Operator      string
}

type RescheduleInput struct {
	ReservationID uint
	CheckInDate   time.Time
	CheckOutDate  time.Time
	Reason        string
	Operator      string
}

// RescheduleResult holds the superseded row and its replacement.
type RescheduleResult struct {
	Previous *models.Reservation
	Current  *models.Reservation
}

type ChargeInput struct {
	ReservationID uint
	ItemID        uint
	Quantity      int
	Operator      string
}

// CheckIn creates an active reservation on a free room and occupies it.
func (c *Coordinator) CheckIn(ctx context.Context, input CheckInInput) (*models.Reservation, error) {
	stay := reservations.Stay{
		CheckInDate:  input.CheckInDate,
		CheckOutDate: input.CheckOutDate,
		NightlyRate:  input.NightlyRate,
	}
	if err := reservations.ValidateStay(stay, true); err != nil {
		return nil, c.reject(ctx, opCheckIn, err)
	}
	if input.GuestID == 0 {
		return nil, c.reject(ctx, opCheckIn, pkgerrors.New(pkgerrors.CodeValidation, "guest id required"))
	}
	if _, _, err := rooms.ParseNumber(input.RoomNumber); err != nil {
		return nil, c.reject(ctx, opCheckIn, err)
	}

	var created *models.Reservation
	ctx = c.logg.WithRoom(ctx, input.RoomNumber)
	err := c.transact(ctx, opCheckIn, func(tx *gorm.DB) error {
		guest, err := c.guests.Load(ctx, tx, input.GuestID)
		if err != nil {
			return err
		}
		room, err := c.rooms.Lock(ctx, tx, input.RoomNumber)
		if err != nil {
			return err
		}
		reservation, err := c.reservations.CheckIn(ctx, tx, reservations.CheckInInput{
			Guest: guest,
			Room:  room,
			Stay:  stay,
		})
		if err != nil {
			return err
		}
		if err := c.verify(ctx, tx, room); err != nil {
			return err
		}
		created = reservation
		return c.emit(ctx, tx, input.Operator, reservationEvent(enums.EventReservationCheckedIn, reservation, room))
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CheckOut finalizes an active reservation and frees its room.
func (c *Coordinator) CheckOut(ctx context.Context, input ReservationInput) (*models.Reservation, error) {
	var finalized *models.Reservation
	err := c.transact(ctx, opCheckOut, func(tx *gorm.DB) error {
		reservation, room, err := c.lockReservation(ctx, tx, input.ReservationID)
		if err != nil {
			return err
		}
		if err := c.reservations.CheckOut(ctx, tx, reservation, room); err != nil {
			return err
		}
		if err := c.verify(ctx, tx, room); err != nil {
			return err
		}
		finalized = reservation
		return c.emit(ctx, tx, input.Operator, reservationEvent(enums.EventReservationCheckedOut, reservation, room))
	})
	if err != nil {
		return nil, err
	}
	return finalized, nil
}

// CancelReservation cancels an active reservation with a reason and frees
// its room.
func (c *Coordinator) CancelReservation(ctx context.Context, input CancelInput) (*models.Reservation, error) {
	if _, err := reservations.NormalizeReason(input.Reason); err != nil {
		return nil, c.reject(ctx, opCancelReservation, err)
	}
	var cancelled *models.Reservation
	err := c.transact(ctx, opCancelReservation, func(tx *gorm.DB) error {
		reservation, room, err := c.lockReservation(ctx, tx, input.ReservationID)
		if err != nil {
			return err
		}
		if err := c.reservations.Cancel(ctx, tx, reservation, room, input.Reason); err != nil {
			return err
		}
		if err := c.verify(ctx, tx, room); err != nil {
			return err
		}
		cancelled = reservation
		return c.emit(ctx, tx, input.Operator, reservationEvent(enums.EventReservationCancelled, reservation, room))
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// RescheduleReservation supersedes an active reservation with new dates on
// the same room and rate. The room stays occupied.
func (c *Coordinator) RescheduleReservation(ctx context.Context, input RescheduleInput) (*RescheduleResult, error) {
	dates := reservations.Stay{CheckInDate: input.CheckInDate, CheckOutDate: input.CheckOutDate}
	if _, err := reservations.NormalizeReason(input.Reason); err != nil {
		return nil, c.reject(ctx, opReschedule, err)
	}
	if err := reservations.ValidateStay(dates, false); err != nil {
		return nil, c.reject(ctx, opReschedule, err)
	}
	var result RescheduleResult
	err := c.transact(ctx, opReschedule, func(tx *gorm.DB) error {
		reservation, room, err := c.lockReservation(ctx, tx, input.ReservationID)
		if err != nil {
			return err
		}
		if room.Status.Family() != enums.FamilyOccupancy {
			return pkgerrors.New(pkgerrors.CodeConflict, "room is not occupied").
				WithDetails(map[string]any{"room": room.Number, "status": room.Status})
		}
		next, err := c.reservations.Reschedule(ctx, tx, reservation, dates, input.Reason)
		if err != nil {
			return err
		}
		if err := c.verify(ctx, tx, room); err != nil {
			return err
		}
		result = RescheduleResult{Previous: reservation, Current: next}
		return c.emit(ctx, tx, input.Operator, reservationEvent(enums.EventReservationRescheduled, next, room))
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ChargeToRoom sells an item to the guest of an active reservation. The
// debit carries the reservation reference.
func (c *Coordinator) ChargeToRoom(ctx context.Context, input ChargeInput) (*inventory.MovementResult, error) {
	if input.Quantity <= 0 {
		return nil, c.reject(ctx, opChargeToRoom, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive"))
	}
	if input.ItemID == 0 {
		return nil, c.reject(ctx, opChargeToRoom, pkgerrors.New(pkgerrors.CodeValidation, "item id required"))
	}
	var charged *inventory.MovementResult
	err := c.transact(ctx, opChargeToRoom, func(tx *gorm.DB) error {
		reservation, room, err := c.lockReservation(ctx, tx, input.ReservationID)
		if err != nil {
			return err
		}
		if reservation.Status != enums.ReservationActive {
			return pkgerrors.New(pkgerrors.CodeConflict, "reservation is not active").
				WithDetails(map[string]any{"reservation_id": reservation.ID, "status": reservation.Status})
		}
		reservationID := reservation.ID
		res, err := c.inventory.DebitTx(ctx, tx, inventory.DebitInput{
			ItemID:        input.ItemID,
			Quantity:      input.Quantity,
			Note:          fmt.Sprintf("Sold to room %s (reservation %d)", room.Number, reservation.ID),
			ReservationID: &reservationID,
		})
		if err != nil {
			return err
		}
		if err := c.verify(ctx, tx, room); err != nil {
			return err
		}
		charged = res
		return c.emit(ctx, tx, input.Operator, roomChargeEvent(reservation, res))
	})
	if err != nil {
		return nil, err
	}
	c.countLowStock([]inventory.MovementResult{*charged})
	return charged, nil
}

// lockReservation locks the room of a reservation and re-reads the
// reservation under that lock.
func (c *Coordinator) lockReservation(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, *models.Room, error) {
	reservation, err := c.reservations.Load(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	room, err := c.rooms.LockByID(ctx, tx, reservation.RoomID)
	if err != nil {
		return nil, nil, err
	}
	reservation, err = c.reservations.Load(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	return reservation, room, nil
}

// reject records an operation that failed validation before any
// transaction was opened.
func (c *Coordinator) reject(ctx context.Context, op string, err error) error {
	return c.observe(ctx, op, func(context.Context) error { return err })
}
