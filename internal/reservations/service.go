package reservations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/hotelops-backend/internal/repo"
	"github.com/angelmondragon/hotelops-backend/pkg/db"
	"github.com/angelmondragon/hotelops-backend/pkg/db/models"
	"github.com/angelmondragon/hotelops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hotelops-backend/pkg/errors"
	"github.com/angelmondragon/hotelops-backend/pkg/pagination"
)

// ActiveRoomIndex is the partial unique index allowing one active
// reservation per room.
const ActiveRoomIndex = "uq_reservations_active_room"

type roomTransitioner interface {
	Transition(ctx context.Context, tx *gorm.DB, room *models.Room, status enums.RoomStatus) error
}

// Stay is the requested date range and price of a reservation.
type Stay struct {
	CheckInDate  time.Time
	CheckOutDate time.Time
	NightlyRate  decimal.Decimal
}

// CheckInInput carries a guest and a room already locked by the caller.
type CheckInInput struct {
	Guest *models.Guest
	Room  *models.Room
	Stay  Stay
}

// ListResult is one page of a guest's reservations.
type ListResult struct {
	Reservations []models.Reservation
	NextCursor   string
}

// Service is the reservation manager. Mutating steps run inside a
// transaction owned by the caller, who must hold the room row lock.
type Service interface {
	CheckIn(ctx context.Context, tx *gorm.DB, input CheckInInput) (*models.Reservation, error)
	CheckOut(ctx context.Context, tx *gorm.DB, reservation *models.Reservation, room *models.Room) error
	Cancel(ctx context.Context, tx *gorm.DB, reservation *models.Reservation, room *models.Room, reason string) error
	Reschedule(ctx context.Context, tx *gorm.DB, reservation *models.Reservation, dates Stay, reason string) (*models.Reservation, error)

	Load(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error)
	ActiveForRoom(ctx context.Context, tx *gorm.DB, roomID uint) ([]models.Reservation, error)

	Get(ctx context.Context, id uint) (*models.Reservation, error)
	ListByGuest(ctx context.Context, guestID uint, params pagination.Params) (*ListResult, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]models.Reservation, error)
}

type service struct {
	repo  Repository
	rooms roomTransitioner
}

func NewService(repo Repository, rooms roomTransitioner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reservations repository required")
	}
	if rooms == nil {
		return nil, fmt.Errorf("room transitioner required")
	}
	return &service{repo: repo, rooms: rooms}, nil
}

// ValidateStay checks the dates and rate of a check-in. Inverted or equal
// dates are accepted and billed as one night.
func ValidateStay(stay Stay, requireRate bool) error {
	if stay.CheckInDate.IsZero() || stay.CheckOutDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "check-in and check-out dates required")
	}
	if requireRate && !stay.NightlyRate.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "nightly rate must be positive").
			WithDetails(map[string]any{"nightly_rate": stay.NightlyRate.String()})
	}
	return nil
}

// NormalizeReason trims reason and rejects it when empty.
func NormalizeReason(reason string) (string, error) {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}
	return trimmed, nil
}

func (s *service) CheckIn(ctx context.Context, tx *gorm.DB, input CheckInInput) (*models.Reservation, error) {
	if input.Guest == nil || input.Room == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "guest and room required")
	}
	if err := ValidateStay(input.Stay, true); err != nil {
		return nil, err
	}
	room := input.Room
	if room.Status != enums.RoomFree {
		return nil, roomUnavailable(room)
	}

	nights := Nights(input.Stay.CheckInDate, input.Stay.CheckOutDate)
	rate := input.Stay.NightlyRate.Round(2)
	reservation := &models.Reservation{
		GuestID:       input.Guest.ID,
		GuestName:     input.Guest.Name,
		GuestDocument: input.Guest.Document,
		RoomID:        room.ID,
		RoomNumber:    room.Number,
		CheckInDate:   dateOnly(input.Stay.CheckInDate),
		CheckOutDate:  dateOnly(input.Stay.CheckOutDate),
		Nights:        nights,
		NightlyRate:   rate,
		Total:         Total(nights, rate),
		Status:        enums.ReservationActive,
	}
	if err := s.repo.WithTx(tx).Create(ctx, reservation); err != nil {
		if db.IsUniqueViolation(err, ActiveRoomIndex) {
			return nil, roomUnavailable(room)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "create reservation")
	}
	if err := s.rooms.Transition(ctx, tx, room, enums.RoomOccupied); err != nil {
		return nil, err
	}
	return reservation, nil
}

func (s *service) CheckOut(ctx context.Context, tx *gorm.DB, reservation *models.Reservation, room *models.Room) error {
	if err := requireOccupied(reservation, room); err != nil {
		return err
	}
	if err := s.close(ctx, tx, reservation, enums.ReservationFinalized, nil); err != nil {
		return err
	}
	return s.rooms.Transition(ctx, tx, room, enums.RoomFree)
}

func (s *service) Cancel(ctx context.Context, tx *gorm.DB, reservation *models.Reservation, room *models.Room, reason string) error {
	trimmed, err := NormalizeReason(reason)
	if err != nil {
		return err
	}
	if err := requireOccupied(reservation, room); err != nil {
		return err
	}
	if err := s.close(ctx, tx, reservation, enums.ReservationCancelled, &trimmed); err != nil {
		return err
	}
	return s.rooms.Transition(ctx, tx, room, enums.RoomFree)
}

// Reschedule supersedes reservation with a new active row on the same room
// and rate. The room keeps its status.
func (s *service) Reschedule(ctx context.Context, tx *gorm.DB, reservation *models.Reservation, dates Stay, reason string) (*models.Reservation, error) {
	trimmed, err := NormalizeReason(reason)
	if err != nil {
		return nil, err
	}
	if err := ValidateStay(dates, false); err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reservation required")
	}
	if reservation.Status != enums.ReservationActive {
		return nil, notActive(reservation)
	}
	if err := s.close(ctx, tx, reservation, enums.ReservationRescheduled, &trimmed); err != nil {
		return nil, err
	}

	nights := Nights(dates.CheckInDate, dates.CheckOutDate)
	previousID := reservation.ID
	next := &models.Reservation{
		GuestID:               reservation.GuestID,
		GuestName:             reservation.GuestName,
		GuestDocument:         reservation.GuestDocument,
		RoomID:                reservation.RoomID,
		RoomNumber:            reservation.RoomNumber,
		CheckInDate:           dateOnly(dates.CheckInDate),
		CheckOutDate:          dateOnly(dates.CheckOutDate),
		Nights:                nights,
		NightlyRate:           reservation.NightlyRate,
		Total:                 Total(nights, reservation.NightlyRate),
		Status:                enums.ReservationActive,
		PreviousReservationID: &previousID,
	}
	if err := s.repo.WithTx(tx).Create(ctx, next); err != nil {
		if db.IsUniqueViolation(err, ActiveRoomIndex) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "room already holds another active reservation")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "create rescheduled reservation")
	}
	return next, nil
}

func (s *service) close(ctx context.Context, tx *gorm.DB, reservation *models.Reservation, status enums.ReservationStatus, reason *string) error {
	ok, err := s.repo.WithTx(tx).Close(ctx, reservation.ID, status, reason)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "update reservation status")
	}
	if !ok {
		return notActive(reservation)
	}
	reservation.Status = status
	reservation.Reason = reason
	return nil
}

func (s *service) Load(ctx context.Context, tx *gorm.DB, id uint) (*models.Reservation, error) {
	return s.load(ctx, s.repo.WithTx(tx), id)
}

func (s *service) Get(ctx context.Context, id uint) (*models.Reservation, error) {
	return s.load(ctx, s.repo, id)
}

func (s *service) load(ctx context.Context, r Repository, id uint) (*models.Reservation, error) {
	if id == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}
	reservation, err := r.FindByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found").
				WithDetails(map[string]any{"reservation_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load reservation")
	}
	return reservation, nil
}

func (s *service) ActiveForRoom(ctx context.Context, tx *gorm.DB, roomID uint) ([]models.Reservation, error) {
	rows, err := s.repo.WithTx(tx).ListActiveForRoom(ctx, roomID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list room reservations")
	}
	return rows, nil
}

func (s *service) ListByGuest(ctx context.Context, guestID uint, params pagination.Params) (*ListResult, error) {
	if guestID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest id required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListByGuest(ctx, guestID, params, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list guest reservations")
	}
	page, next := pagination.Page(rows, params.Limit, func(r models.Reservation) uint { return r.ID })
	return &ListResult{Reservations: page, NextCursor: next}, nil
}

func (s *service) ListActive(ctx context.Context, tx *gorm.DB) ([]models.Reservation, error) {
	rows, err := s.repo.WithTx(tx).ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list active reservations")
	}
	return rows, nil
}

func requireOccupied(reservation *models.Reservation, room *models.Room) error {
	if reservation == nil || room == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "reservation and room required")
	}
	if reservation.Status != enums.ReservationActive {
		return notActive(reservation)
	}
	if reservation.RoomID != room.ID {
		return pkgerrors.New(pkgerrors.CodeInternal, "reservation does not reference the locked room")
	}
	if room.Status.Family() != enums.FamilyOccupancy {
		return pkgerrors.New(pkgerrors.CodeConflict, "room is not occupied").
			WithDetails(map[string]any{"room": room.Number, "status": room.Status})
	}
	return nil
}

func notActive(reservation *models.Reservation) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "reservation is not active").
		WithDetails(map[string]any{"reservation_id": reservation.ID, "status": reservation.Status})
}

func roomUnavailable(room *models.Room) error {
	return pkgerrors.New(pkgerrors.CodeRoomUnavailable, "room is not free").
		WithDetails(map[string]any{"room": room.Number, "status": room.Status})
}
