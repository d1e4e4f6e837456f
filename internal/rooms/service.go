package rooms

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/hotelops-backend/internal/repo"
	"github.com/angelmondragon/hotelops-backend/pkg/db/models"
	"github.com/angelmondragon/hotelops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hotelops-backend/pkg/errors"
	"github.com/angelmondragon/hotelops-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the room registry.
type Service interface {
	Get(ctx context.Context, number string) (*models.Room, error)
	List(ctx context.Context, filter Filter) ([]models.Room, error)
	// ListTx is List read through tx. A nil tx reads from the pool.
	ListTx(ctx context.Context, tx *gorm.DB, filter Filter) ([]models.Room, error)
	// SetStatus applies a manual status change in its own transaction.
	SetStatus(ctx context.Context, number string, status enums.RoomStatus) (*models.Room, error)
	SeedGrid(ctx context.Context, floors, perFloor int) (int, error)

	// Lock loads the room by number with a row lock inside tx.
	Lock(ctx context.Context, tx *gorm.DB, number string) (*models.Room, error)
	// LockByID is Lock for callers that only hold the room id.
	LockByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Room, error)
	// Transition writes a new status for a locked room inside tx without
	// checking manual transition rules.
	Transition(ctx context.Context, tx *gorm.DB, room *models.Room, status enums.RoomStatus) error
	// ApplyStatus is SetStatus inside a caller-owned transaction. It also
	// returns the status the room held before the call.
	ApplyStatus(ctx context.Context, tx *gorm.DB, number string, status enums.RoomStatus) (*models.Room, enums.RoomStatus, error)
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService builds the room registry.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rooms repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, number string) (*models.Room, error) {
	canonical, _, err := ParseNumber(number)
	if err != nil {
		return nil, err
	}
	room, err := s.repo.FindByNumber(ctx, canonical)
	if err != nil {
		return nil, mapLoadError(err, canonical)
	}
	return room, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]models.Room, error) {
	return s.ListTx(ctx, nil, filter)
}

func (s *service) ListTx(ctx context.Context, tx *gorm.DB, filter Filter) ([]models.Room, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid room status filter")
	}
	if filter.Floor < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "floor must be positive")
	}
	rooms, err := s.repo.WithTx(tx).List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list rooms")
	}
	return rooms, nil
}

func (s *service) SetStatus(ctx context.Context, number string, status enums.RoomStatus) (*models.Room, error) {
	var updated *models.Room
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		room, _, err := s.ApplyStatus(ctx, tx, number, status)
		if err != nil {
			return err
		}
		updated = room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) ApplyStatus(ctx context.Context, tx *gorm.DB, number string, status enums.RoomStatus) (*models.Room, enums.RoomStatus, error) {
	if !status.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid room status").
			WithDetails(map[string]any{"status": status})
	}
	room, err := s.Lock(ctx, tx, number)
	if err != nil {
		return nil, "", err
	}
	previous := room.Status
	if err := CheckTransition(previous, status); err != nil {
		return nil, "", err
	}
	if previous == status {
		return room, previous, nil
	}
	if err := s.Transition(ctx, tx, room, status); err != nil {
		return nil, "", err
	}
	return room, previous, nil
}

func (s *service) SeedGrid(ctx context.Context, floors, perFloor int) (int, error) {
	if floors <= 0 || perFloor <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "floors and rooms per floor must be positive")
	}
	grid := make([]models.Room, 0, floors*perFloor)
	for floor := 1; floor <= floors; floor++ {
		for number := 1; number <= perFloor; number++ {
			grid = append(grid, models.Room{
				Number: FormatNumber(floor, number),
				Floor:  floor,
				Status: enums.RoomFree,
			})
		}
	}

	var created int
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		count, err := s.repo.WithTx(tx).CreateMissing(ctx, grid)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "seed rooms")
		}
		created = count
		return nil
	})
	if err != nil {
		return 0, err
	}
	if created > 0 {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"floors":    floors,
			"per_floor": perFloor,
			"created":   created,
		})
		s.logg.Info(logCtx, "room grid seeded")
	}
	return created, nil
}

func (s *service) Lock(ctx context.Context, tx *gorm.DB, number string) (*models.Room, error) {
	canonical, _, err := ParseNumber(number)
	if err != nil {
		return nil, err
	}
	room, err := s.repo.WithTx(tx).LockByNumber(ctx, canonical)
	if err != nil {
		return nil, mapLoadError(err, canonical)
	}
	return room, nil
}

func (s *service) LockByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Room, error) {
	room, err := s.repo.WithTx(tx).LockByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "room not found").
				WithDetails(map[string]any{"room_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load room")
	}
	return room, nil
}

func (s *service) Transition(ctx context.Context, tx *gorm.DB, room *models.Room, status enums.RoomStatus) error {
	if room == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "room required")
	}
	if err := s.repo.WithTx(tx).UpdateStatus(ctx, room.ID, status); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "update room status")
	}
	room.Status = status
	return nil
}

// CheckTransition enforces the manual status rules: a free room may take any
// status, an occupancy or task status may only return to free, reserved may
// advance to occupied, and repeating the current status is a no-op.
func CheckTransition(from, to enums.RoomStatus) error {
	if from == to {
		return nil
	}
	switch from.Family() {
	case enums.FamilyFree:
		return nil
	case enums.FamilyOccupancy:
		if to == enums.RoomFree {
			return nil
		}
		if from == enums.RoomReserved && to == enums.RoomOccupied {
			return nil
		}
	case enums.FamilyTask:
		if to == enums.RoomFree {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "room status transition not allowed").
		WithDetails(map[string]any{"from": from, "to": to})
}

func mapLoadError(err error, number string) error {
	if repo.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "room not found").
			WithDetails(map[string]any{"room": number})
	}
	return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load room")
}
