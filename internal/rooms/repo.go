package rooms

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/hotelops-backend/internal/repo"
	"github.com/angelmondragon/hotelops-backend/pkg/db/models"
	"github.com/angelmondragon/hotelops-backend/pkg/enums"
)

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Status enums.RoomStatus
	Floor  int
}

// Repository persists rooms.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByNumber(ctx context.Context, number string) (*models.Room, error)
	LockByNumber(ctx context.Context, number string) (*models.Room, error)
	LockByID(ctx context.Context, id uint) (*models.Room, error)
	List(ctx context.Context, filter Filter) ([]models.Room, error)
	UpdateStatus(ctx context.Context, id uint, status enums.RoomStatus) error
	CreateMissing(ctx context.Context, rooms []models.Room) (int, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a room repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Base.WithTx(tx)}
}

func (r *repository) FindByNumber(ctx context.Context, number string) (*models.Room, error) {
	var room models.Room
	if err := r.DB(ctx).Where("number = ?", number).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// LockByNumber loads the room with a row lock held until the surrounding
// transaction ends.
func (r *repository) LockByNumber(ctx context.Context, number string) (*models.Room, error) {
	var room models.Room
	if err := r.ForUpdate(ctx).Where("number = ?", number).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *repository) LockByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := r.ForUpdate(ctx).Where("id = ?", id).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *repository) List(ctx context.Context, filter Filter) ([]models.Room, error) {
	query := r.DB(ctx).Model(&models.Room{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Floor > 0 {
		query = query.Where("floor = ?", filter.Floor)
	}
	var rooms []models.Room
	err := query.Order("floor ASC").Order("id ASC").Find(&rooms).Error
	return rooms, err
}

func (r *repository) UpdateStatus(ctx context.Context, id uint, status enums.RoomStatus) error {
	return r.DB(ctx).Model(&models.Room{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// CreateMissing inserts the rooms whose number does not exist yet and returns
// how many were created.
func (r *repository) CreateMissing(ctx context.Context, rooms []models.Room) (int, error) {
	if len(rooms) == 0 {
		return 0, nil
	}
	numbers := make([]string, 0, len(rooms))
	for _, room := range rooms {
		numbers = append(numbers, room.Number)
	}
	var existing []string
	if err := r.DB(ctx).Model(&models.Room{}).
		Where("number IN ?", numbers).
		Pluck("number", &existing).Error; err != nil {
		return 0, err
	}
	seen := make(map[string]struct{}, len(existing))
	for _, number := range existing {
		seen[number] = struct{}{}
	}
	missing := make([]models.Room, 0, len(rooms))
	for _, room := range rooms {
		if _, ok := seen[room.Number]; ok {
			continue
		}
		missing = append(missing, room)
	}
	if len(missing) == 0 {
		return 0, nil
	}
	if err := r.DB(ctx).Create(&missing).Error; err != nil {
		return 0, err
	}
	return len(missing), nil
}
