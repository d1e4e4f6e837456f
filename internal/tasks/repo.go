package tasks

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/hotelops-backend/internal/repo"
	"github.com/angelmondragon/hotelops-backend/pkg/db/models"
	"github.com/angelmondragon/hotelops-backend/pkg/enums"
)

// Filter narrows task listings.
type Filter struct {
	Status enums.TaskStatus
	RoomID uint
}

// Repository persists housekeeping tasks and their consumptions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, task *models.HousekeepingTask) error
	FindByID(ctx context.Context, id uint) (*models.HousekeepingTask, error)
	LockByID(ctx context.Context, id uint) (*models.HousekeepingTask, error)
	List(ctx context.Context, filter Filter) ([]models.HousekeepingTask, error)
	// Complete marks a pending task completed and reports whether it was
	// still pending.
	Complete(ctx context.Context, id uint, actualMinutes int, notes string, completedAt time.Time) (bool, error)
	CreateConsumption(ctx context.Context, consumption *models.TaskConsumption) error
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Base.WithTx(tx)}
}

func (r *repository) Create(ctx context.Context, task *models.HousekeepingTask) error {
	return r.DB(ctx).Create(task).Error
}

func (r *repository) FindByID(ctx context.Context, id uint) (*models.HousekeepingTask, error) {
	var task models.HousekeepingTask
	err := r.DB(ctx).
		Preload("Consumptions", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ?", id).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *repository) LockByID(ctx context.Context, id uint) (*models.HousekeepingTask, error) {
	var task models.HousekeepingTask
	if err := r.ForUpdate(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *repository) List(ctx context.Context, filter Filter) ([]models.HousekeepingTask, error) {
	query := r.DB(ctx).Model(&models.HousekeepingTask{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RoomID != 0 {
		query = query.Where("room_id = ?", filter.RoomID)
	}
	var rows []models.HousekeepingTask
	err := query.Order("opened_at ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) Complete(ctx context.Context, id uint, actualMinutes int, notes string, completedAt time.Time) (bool, error) {
	res := r.DB(ctx).Model(&models.HousekeepingTask{}).
		Where("id = ? AND status = ?", id, enums.TaskPending).
		Updates(map[string]any{
			"status":         enums.TaskCompleted,
			"actual_minutes": actualMinutes,
			"notes":          notes,
			"completed_at":   completedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreateConsumption(ctx context.Context, consumption *models.TaskConsumption) error {
	return r.DB(ctx).Create(consumption).Error
}
