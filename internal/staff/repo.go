package staff

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/hotelops-backend/internal/repo"
	"github.com/angelmondragon/hotelops-backend/pkg/db/models"
	"github.com/angelmondragon/hotelops-backend/pkg/enums"
	"github.com/angelmondragon/hotelops-backend/pkg/pagination"
)

// Repository persists staff members.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, member *models.Staff) error
	FindByID(ctx context.Context, id uint) (*models.Staff, error)
	List(ctx context.Context, status enums.StaffStatus, params pagination.Params, cursor *pagination.Cursor) ([]models.Staff, error)
	UpdateStatus(ctx context.Context, id uint, status enums.StaffStatus) (bool, error)
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

func (r *repository) Create(ctx context.Context, member *models.Staff) error {
	return r.DB(ctx).Create(member).Error
}

func (r *repository) FindByID(ctx context.Context, id uint) (*models.Staff, error) {
	var member models.Staff
	if err := r.DB(ctx).Where("id = ?", id).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) List(ctx context.Context, status enums.StaffStatus, params pagination.Params, cursor *pagination.Cursor) ([]models.Staff, error) {
	db := r.DB(ctx).Model(&models.Staff{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if cursor != nil {
		db = db.Where("id < ?", cursor.ID)
	}
	var rows []models.Staff
	err := db.Order("id DESC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error
	return rows, err
}

// UpdateStatus reports whether a row with id existed.
func (r *repository) UpdateStatus(ctx context.Context, id uint, status enums.StaffStatus) (bool, error) {
	res := r.DB(ctx).Model(&models.Staff{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
