package guests

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/hotelops-backend/internal/repo"
	"github.com/angelmondragon/hotelops-backend/pkg/db/models"
	"github.com/angelmondragon/hotelops-backend/pkg/pagination"
)

// Repository persists guest records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, guest *models.Guest) error
	FindByID(ctx context.Context, id uint) (*models.Guest, error)
	FindByDocument(ctx context.Context, document string) (*models.Guest, error)
	List(ctx context.Context, query string, params pagination.Params, cursor *pagination.Cursor) ([]models.Guest, error)
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

func (r *repository) Create(ctx context.Context, guest *models.Guest) error {
	return r.DB(ctx).Create(guest).Error
}

func (r *repository) FindByID(ctx context.Context, id uint) (*models.Guest, error) {
	var guest models.Guest
	if err := r.DB(ctx).Where("id = ?", id).First(&guest).Error; err != nil {
		return nil, err
	}
	return &guest, nil
}

func (r *repository) FindByDocument(ctx context.Context, document string) (*models.Guest, error) {
	var guest models.Guest
	if err := r.DB(ctx).Where("document = ?", document).First(&guest).Error; err != nil {
		return nil, err
	}
	return &guest, nil
}

// List returns guests newest first, optionally filtered by a name or document
// fragment.
func (r *repository) List(ctx context.Context, query string, params pagination.Params, cursor *pagination.Cursor) ([]models.Guest, error) {
	db := r.DB(ctx).Model(&models.Guest{})
	if term := strings.TrimSpace(query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		db = db.Where("LOWER(name) LIKE ? OR document LIKE ?", like, like)
	}
	if cursor != nil {
		db = db.Where("id < ?", cursor.ID)
	}
	var guests []models.Guest
	err := db.Order("id DESC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&guests).Error
	return guests, err
}
