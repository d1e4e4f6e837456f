package reservations

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/hotelops-backend/internal/repo"
	"github.com/angelmondragon/hotelops-backend/pkg/db/models"
	"github.com/angelmondragon/hotelops-backend/pkg/enums"
	"github.com/angelmondragon/hotelops-backend/pkg/pagination"
)

// Repository persists reservations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, reservation *models.Reservation) error
	FindByID(ctx context.Context, id uint) (*models.Reservation, error)
	// Close moves an active reservation to a terminal status and reports
	// whether the row was still active.
	Close(ctx context.Context, id uint, status enums.ReservationStatus, reason *string) (bool, error)
	ListByGuest(ctx context.Context, guestID uint, params pagination.Params, cursor *pagination.Cursor) ([]models.Reservation, error)
	ListActive(ctx context.Context) ([]models.Reservation, error)
	ListActiveForRoom(ctx context.Context, roomID uint) ([]models.Reservation, error)
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

func (r *repository) Create(ctx context.Context, reservation *models.Reservation) error {
	return r.DB(ctx).Create(reservation).Error
}

func (r *repository) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.DB(ctx).Where("id = ?", id).First(&reservation).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) Close(ctx context.Context, id uint, status enums.ReservationStatus, reason *string) (bool, error) {
	updates := map[string]any{"status": status}
	if reason != nil {
		updates["reason"] = *reason
	}
	res := r.DB(ctx).Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, enums.ReservationActive).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ListByGuest(ctx context.Context, guestID uint, params pagination.Params, cursor *pagination.Cursor) ([]models.Reservation, error) {
	query := r.DB(ctx).Where("guest_id = ?", guestID)
	if cursor != nil {
		query = query.Where("id < ?", cursor.ID)
	}
	var rows []models.Reservation
	err := query.Order("id DESC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&rows).Error
	return rows, err
}

func (r *repository) ListActive(ctx context.Context) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.DB(ctx).
		Where("status = ?", enums.ReservationActive).
		Order("room_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListActiveForRoom(ctx context.Context, roomID uint) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.DB(ctx).
		Where("room_id = ? AND status = ?", roomID, enums.ReservationActive).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}
