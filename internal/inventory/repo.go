package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/hotelops-backend/internal/repo"
	"github.com/angelmondragon/hotelops-backend/pkg/db/models"
	"github.com/angelmondragon/hotelops-backend/pkg/enums"
	"github.com/angelmondragon/hotelops-backend/pkg/pagination"
)

// Filter narrows catalog listings.
type Filter struct {
	Category     string
	Status       enums.InventoryItemStatus
	BelowMinimum bool
}

// Repository persists items and their movement ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateItem(ctx context.Context, item *models.InventoryItem) error
	CreateMovement(ctx context.Context, movement *models.StockMovement) error
	FindByID(ctx context.Context, id uint) (*models.InventoryItem, error)
	LockByID(ctx context.Context, id uint) (*models.InventoryItem, error)
	List(ctx context.Context, filter Filter) ([]models.InventoryItem, error)
	ListMovements(ctx context.Context, itemID uint, params pagination.Params, cursor *pagination.Cursor) ([]models.StockMovement, error)
	// Decrement subtracts qty only when enough stock remains and reports
	// whether the row was updated.
	Decrement(ctx context.Context, id uint, qty int) (bool, error)
	Increment(ctx context.Context, id uint, qty int, unitValue *decimal.Decimal) error
	UpdateStatus(ctx context.Context, id uint, status enums.InventoryItemStatus) error
	SumMovements(ctx context.Context, itemID uint) (int, error)
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

func (r *repository) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	return r.DB(ctx).Create(item).Error
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.DB(ctx).Create(movement).Error
}

func (r *repository) FindByID(ctx context.Context, id uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.DB(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) LockByID(ctx context.Context, id uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.ForUpdate(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) List(ctx context.Context, filter Filter) ([]models.InventoryItem, error) {
	query := r.DB(ctx).Model(&models.InventoryItem{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.BelowMinimum {
		query = query.Where("min_threshold > 0 AND quantity_on_hand <= min_threshold")
	}
	var items []models.InventoryItem
	err := query.Order("name ASC").Order("id ASC").Find(&items).Error
	return items, err
}

func (r *repository) ListMovements(ctx context.Context, itemID uint, params pagination.Params, cursor *pagination.Cursor) ([]models.StockMovement, error) {
	query := r.DB(ctx).Where("item_id = ?", itemID)
	if cursor != nil {
		query = query.Where("id < ?", cursor.ID)
	}
	var movements []models.StockMovement
	err := query.Order("id DESC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&movements).Error
	return movements, err
}

func (r *repository) Decrement(ctx context.Context, id uint, qty int) (bool, error) {
	res := r.DB(ctx).Model(&models.InventoryItem{}).
		Where("id = ? AND quantity_on_hand >= ?", id, qty).
		Update("quantity_on_hand", gorm.Expr("quantity_on_hand - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) Increment(ctx context.Context, id uint, qty int, unitValue *decimal.Decimal) error {
	updates := map[string]any{
		"quantity_on_hand": gorm.Expr("quantity_on_hand + ?", qty),
	}
	if unitValue != nil {
		updates["unit_value"] = *unitValue
	}
	return r.DB(ctx).Model(&models.InventoryItem{}).Where("id = ?", id).Updates(updates).Error
}

func (r *repository) UpdateStatus(ctx context.Context, id uint, status enums.InventoryItemStatus) error {
	return r.DB(ctx).Model(&models.InventoryItem{}).Where("id = ?", id).Update("status", status).Error
}

// SumMovements folds the ledger of an item into its expected on-hand quantity.
func (r *repository) SumMovements(ctx context.Context, itemID uint) (int, error) {
	var total int
	err := r.DB(ctx).Model(&models.StockMovement{}).
		Where("item_id = ?", itemID).
		Select("COALESCE(SUM(CASE WHEN kind = ? THEN quantity ELSE -quantity END), 0)", enums.MovementInbound).
		Scan(&total).Error
	return total, err
}

func sortedUnique(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
