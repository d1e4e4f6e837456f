package inventory

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
	"github.com/angelmondragon/hotelops-backend/pkg/metrics"
	"github.com/angelmondragon/hotelops-backend/pkg/outbox"
	"github.com/angelmondragon/hotelops-backend/pkg/pagination"
)

const initialStockNote = "Initial stock"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RegisterInput describes a new catalog item. Quantity, when positive, is
// booked as an inbound movement.
type RegisterInput struct {
	Name         string
	Category     string
	Unit         string
	Quantity     int
	UnitValue    decimal.Decimal
	MinThreshold int
	MaxThreshold int
	Notes        string
}

// DebitInput removes stock. TaskID and ReservationID tag the movement with
// the operation that consumed it.
type DebitInput struct {
	ItemID        uint
	Quantity      int
	Note          string
	TaskID        *uint
	ReservationID *uint
}

// CreditInput adds stock. A non-nil UnitValue becomes the item's current cost.
type CreditInput struct {
	ItemID    uint
	Quantity  int
	UnitValue *decimal.Decimal
	Note      string
}

// MovementResult is the item state right after a movement was booked.
type MovementResult struct {
	Item     models.InventoryItem
	Movement models.StockMovement
}

// CrossedMinimum reports whether the movement was a debit that took the item
// from above its restock threshold to at or below it. Further debits while the
// item already sits below the threshold do not count.
func (r MovementResult) CrossedMinimum() bool {
	if r.Movement.Kind != enums.MovementOutbound || !r.Item.BelowMinimum() {
		return false
	}
	before := r.Movement.QuantityAfter + r.Movement.Quantity
	return before > r.Item.MinThreshold
}

// MovementPage is one page of an item's ledger, newest first.
type MovementPage struct {
	Movements  []models.StockMovement
	NextCursor string
}

// StockBelowMinimumEvent is the outbox payload emitted when a debit takes an
// item down to or below its minimum.
type StockBelowMinimumEvent struct {
	ItemID         uint   `json:"item_id"`
	Name           string `json:"name"`
	QuantityOnHand int    `json:"quantity_on_hand"`
	MinThreshold   int    `json:"min_threshold"`
	MovementID     uint   `json:"movement_id"`
}

// Service is the inventory ledger.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.InventoryItem, error)
	Get(ctx context.Context, id uint) (*models.InventoryItem, error)
	List(ctx context.Context, filter Filter) ([]models.InventoryItem, error)
	Movements(ctx context.Context, itemID uint, params pagination.Params) (*MovementPage, error)
	Debit(ctx context.Context, input DebitInput) (*MovementResult, error)
	Credit(ctx context.Context, input CreditInput) (*MovementResult, error)
	SetStatus(ctx context.Context, id uint, status enums.InventoryItemStatus) (*models.InventoryItem, error)
	// Reconcile compares quantity_on_hand against the fold of the ledger.
	Reconcile(ctx context.Context, id uint) (onHand int, ledger int, err error)

	DebitTx(ctx context.Context, tx *gorm.DB, input DebitInput) (*MovementResult, error)
	CreditTx(ctx context.Context, tx *gorm.DB, input CreditInput) (*MovementResult, error)
	// LockItems row-locks the given items in ascending id order.
	LockItems(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]*models.InventoryItem, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outbox.Emitter
	metrics *metrics.OperationMetrics
}

// NewService builds the inventory ledger. metrics may be nil.
func NewService(repo Repository, tx txRunner, emitter outbox.Emitter, m *metrics.OperationMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{repo: repo, tx: tx, outbox: emitter, metrics: m}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.InventoryItem, error) {
	if err := validateRegister(input); err != nil {
		return nil, err
	}
	item := &models.InventoryItem{
		Name:         strings.TrimSpace(input.Name),
		Category:     strings.TrimSpace(input.Category),
		Unit:         strings.TrimSpace(input.Unit),
		UnitValue:    input.UnitValue.Round(2),
		MinThreshold: input.MinThreshold,
		MaxThreshold: input.MaxThreshold,
		Status:       enums.ItemActive,
		Notes:        strings.TrimSpace(input.Notes),
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).CreateItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "create inventory item")
		}
		if input.Quantity == 0 {
			return nil
		}
		res, err := s.CreditTx(ctx, tx, CreditInput{
			ItemID:   item.ID,
			Quantity: input.Quantity,
			Note:     initialStockNote,
		})
		if err != nil {
			return err
		}
		*item = res.Item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func validateRegister(input RegisterInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "item name required")
	}
	if input.Quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if input.UnitValue.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit value cannot be negative")
	}
	if input.MinThreshold < 0 || input.MaxThreshold < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "thresholds cannot be negative")
	}
	if input.MaxThreshold > 0 && input.MinThreshold > input.MaxThreshold {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum threshold exceeds maximum").
			WithDetails(map[string]any{"min": input.MinThreshold, "max": input.MaxThreshold})
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.InventoryItem, error) {
	return s.load(ctx, s.repo, id, false)
}

func (s *service) load(ctx context.Context, r Repository, id uint, lock bool) (*models.InventoryItem, error) {
	if id == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	var (
		item *models.InventoryItem
		err  error
	)
	if lock {
		item, err = r.LockByID(ctx, id)
	} else {
		item, err = r.FindByID(ctx, id)
	}
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found").
				WithDetails(map[string]any{"item_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load inventory item")
	}
	return item, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]models.InventoryItem, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid item status filter")
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list inventory items")
	}
	return items, nil
}

func (s *service) Movements(ctx context.Context, itemID uint, params pagination.Params) (*MovementPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if _, err := s.Get(ctx, itemID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListMovements(ctx, itemID, params, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list stock movements")
	}
	page, next := pagination.Page(rows, params.Limit, func(m models.StockMovement) uint { return m.ID })
	return &MovementPage{Movements: page, NextCursor: next}, nil
}

func (s *service) Debit(ctx context.Context, input DebitInput) (*MovementResult, error) {
	start := time.Now()
	var result *MovementResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		res, err := s.DebitTx(ctx, tx, input)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	s.metrics.Observe("inventory_debit", string(pkgerrors.CodeOf(err)), time.Since(start))
	if err != nil {
		return nil, err
	}
	if result.CrossedMinimum() {
		s.metrics.IncStockBelowMinimum(result.Item.Name)
	}
	return result, nil
}

func (s *service) Credit(ctx context.Context, input CreditInput) (*MovementResult, error) {
	start := time.Now()
	var result *MovementResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		res, err := s.CreditTx(ctx, tx, input)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	s.metrics.Observe("inventory_credit", string(pkgerrors.CodeOf(err)), time.Since(start))
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DebitTx books one outbound movement inside tx. The item row is locked, the
// decrement is conditional on enough stock remaining, and a stock-below-minimum
// event is queued when the item crosses its threshold.
func (s *service) DebitTx(ctx context.Context, tx *gorm.DB, input DebitInput) (*MovementResult, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
			WithDetails(map[string]any{"item_id": input.ItemID, "quantity": input.Quantity})
	}
	r := s.repo.WithTx(tx)
	item, err := s.load(ctx, r, input.ItemID, true)
	if err != nil {
		return nil, err
	}
	if item.Status != enums.ItemActive {
		return nil, inactiveItem(item)
	}
	if item.QuantityOnHand < input.Quantity {
		return nil, insufficientStock(item, input.Quantity)
	}
	ok, err := r.Decrement(ctx, item.ID, input.Quantity)
	if err != nil {
		if db.IsCheckViolation(err) {
			return nil, insufficientStock(item, input.Quantity)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "debit inventory item")
	}
	if !ok {
		return nil, insufficientStock(item, input.Quantity)
	}
	item.QuantityOnHand -= input.Quantity

	movement := models.StockMovement{
		ItemID:          item.ID,
		Kind:            enums.MovementOutbound,
		Quantity:        input.Quantity,
		UnitValueAtTime: item.UnitValue,
		TotalValue:      lineTotal(item.UnitValue, input.Quantity),
		QuantityAfter:   item.QuantityOnHand,
		Note:            strings.TrimSpace(input.Note),
		TaskID:          input.TaskID,
		ReservationID:   input.ReservationID,
	}
	if err := r.CreateMovement(ctx, &movement); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "record stock movement")
	}

	result := &MovementResult{Item: *item, Movement: movement}
	if result.CrossedMinimum() {
		event := outbox.DomainEvent{
			EventType:     enums.EventStockBelowMinimum,
			AggregateType: enums.AggregateInventoryItem,
			AggregateID:   item.ID,
			Data: StockBelowMinimumEvent{
				ItemID:         item.ID,
				Name:           item.Name,
				QuantityOnHand: item.QuantityOnHand,
				MinThreshold:   item.MinThreshold,
				MovementID:     movement.ID,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "emit stock below minimum")
		}
	}
	return result, nil
}

// CreditTx books one inbound movement inside tx using the latest-cost policy:
// a supplied unit value replaces the current one.
func (s *service) CreditTx(ctx context.Context, tx *gorm.DB, input CreditInput) (*MovementResult, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
			WithDetails(map[string]any{"item_id": input.ItemID, "quantity": input.Quantity})
	}
	var unitValue *decimal.Decimal
	if input.UnitValue != nil {
		if input.UnitValue.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit value cannot be negative")
		}
		rounded := input.UnitValue.Round(2)
		unitValue = &rounded
	}
	r := s.repo.WithTx(tx)
	item, err := s.load(ctx, r, input.ItemID, true)
	if err != nil {
		return nil, err
	}
	if item.Status != enums.ItemActive {
		return nil, inactiveItem(item)
	}
	if err := r.Increment(ctx, item.ID, input.Quantity, unitValue); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "credit inventory item")
	}
	item.QuantityOnHand += input.Quantity
	if unitValue != nil {
		item.UnitValue = *unitValue
	}

	movement := models.StockMovement{
		ItemID:          item.ID,
		Kind:            enums.MovementInbound,
		Quantity:        input.Quantity,
		UnitValueAtTime: item.UnitValue,
		TotalValue:      lineTotal(item.UnitValue, input.Quantity),
		QuantityAfter:   item.QuantityOnHand,
		Note:            strings.TrimSpace(input.Note),
	}
	if err := r.CreateMovement(ctx, &movement); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "record stock movement")
	}
	return &MovementResult{Item: *item, Movement: movement}, nil
}

func (s *service) SetStatus(ctx context.Context, id uint, status enums.InventoryItemStatus) (*models.InventoryItem, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid item status")
	}
	var updated *models.InventoryItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		item, err := s.load(ctx, r, id, true)
		if err != nil {
			return err
		}
		if item.Status != status {
			if err := r.UpdateStatus(ctx, item.ID, status); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "update item status")
			}
			item.Status = status
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Reconcile(ctx context.Context, id uint) (int, int, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return 0, 0, err
	}
	ledger, err := s.repo.SumMovements(ctx, id)
	if err != nil {
		return 0, 0, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "sum stock movements")
	}
	return item.QuantityOnHand, ledger, nil
}

func (s *service) LockItems(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]*models.InventoryItem, error) {
	r := s.repo.WithTx(tx)
	locked := make(map[uint]*models.InventoryItem, len(ids))
	for _, id := range sortedUnique(ids) {
		item, err := s.load(ctx, r, id, true)
		if err != nil {
			return nil, err
		}
		locked[id] = item
	}
	return locked, nil
}

func lineTotal(unit decimal.Decimal, qty int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(qty))).Round(2)
}

func inactiveItem(item *models.InventoryItem) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "inventory item is inactive").
		WithDetails(map[string]any{"item_id": item.ID, "name": item.Name})
}

func insufficientStock(item *models.InventoryItem, requested int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(map[string]any{
			"item_id":   item.ID,
			"name":      item.Name,
			"requested": requested,
			"available": item.QuantityOnHand,
		})
}
