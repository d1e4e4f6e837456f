package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/hotelops-backend/internal/inventory"
	"github.com/angelmondragon/hotelops-backend/internal/repo"
	"github.com/angelmondragon/hotelops-backend/pkg/db"
	"github.com/angelmondragon/hotelops-backend/pkg/db/models"
	"github.com/angelmondragon/hotelops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hotelops-backend/pkg/errors"
)

// PendingRoomIndex is the partial unique index allowing one pending task per
// room.
const PendingRoomIndex = "uq_housekeeping_tasks_pending_room"

type roomTransitioner interface {
	Transition(ctx context.Context, tx *gorm.DB, room *models.Room, status enums.RoomStatus) error
}

type stockLedger interface {
	Get(ctx context.Context, id uint) (*models.InventoryItem, error)
	LockItems(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]*models.InventoryItem, error)
	DebitTx(ctx context.Context, tx *gorm.DB, input inventory.DebitInput) (*inventory.MovementResult, error)
}

// OpenInput opens a task on a room already locked by the caller. Assignee
// must already be resolved to an active staff member.
type OpenInput struct {
	Room             *models.Room
	Assignee         *models.Staff
	Type             enums.TaskType
	EstimatedMinutes int
}

// ConsumedItem is one line of a close.
type ConsumedItem struct {
	ItemID   uint `json:"item_id"`
	Quantity int  `json:"quantity"`
}

// CloseInput carries the outcome of the work and the full consumption list.
type CloseInput struct {
	ActualMinutes int
	Notes         string
	Items         []ConsumedItem
}

// CloseResult is the completed task plus the movement booked per line.
type CloseResult struct {
	Task      *models.HousekeepingTask
	Movements []inventory.MovementResult
}

// Service is the task coordinator. Open and Close run inside a transaction
// owned by the caller, who must hold the room row lock.
type Service interface {
	Open(ctx context.Context, tx *gorm.DB, input OpenInput) (*models.HousekeepingTask, error)
	Close(ctx context.Context, tx *gorm.DB, task *models.HousekeepingTask, room *models.Room, input CloseInput) (*CloseResult, error)
	Load(ctx context.Context, tx *gorm.DB, id uint) (*models.HousekeepingTask, error)
	// Lock re-reads the task row FOR UPDATE. Consumptions are not loaded.
	Lock(ctx context.Context, tx *gorm.DB, id uint) (*models.HousekeepingTask, error)
	PendingForRoom(ctx context.Context, tx *gorm.DB, roomID uint) ([]models.HousekeepingTask, error)

	// Stage appends a consumption to the task's staging list after checking
	// the task is pending and the item active. Stock is untouched.
	Stage(ctx context.Context, taskID, itemID uint, qty int) (*StagedItem, error)
	Staged(ctx context.Context, taskID uint) ([]StagedItem, error)
	// ReleaseStaged drops the oldest count staged items, the ones a close
	// consumed. Items staged after the close read its snapshot are kept.
	ReleaseStaged(ctx context.Context, taskID uint, count int) error

	Get(ctx context.Context, id uint) (*models.HousekeepingTask, error)
	List(ctx context.Context, filter Filter) ([]models.HousekeepingTask, error)
	ListPending(ctx context.Context, tx *gorm.DB) ([]models.HousekeepingTask, error)
}

type service struct {
	repo    Repository
	rooms   roomTransitioner
	stock   stockLedger
	staging Staging
	now     func() time.Time
}

func NewService(repo Repository, rooms roomTransitioner, stock stockLedger, staging Staging) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tasks repository required")
	}
	if rooms == nil {
		return nil, fmt.Errorf("room transitioner required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if staging == nil {
		return nil, fmt.Errorf("staging store required")
	}
	return &service{
		repo:    repo,
		rooms:   rooms,
		stock:   stock,
		staging: staging,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// ValidateOpen checks the caller-supplied fields of an open request.
func ValidateOpen(assigneeID uint, taskType enums.TaskType, estimatedMinutes int) error {
	if assigneeID == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "assignee required")
	}
	if !taskType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid task type").
			WithDetails(map[string]any{"task_type": taskType})
	}
	if estimatedMinutes <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "estimated duration must be positive")
	}
	return nil
}

func (s *service) Open(ctx context.Context, tx *gorm.DB, input OpenInput) (*models.HousekeepingTask, error) {
	if input.Room == nil || input.Assignee == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "room and assignee required")
	}
	if err := ValidateOpen(input.Assignee.ID, input.Type, input.EstimatedMinutes); err != nil {
		return nil, err
	}
	room := input.Room
	pending, err := s.PendingForRoom(ctx, tx, room.ID)
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "room already has a pending task").
			WithDetails(map[string]any{"room": room.Number, "task_id": pending[0].ID})
	}
	if room.Status != enums.RoomFree {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "room is not free").
			WithDetails(map[string]any{"room": room.Number, "status": room.Status})
	}

	staffID := input.Assignee.ID
	task := &models.HousekeepingTask{
		RoomID:           room.ID,
		RoomNumber:       room.Number,
		StaffID:          &staffID,
		Assignee:         input.Assignee.Name,
		Type:             input.Type,
		Status:           enums.TaskPending,
		EstimatedMinutes: input.EstimatedMinutes,
		OpenedAt:         s.now(),
	}
	if err := s.repo.WithTx(tx).Create(ctx, task); err != nil {
		if db.IsUniqueViolation(err, PendingRoomIndex) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "room already has a pending task").
				WithDetails(map[string]any{"room": room.Number})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "create task")
	}
	if err := s.rooms.Transition(ctx, tx, room, input.Type.RoomStatus()); err != nil {
		return nil, err
	}
	return task, nil
}

// Close debits every consumed line, records one consumption per line,
// completes the task and frees the room. Any failure leaves the caller's
// transaction to roll all of it back.
func (s *service) Close(ctx context.Context, tx *gorm.DB, task *models.HousekeepingTask, room *models.Room, input CloseInput) (*CloseResult, error) {
	if task == nil || room == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "task and room required")
	}
	if task.Status != enums.TaskPending {
		return nil, notPending(task)
	}
	if task.RoomID != room.ID {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "task does not reference the locked room")
	}
	notes := strings.TrimSpace(input.Notes)
	if err := ValidateClose(task.EstimatedMinutes, input.ActualMinutes, notes); err != nil {
		return nil, err
	}
	items, err := MergeItems(input.Items)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(items))
	for _, line := range items {
		ids = append(ids, line.ItemID)
	}
	if _, err := s.stock.LockItems(ctx, tx, ids); err != nil {
		return nil, err
	}

	r := s.repo.WithTx(tx)
	taskID := task.ID
	note := fmt.Sprintf("Used in %s of room %s", task.Type.Label(), room.Number)
	result := &CloseResult{Movements: make([]inventory.MovementResult, 0, len(items))}
	consumptions := make([]models.TaskConsumption, 0, len(items))
	for _, line := range items {
		moved, err := s.stock.DebitTx(ctx, tx, inventory.DebitInput{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			Note:     note,
			TaskID:   &taskID,
		})
		if err != nil {
			return nil, err
		}
		consumption := models.TaskConsumption{
			TaskID:     task.ID,
			ItemID:     line.ItemID,
			ItemName:   moved.Item.Name,
			Quantity:   line.Quantity,
			UnitValue:  moved.Movement.UnitValueAtTime,
			TotalValue: moved.Movement.TotalValue,
			MovementID: moved.Movement.ID,
		}
		if err := r.CreateConsumption(ctx, &consumption); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "record task consumption")
		}
		consumptions = append(consumptions, consumption)
		result.Movements = append(result.Movements, *moved)
	}

	completedAt := s.now()
	ok, err := r.Complete(ctx, task.ID, input.ActualMinutes, notes, completedAt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "complete task")
	}
	if !ok {
		return nil, notPending(task)
	}
	if err := s.rooms.Transition(ctx, tx, room, enums.RoomFree); err != nil {
		return nil, err
	}

	actual := input.ActualMinutes
	task.Status = enums.TaskCompleted
	task.ActualMinutes = &actual
	task.Notes = notes
	task.CompletedAt = &completedAt
	task.Consumptions = consumptions
	result.Task = task
	return result, nil
}

// ValidateClose enforces the duration and notes rule of a close.
func ValidateClose(estimatedMinutes, actualMinutes int, notes string) error {
	if actualMinutes < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "actual duration cannot be negative")
	}
	if actualMinutes > estimatedMinutes && strings.TrimSpace(notes) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "notes required when the task ran over its estimate").
			WithDetails(map[string]any{
				"estimated": FormatClock(estimatedMinutes),
				"actual":    FormatClock(actualMinutes),
			})
	}
	return nil
}

// MergeItems folds repeated lines of the same item into one and rejects an
// empty list or non-positive quantities. First-seen order is kept.
func MergeItems(lines []ConsumedItem) ([]ConsumedItem, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one consumed item required")
	}
	index := make(map[uint]int, len(lines))
	merged := make([]ConsumedItem, 0, len(lines))
	for _, line := range lines {
		if line.ItemID == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
				WithDetails(map[string]any{"item_id": line.ItemID, "quantity": line.Quantity})
		}
		if pos, ok := index[line.ItemID]; ok {
			merged[pos].Quantity += line.Quantity
			continue
		}
		index[line.ItemID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}

// Compose joins staged items with items declared in the close call.
func Compose(staged []StagedItem, declared []ConsumedItem) []ConsumedItem {
	out := make([]ConsumedItem, 0, len(staged)+len(declared))
	for _, item := range staged {
		out = append(out, ConsumedItem{ItemID: item.ItemID, Quantity: item.Quantity})
	}
	return append(out, declared...)
}

func (s *service) Load(ctx context.Context, tx *gorm.DB, id uint) (*models.HousekeepingTask, error) {
	return s.load(ctx, s.repo.WithTx(tx), id)
}

func (s *service) Get(ctx context.Context, id uint) (*models.HousekeepingTask, error) {
	return s.load(ctx, s.repo, id)
}

func (s *service) Lock(ctx context.Context, tx *gorm.DB, id uint) (*models.HousekeepingTask, error) {
	return s.read(id, func() (*models.HousekeepingTask, error) {
		return s.repo.WithTx(tx).LockByID(ctx, id)
	})
}

func (s *service) load(ctx context.Context, r Repository, id uint) (*models.HousekeepingTask, error) {
	return s.read(id, func() (*models.HousekeepingTask, error) {
		return r.FindByID(ctx, id)
	})
}

func (s *service) read(id uint, find func() (*models.HousekeepingTask, error)) (*models.HousekeepingTask, error) {
	if id == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "task id required")
	}
	task, err := find()
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "task not found").
				WithDetails(map[string]any{"task_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load task")
	}
	return task, nil
}

func (s *service) PendingForRoom(ctx context.Context, tx *gorm.DB, roomID uint) ([]models.HousekeepingTask, error) {
	rows, err := s.repo.WithTx(tx).List(ctx, Filter{Status: enums.TaskPending, RoomID: roomID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list room tasks")
	}
	return rows, nil
}

func (s *service) Stage(ctx context.Context, taskID, itemID uint, qty int) (*StagedItem, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != enums.TaskPending {
		return nil, notPending(task)
	}
	item, err := s.stock.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Status != enums.ItemActive {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "inventory item is inactive").
			WithDetails(map[string]any{"item_id": item.ID, "name": item.Name})
	}
	staged := StagedItem{ItemID: item.ID, Quantity: qty, StagedAt: s.now()}
	if err := s.staging.Append(ctx, task.ID, staged); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "stage consumption")
	}
	return &staged, nil
}

func (s *service) Staged(ctx context.Context, taskID uint) ([]StagedItem, error) {
	items, err := s.staging.List(ctx, taskID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "read staged consumptions")
	}
	return items, nil
}

func (s *service) ReleaseStaged(ctx context.Context, taskID uint, count int) error {
	if count <= 0 {
		return nil
	}
	if err := s.staging.Drop(ctx, taskID, count); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "release staged consumptions")
	}
	return nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]models.HousekeepingTask, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid task status filter")
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list tasks")
	}
	return rows, nil
}

func (s *service) ListPending(ctx context.Context, tx *gorm.DB) ([]models.HousekeepingTask, error) {
	rows, err := s.repo.WithTx(tx).List(ctx, Filter{Status: enums.TaskPending})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list tasks")
	}
	return rows, nil
}

func notPending(task *models.HousekeepingTask) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "task is not pending").
		WithDetails(map[string]any{"task_id": task.ID, "status": task.Status})
}
