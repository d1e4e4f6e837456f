package coordinator

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/hotelops-backend/internal/rooms"
	"github.com/angelmondragon/hotelops-backend/internal/tasks"
	"github.com/angelmondragon/hotelops-backend/pkg/db/models"
	"github.com/angelmondragon/hotelops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hotelops-backend/pkg/errors"
)

type OpenTaskInput struct {
	RoomNumber       string
	AssigneeID       uint
	Type             enums.TaskType
	EstimatedMinutes int
	Operator         string
}

type ConsumptionInput struct {
	TaskID   uint
	ItemID   uint
	Quantity int
}

// CloseTaskInput closes a task. Items are added to whatever was staged for
// the task beforehand.
type CloseTaskInput struct {
	TaskID        uint
	ActualMinutes int
	Notes         string
	Items         []tasks.ConsumedItem
	Operator      string
}

type SetRoomStatusInput struct {
	RoomNumber string
	Status     enums.RoomStatus
	Operator   string
}

// OpenTask creates a pending task on a free room, assigned to an active staff
// member, and moves the room into the matching task status.
func (c *Coordinator) OpenTask(ctx context.Context, input OpenTaskInput) (*models.HousekeepingTask, error) {
	if err := tasks.ValidateOpen(input.AssigneeID, input.Type, input.EstimatedMinutes); err != nil {
		return nil, c.reject(ctx, opOpenTask, err)
	}
	if _, _, err := rooms.ParseNumber(input.RoomNumber); err != nil {
		return nil, c.reject(ctx, opOpenTask, err)
	}

	var opened *models.HousekeepingTask
	ctx = c.logg.WithRoom(ctx, input.RoomNumber)
	err := c.transact(ctx, opOpenTask, func(tx *gorm.DB) error {
		room, err := c.rooms.Lock(ctx, tx, input.RoomNumber)
		if err != nil {
			return err
		}
		member, err := c.staff.Assignable(ctx, tx, input.AssigneeID)
		if err != nil {
			return err
		}
		task, err := c.tasks.Open(ctx, tx, tasks.OpenInput{
			Room:             room,
			Assignee:         member,
			Type:             input.Type,
			EstimatedMinutes: input.EstimatedMinutes,
		})
		if err != nil {
			return err
		}
		if err := c.verify(ctx, tx, room); err != nil {
			return err
		}
		opened = task
		return c.emit(ctx, tx, input.Operator, taskEvent(enums.EventTaskOpened, task, room))
	})
	if err != nil {
		return nil, err
	}
	return opened, nil
}

// RecordConsumption stages an item against a pending task and returns the
// task's full staging list. Stock is debited only when the task closes.
func (c *Coordinator) RecordConsumption(ctx context.Context, input ConsumptionInput) ([]tasks.StagedItem, error) {
	var staged []tasks.StagedItem
	err := c.observe(ctx, opRecordConsumption, func(ctx context.Context) error {
		if _, err := c.tasks.Stage(ctx, input.TaskID, input.ItemID, input.Quantity); err != nil {
			return err
		}
		items, err := c.tasks.Staged(ctx, input.TaskID)
		if err != nil {
			return err
		}
		staged = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return staged, nil
}

// CloseTask debits staged and declared items, records the consumptions,
// completes the task and frees the room in one transaction. After commit only
// the staged entries that were debited are released; anything staged while the
// close was running stays staged. A rejected close releases nothing.
func (c *Coordinator) CloseTask(ctx context.Context, input CloseTaskInput) (*tasks.CloseResult, error) {
	if input.TaskID == 0 {
		return nil, c.reject(ctx, opCloseTask, pkgerrors.New(pkgerrors.CodeValidation, "task id required"))
	}
	staged, err := c.tasks.Staged(ctx, input.TaskID)
	if err != nil {
		return nil, c.reject(ctx, opCloseTask, err)
	}
	items := tasks.Compose(staged, input.Items)

	var result *tasks.CloseResult
	err = c.transact(ctx, opCloseTask, func(tx *gorm.DB) error {
		task, err := c.tasks.Load(ctx, tx, input.TaskID)
		if err != nil {
			return err
		}
		room, err := c.rooms.LockByID(ctx, tx, task.RoomID)
		if err != nil {
			return err
		}
		task, err = c.tasks.Lock(ctx, tx, input.TaskID)
		if err != nil {
			return err
		}
		closed, err := c.tasks.Close(ctx, tx, task, room, tasks.CloseInput{
			ActualMinutes: input.ActualMinutes,
			Notes:         input.Notes,
			Items:         items,
		})
		if err != nil {
			return err
		}
		if err := c.verify(ctx, tx, room); err != nil {
			return err
		}
		result = closed
		return c.emit(ctx, tx, input.Operator, taskEvent(enums.EventTaskCompleted, closed.Task, room))
	})
	if err != nil {
		return nil, err
	}

	c.releaseStaged(ctx, input.TaskID, len(staged))
	c.countLowStock(result.Movements)
	return result, nil
}

// releaseStaged drops the consumed prefix of the staging list. Entries staged
// after the snapshot was read were never debited and are left in place.
func (c *Coordinator) releaseStaged(ctx context.Context, taskID uint, consumed int) {
	logCtx := c.logg.WithField(ctx, "task_id", taskID)
	if err := c.tasks.ReleaseStaged(ctx, taskID, consumed); err != nil {
		c.logg.Error(logCtx, "release staged consumptions after close", err)
		return
	}
	left, err := c.tasks.Staged(ctx, taskID)
	if err != nil {
		c.logg.Error(logCtx, "read staged consumptions after close", err)
		return
	}
	if len(left) > 0 {
		c.logg.Warn(c.logg.WithField(logCtx, "staged_left", len(left)), "consumptions staged during close were not debited")
	}
}
