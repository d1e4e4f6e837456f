package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/hotelops-backend/api/middleware"
	"github.com/angelmondragon/hotelops-backend/api/responses"
	"github.com/angelmondragon/hotelops-backend/api/validators"
	"github.com/angelmondragon/hotelops-backend/internal/coordinator"
	"github.com/angelmondragon/hotelops-backend/internal/rooms"
	"github.com/angelmondragon/hotelops-backend/internal/tasks"
	"github.com/angelmondragon/hotelops-backend/pkg/db/models"
	"github.com/angelmondragon/hotelops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hotelops-backend/pkg/errors"
	"github.com/angelmondragon/hotelops-backend/pkg/logger"
)

type taskCoordinator interface {
	OpenTask(ctx context.Context, input coordinator.OpenTaskInput) (*models.HousekeepingTask, error)
	RecordConsumption(ctx context.Context, input coordinator.ConsumptionInput) ([]tasks.StagedItem, error)
	CloseTask(ctx context.Context, input coordinator.CloseTaskInput) (*tasks.CloseResult, error)
}

type openTaskRequest struct {
	RoomNumber string `json:"room_number" validate:"required"`
	AssigneeID uint   `json:"assignee_id" validate:"required"`
	Type       string `json:"type" validate:"required,tasktype"`
	// Estimated accepts "HH:MM" or a bare number of minutes.
	Estimated string `json:"estimated" validate:"required"`
}

func TaskOpen(coord taskCoordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body openTaskRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		taskType, err := enums.ParseTaskType(body.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid task type"))
			return
		}
		estimated, err := tasks.ParseClock(body.Estimated)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		task, err := coord.OpenTask(r.Context(), coordinator.OpenTaskInput{
			RoomNumber:       body.RoomNumber,
			AssigneeID:       body.AssigneeID,
			Type:             taskType,
			EstimatedMinutes: estimated,
			Operator:         middleware.OperatorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toTaskDTO(*task))
	}
}

// TaskList lists tasks; ?status=pending is the housekeeping queue.
func TaskList(svc tasks.Service, roomSvc rooms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := tasks.Filter{}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseTaskStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filter.Status = status
		}
		if number := strings.TrimSpace(r.URL.Query().Get("room")); number != "" {
			room, err := roomSvc.Get(r.Context(), number)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filter.RoomID = room.ID
		}
		rows, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toTaskDTOs(rows))
	}
}

func TaskDetail(svc tasks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "taskId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		task, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		staged, err := svc.Staged(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if staged == nil {
			staged = []tasks.StagedItem{}
		}
		responses.WriteSuccess(w, map[string]any{"task": toTaskDTO(*task), "staged": staged})
	}
}

type consumptionRequest struct {
	ItemID   uint `json:"item_id" validate:"required,gt=0"`
	Quantity int  `json:"quantity" validate:"required,gt=0"`
}

// TaskRecordConsumption stages an item against a pending task. Stock moves
// only when the task closes.
func TaskRecordConsumption(coord taskCoordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "taskId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body consumptionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		staged, err := coord.RecordConsumption(r.Context(), coordinator.ConsumptionInput{
			TaskID:   id,
			ItemID:   body.ItemID,
			Quantity: body.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"staged": staged})
	}
}

type closeTaskRequest struct {
	// Actual accepts "HH:MM" or a bare number of minutes.
	Actual string               `json:"actual" validate:"required"`
	Notes  string               `json:"notes" validate:"max=2000"`
	Items  []tasks.ConsumedItem `json:"items" validate:"dive"`
}

func TaskClose(coord taskCoordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "taskId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body closeTaskRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actual, err := tasks.ParseClock(body.Actual)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := coord.CloseTask(r.Context(), coordinator.CloseTaskInput{
			TaskID:        id,
			ActualMinutes: actual,
			Notes:         body.Notes,
			Items:         body.Items,
			Operator:      middleware.OperatorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		movements := make([]movementResultDTO, 0, len(result.Movements))
		for _, m := range result.Movements {
			movements = append(movements, toMovementResultDTO(m))
		}
		responses.WriteSuccess(w, map[string]any{
			"task":      toTaskDTO(*result.Task),
			"movements": movements,
		})
	}
}
