package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/hotelops-backend/api/middleware"
	"github.com/angelmondragon/hotelops-backend/api/responses"
	"github.com/angelmondragon/hotelops-backend/api/validators"
	"github.com/angelmondragon/hotelops-backend/internal/coordinator"
	"github.com/angelmondragon/hotelops-backend/internal/rooms"
	"github.com/angelmondragon/hotelops-backend/pkg/db/models"
	"github.com/angelmondragon/hotelops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hotelops-backend/pkg/errors"
	"github.com/angelmondragon/hotelops-backend/pkg/logger"
)

type roomCoordinator interface {
	SetRoomStatus(ctx context.Context, input coordinator.SetRoomStatusInput) (*models.Room, error)
	VerifyRoom(ctx context.Context, number string) (*coordinator.RoomReport, error)
	Audit(ctx context.Context) (*coordinator.AuditReport, error)
}

// RoomList returns the room board, optionally filtered by status and floor.
func RoomList(svc rooms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := rooms.Filter{}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseRoomStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filter.Status = status
		}
		floor, err := validators.ParseQueryInt(r, "floor", 0, 0, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.Floor = floor

		rows, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]roomDTO, 0, len(rows))
		for _, room := range rows {
			out = append(out, toRoomDTO(room))
		}
		responses.WriteSuccess(w, out)
	}
}

func RoomDetail(svc rooms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, err := svc.Get(r.Context(), chi.URLParam(r, "number"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toRoomDTO(*room))
	}
}

type roomStatusRequest struct {
	Status string `json:"status" validate:"required,roomstatus"`
}

// RoomSetStatus is the manual status override. It only commits when the
// room still satisfies the occupancy invariant afterwards.
func RoomSetStatus(coord roomCoordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body roomStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseRoomStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}
		room, err := coord.SetRoomStatus(r.Context(), coordinator.SetRoomStatusInput{
			RoomNumber: chi.URLParam(r, "number"),
			Status:     status,
			Operator:   middleware.OperatorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toRoomDTO(*room))
	}
}

func RoomAudit(coord roomCoordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := coord.VerifyRoom(r.Context(), chi.URLParam(r, "number"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// Audit checks every room and lists the ones that break the invariant.
func Audit(coord roomCoordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := coord.Audit(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		violations := report.Violations
		if violations == nil {
			violations = []coordinator.RoomReport{}
		}
		responses.WriteSuccess(w, map[string]any{
			"rooms":      report.Rooms,
			"consistent": len(violations) == 0,
			"violations": violations,
		})
	}
}
