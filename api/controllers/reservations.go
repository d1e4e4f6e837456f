package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/hotelops-backend/api/middleware"
	"github.com/angelmondragon/hotelops-backend/api/responses"
	"github.com/angelmondragon/hotelops-backend/api/validators"
	"github.com/angelmondragon/hotelops-backend/internal/coordinator"
	"github.com/angelmondragon/hotelops-backend/internal/inventory"
	"github.com/angelmondragon/hotelops-backend/internal/reservations"
	"github.com/angelmondragon/hotelops-backend/pkg/db/models"
	"github.com/angelmondragon/hotelops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hotelops-backend/pkg/errors"
	"github.com/angelmondragon/hotelops-backend/pkg/logger"
)

type reservationCoordinator interface {
	CheckIn(ctx context.Context, input coordinator.CheckInInput) (*models.Reservation, error)
	CheckOut(ctx context.Context, input coordinator.ReservationInput) (*models.Reservation, error)
	CancelReservation(ctx context.Context, input coordinator.CancelInput) (*models.Reservation, error)
	RescheduleReservation(ctx context.Context, input coordinator.RescheduleInput) (*coordinator.RescheduleResult, error)
	ChargeToRoom(ctx context.Context, input coordinator.ChargeInput) (*inventory.MovementResult, error)
}

type checkInRequest struct {
	GuestID      uint   `json:"guest_id" validate:"required,gt=0"`
	RoomNumber   string `json:"room_number" validate:"required"`
	CheckInDate  string `json:"check_in_date" validate:"required,isodate"`
	CheckOutDate string `json:"check_out_date" validate:"required,isodate"`
	NightlyRate  string `json:"nightly_rate" validate:"required,money"`
}

// ReservationCheckIn books a guest into a free room.
func ReservationCheckIn(coord reservationCoordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body checkInRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		checkIn, err := validators.ParseDate("check_in_date", body.CheckInDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		checkOut, err := validators.ParseDate("check_out_date", body.CheckOutDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rate, err := validators.ParseMoney("nightly_rate", body.NightlyRate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := coord.CheckIn(r.Context(), coordinator.CheckInInput{
			GuestID:      body.GuestID,
			RoomNumber:   body.RoomNumber,
			CheckInDate:  checkIn,
			CheckOutDate: checkOut,
			NightlyRate:  rate,
			Operator:     middleware.OperatorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toReservationDTO(*reservation))
	}
}

func ReservationDetail(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "reservationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reservation, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toReservationDTO(*reservation))
	}
}

// ReservationList is the active-reservation board. Only status=active is
// served; history is read per guest.
func ReservationList(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseReservationStatus(raw)
			if err != nil || status != enums.ReservationActive {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "only status=active is supported").
					WithDetails(map[string]any{"status": raw}))
				return
			}
		}
		rows, err := svc.ListActive(r.Context(), nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toReservationDTOs(rows))
	}
}

func ReservationCheckOut(coord reservationCoordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "reservationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reservation, err := coord.CheckOut(r.Context(), coordinator.ReservationInput{
			ReservationID: id,
			Operator:      middleware.OperatorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toReservationDTO(*reservation))
	}
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

func ReservationCancel(coord reservationCoordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "reservationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body cancelRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reservation, err := coord.CancelReservation(r.Context(), coordinator.CancelInput{
			ReservationID: id,
			Reason:        body.Reason,
			Operator:      middleware.OperatorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toReservationDTO(*reservation))
	}
}

type rescheduleRequest struct {
	CheckInDate  string `json:"check_in_date" validate:"required,isodate"`
	CheckOutDate string `json:"check_out_date" validate:"required,isodate"`
	Reason       string `json:"reason" validate:"required,max=500"`
}

func ReservationReschedule(coord reservationCoordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "reservationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body rescheduleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		checkIn, err := validators.ParseDate("check_in_date", body.CheckInDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		checkOut, err := validators.ParseDate("check_out_date", body.CheckOutDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := coord.RescheduleReservation(r.Context(), coordinator.RescheduleInput{
			ReservationID: id,
			CheckInDate:   checkIn,
			CheckOutDate:  checkOut,
			Reason:        body.Reason,
			Operator:      middleware.OperatorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"previous": toReservationDTO(*result.Previous),
			"current":  toReservationDTO(*result.Current),
		})
	}
}

type chargeRequest struct {
	ItemID   uint `json:"item_id" validate:"required,gt=0"`
	Quantity int  `json:"quantity" validate:"required,gt=0"`
}

// ReservationCharge sells a shop item to the room of an active reservation.
func ReservationCharge(coord reservationCoordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "reservationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body chargeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := coord.ChargeToRoom(r.Context(), coordinator.ChargeInput{
			ReservationID: id,
			ItemID:        body.ItemID,
			Quantity:      body.Quantity,
			Operator:      middleware.OperatorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toMovementResultDTO(*result))
	}
}
