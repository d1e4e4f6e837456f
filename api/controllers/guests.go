package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/hotelops-backend/api/responses"
	"github.com/angelmondragon/hotelops-backend/api/validators"
	"github.com/angelmondragon/hotelops-backend/internal/guests"
	"github.com/angelmondragon/hotelops-backend/internal/reservations"
	"github.com/angelmondragon/hotelops-backend/pkg/logger"
)

type guestRegisterRequest struct {
	Name      string  `json:"name" validate:"required,min=2,max=120"`
	Document  string  `json:"document" validate:"required,min=3,max=32"`
	Phone     string  `json:"phone" validate:"omitempty,max=32"`
	Plate     string  `json:"plate" validate:"omitempty,max=16"`
	BirthDate *string `json:"birth_date" validate:"omitempty,isodate"`
}

func GuestRegister(svc guests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body guestRegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := guests.RegisterInput{
			Name:     validators.SanitizeString(body.Name, 120),
			Document: body.Document,
			Phone:    validators.SanitizeString(body.Phone, 32),
			Plate:    validators.SanitizeString(body.Plate, 16),
		}
		if body.BirthDate != nil {
			birth, err := validators.ParseDate("birth_date", *body.BirthDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.BirthDate = &birth
		}

		guest, err := svc.Register(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toGuestDTO(*guest))
	}
}

// GuestList searches guests by name or document (?q=) with cursor paging.
func GuestList(svc guests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]guestDTO, 0, len(result.Guests))
		for _, g := range result.Guests {
			out = append(out, toGuestDTO(g))
		}
		responses.WriteSuccess(w, map[string]any{"guests": out, "next_cursor": result.NextCursor})
	}
}

func GuestDetail(svc guests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "guestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		guest, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toGuestDTO(*guest))
	}
}

// GuestReservations is the guest's stay history, newest first.
func GuestReservations(guestSvc guests.Service, svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "guestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := guestSvc.Get(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListByGuest(r.Context(), id, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"reservations": toReservationDTOs(result.Reservations),
			"next_cursor":  result.NextCursor,
		})
	}
}
