package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/hotelops-backend/api/responses"
	"github.com/angelmondragon/hotelops-backend/api/validators"
	"github.com/angelmondragon/hotelops-backend/internal/inventory"
	"github.com/angelmondragon/hotelops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hotelops-backend/pkg/errors"
	"github.com/angelmondragon/hotelops-backend/pkg/logger"
)

type registerItemRequest struct {
	Name         string `json:"name" validate:"required,max=120"`
	Category     string `json:"category" validate:"max=60"`
	Unit         string `json:"unit" validate:"max=20"`
	Quantity     int    `json:"quantity" validate:"min=0"`
	UnitValue    string `json:"unit_value" validate:"required,money"`
	MinThreshold int    `json:"min_threshold" validate:"min=0"`
	MaxThreshold int    `json:"max_threshold" validate:"min=0"`
	Notes        string `json:"notes" validate:"max=2000"`
}

func InventoryRegister(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body registerItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unitValue, err := validators.ParseMoney("unit_value", body.UnitValue)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Register(r.Context(), inventory.RegisterInput{
			Name:         validators.SanitizeString(body.Name, 120),
			Category:     validators.SanitizeString(body.Category, 60),
			Unit:         validators.SanitizeString(body.Unit, 20),
			Quantity:     body.Quantity,
			UnitValue:    unitValue,
			MinThreshold: body.MinThreshold,
			MaxThreshold: body.MaxThreshold,
			Notes:        body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toItemDTO(*item))
	}
}

// InventoryList filters by category, status and ?below_minimum=true.
func InventoryList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := inventory.Filter{Category: strings.TrimSpace(r.URL.Query().Get("category"))}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseInventoryItemStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filter.Status = status
		}
		below, err := validators.ParseQueryBool(r, "below_minimum")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.BelowMinimum = below

		rows, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]itemDTO, 0, len(rows))
		for _, item := range rows {
			out = append(out, toItemDTO(item))
		}
		responses.WriteSuccess(w, out)
	}
}

func InventoryDetail(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toItemDTO(*item))
	}
}

func InventoryMovements(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.Movements(r.Context(), id, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]movementDTO, 0, len(page.Movements))
		for _, m := range page.Movements {
			out = append(out, toMovementDTO(m))
		}
		responses.WriteSuccess(w, map[string]any{"movements": out, "next_cursor": page.NextCursor})
	}
}

type debitRequest struct {
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	Note     string `json:"note" validate:"max=500"`
}

// InventoryDebit books a manual outbound movement, e.g. breakage.
func InventoryDebit(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body debitRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Debit(r.Context(), inventory.DebitInput{ItemID: id, Quantity: body.Quantity, Note: body.Note})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toMovementResultDTO(*result))
	}
}

type creditRequest struct {
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	UnitValue *string `json:"unit_value" validate:"omitempty,money"`
	Note      string  `json:"note" validate:"max=500"`
}

// InventoryCredit books a restock. A unit_value becomes the item's cost.
func InventoryCredit(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body creditRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := inventory.CreditInput{ItemID: id, Quantity: body.Quantity, Note: body.Note}
		if body.UnitValue != nil {
			value, err := validators.ParseMoney("unit_value", *body.UnitValue)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.UnitValue = &value
		}
		result, err := svc.Credit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toMovementResultDTO(*result))
	}
}

type itemStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

func InventorySetStatus(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body itemStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseInventoryItemStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}
		item, err := svc.SetStatus(r.Context(), id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toItemDTO(*item))
	}
}
