package controllers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/hotelops-backend/internal/inventory"
	"github.com/angelmondragon/hotelops-backend/internal/tasks"
	"github.com/angelmondragon/hotelops-backend/pkg/db/models"
	"github.com/angelmondragon/hotelops-backend/pkg/enums"
)

type roomDTO struct {
	ID     uint             `json:"id"`
	Number string           `json:"number"`
	Floor  int              `json:"floor"`
	Status enums.RoomStatus `json:"status"`
	Family enums.RoomFamily `json:"family"`
}

func toRoomDTO(room models.Room) roomDTO {
	return roomDTO{
		ID:     room.ID,
		Number: room.Number,
		Floor:  room.Floor,
		Status: room.Status,
		Family: room.Status.Family(),
	}
}

type guestDTO struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Document  string  `json:"document"`
	Phone     string  `json:"phone,omitempty"`
	Plate     string  `json:"plate,omitempty"`
	BirthDate *string `json:"birth_date,omitempty"`
}

func toGuestDTO(guest models.Guest) guestDTO {
	dto := guestDTO{
		ID:       guest.ID,
		Name:     guest.Name,
		Document: guest.Document,
		Phone:    guest.Phone,
		Plate:    guest.Plate,
	}
	if guest.BirthDate != nil {
		formatted := guest.BirthDate.Format(time.DateOnly)
		dto.BirthDate = &formatted
	}
	return dto
}

type staffDTO struct {
	ID     uint              `json:"id"`
	Name   string            `json:"name"`
	Role   string            `json:"role"`
	Status enums.StaffStatus `json:"status"`
}

func toStaffDTO(member models.Staff) staffDTO {
	return staffDTO{ID: member.ID, Name: member.Name, Role: member.Role, Status: member.Status}
}

type reservationDTO struct {
	ID                    uint                    `json:"id"`
	GuestID               uint                    `json:"guest_id"`
	GuestName             string                  `json:"guest_name"`
	GuestDocument         string                  `json:"guest_document"`
	RoomNumber            string                  `json:"room_number"`
	CheckInDate           string                  `json:"check_in_date"`
	CheckOutDate          string                  `json:"check_out_date"`
	Nights                int                     `json:"nights"`
	NightlyRate           decimal.Decimal         `json:"nightly_rate"`
	Total                 decimal.Decimal         `json:"total"`
	Status                enums.ReservationStatus `json:"status"`
	Reason                *string                 `json:"reason,omitempty"`
	PreviousReservationID *uint                   `json:"previous_reservation_id,omitempty"`
}

func toReservationDTO(r models.Reservation) reservationDTO {
	return reservationDTO{
		ID:                    r.ID,
		GuestID:               r.GuestID,
		GuestName:             r.GuestName,
		GuestDocument:         r.GuestDocument,
		RoomNumber:            r.RoomNumber,
		CheckInDate:           r.CheckInDate.Format(time.DateOnly),
		CheckOutDate:          r.CheckOutDate.Format(time.DateOnly),
		Nights:                r.Nights,
		NightlyRate:           r.NightlyRate,
		Total:                 r.Total,
		Status:                r.Status,
		Reason:                r.Reason,
		PreviousReservationID: r.PreviousReservationID,
	}
}

func toReservationDTOs(rows []models.Reservation) []reservationDTO {
	out := make([]reservationDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, toReservationDTO(r))
	}
	return out
}

type consumptionDTO struct {
	ItemID     uint            `json:"item_id"`
	ItemName   string          `json:"item_name"`
	Quantity   int             `json:"quantity"`
	UnitValue  decimal.Decimal `json:"unit_value"`
	TotalValue decimal.Decimal `json:"total_value"`
}

type taskDTO struct {
	ID               uint             `json:"id"`
	RoomNumber       string           `json:"room_number"`
	StaffID          *uint            `json:"staff_id,omitempty"`
	Assignee         string           `json:"assignee"`
	Type             enums.TaskType   `json:"type"`
	Label            string           `json:"label"`
	Status           enums.TaskStatus `json:"status"`
	EstimatedMinutes int              `json:"estimated_minutes"`
	Estimated        string           `json:"estimated"`
	ActualMinutes    *int             `json:"actual_minutes,omitempty"`
	Actual           string           `json:"actual,omitempty"`
	Notes            string           `json:"notes,omitempty"`
	OpenedAt         time.Time        `json:"opened_at"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
	Consumptions     []consumptionDTO `json:"consumptions"`
}

func toTaskDTO(task models.HousekeepingTask) taskDTO {
	dto := taskDTO{
		ID:               task.ID,
		RoomNumber:       task.RoomNumber,
		StaffID:          task.StaffID,
		Assignee:         task.Assignee,
		Type:             task.Type,
		Label:            task.Type.Label(),
		Status:           task.Status,
		EstimatedMinutes: task.EstimatedMinutes,
		Estimated:        tasks.FormatClock(task.EstimatedMinutes),
		ActualMinutes:    task.ActualMinutes,
		Notes:            task.Notes,
		OpenedAt:         task.OpenedAt,
		CompletedAt:      task.CompletedAt,
		Consumptions:     make([]consumptionDTO, 0, len(task.Consumptions)),
	}
	if task.ActualMinutes != nil {
		dto.Actual = tasks.FormatClock(*task.ActualMinutes)
	}
	for _, c := range task.Consumptions {
		dto.Consumptions = append(dto.Consumptions, consumptionDTO{
			ItemID:     c.ItemID,
			ItemName:   c.ItemName,
			Quantity:   c.Quantity,
			UnitValue:  c.UnitValue,
			TotalValue: c.TotalValue,
		})
	}
	return dto
}

func toTaskDTOs(rows []models.HousekeepingTask) []taskDTO {
	out := make([]taskDTO, 0, len(rows))
	for _, t := range rows {
		out = append(out, toTaskDTO(t))
	}
	return out
}

type itemDTO struct {
	ID             uint                      `json:"id"`
	Name           string                    `json:"name"`
	Category       string                    `json:"category,omitempty"`
	Unit           string                    `json:"unit,omitempty"`
	QuantityOnHand int                       `json:"quantity_on_hand"`
	UnitValue      decimal.Decimal           `json:"unit_value"`
	MinThreshold   int                       `json:"min_threshold"`
	MaxThreshold   int                       `json:"max_threshold"`
	Status         enums.InventoryItemStatus `json:"status"`
	BelowMinimum   bool                      `json:"below_minimum"`
	Notes          string                    `json:"notes,omitempty"`
}

func toItemDTO(item models.InventoryItem) itemDTO {
	return itemDTO{
		ID:             item.ID,
		Name:           item.Name,
		Category:       item.Category,
		Unit:           item.Unit,
		QuantityOnHand: item.QuantityOnHand,
		UnitValue:      item.UnitValue,
		MinThreshold:   item.MinThreshold,
		MaxThreshold:   item.MaxThreshold,
		Status:         item.Status,
		BelowMinimum:   item.BelowMinimum(),
		Notes:          item.Notes,
	}
}

type movementDTO struct {
	ID              uint                    `json:"id"`
	ItemID          uint                    `json:"item_id"`
	Kind            enums.StockMovementKind `json:"kind"`
	Quantity        int                     `json:"quantity"`
	UnitValueAtTime decimal.Decimal         `json:"unit_value_at_time"`
	TotalValue      decimal.Decimal         `json:"total_value"`
	QuantityAfter   int                     `json:"quantity_after"`
	Note            string                  `json:"note,omitempty"`
	TaskID          *uint                   `json:"task_id,omitempty"`
	ReservationID   *uint                   `json:"reservation_id,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
}

func toMovementDTO(m models.StockMovement) movementDTO {
	return movementDTO{
		ID:              m.ID,
		ItemID:          m.ItemID,
		Kind:            m.Kind,
		Quantity:        m.Quantity,
		UnitValueAtTime: m.UnitValueAtTime,
		TotalValue:      m.TotalValue,
		QuantityAfter:   m.QuantityAfter,
		Note:            m.Note,
		TaskID:          m.TaskID,
		ReservationID:   m.ReservationID,
		CreatedAt:       m.CreatedAt,
	}
}

type movementResultDTO struct {
	Item     itemDTO     `json:"item"`
	Movement movementDTO `json:"movement"`
}

func toMovementResultDTO(res inventory.MovementResult) movementResultDTO {
	return movementResultDTO{Item: toItemDTO(res.Item), Movement: toMovementDTO(res.Movement)}
}
