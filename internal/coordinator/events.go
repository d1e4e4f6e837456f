package coordinator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/hotelops-backend/internal/inventory"
	"github.com/angelmondragon/hotelops-backend/internal/tasks"
	"github.com/angelmondragon/hotelops-backend/pkg/db/models"
	"github.com/angelmondragon/hotelops-backend/pkg/enums"
	"github.com/angelmondragon/hotelops-backend/pkg/outbox"
)

// ReservationEvent is the payload of every reservation lifecycle event.
type ReservationEvent struct {
	ReservationID         uint                    `json:"reservation_id"`
	PreviousReservationID *uint                   `json:"previous_reservation_id,omitempty"`
	GuestID               uint                    `json:"guest_id"`
	Room                  string                  `json:"room"`
	RoomStatus            enums.RoomStatus        `json:"room_status"`
	Status                enums.ReservationStatus `json:"status"`
	CheckInDate           string                  `json:"check_in_date"`
	CheckOutDate          string                  `json:"check_out_date"`
	Nights                int                     `json:"nights"`
	Total                 string                  `json:"total"`
	Reason                *string                 `json:"reason,omitempty"`
}

// TaskEvent is the payload of task_opened and task_completed.
type TaskEvent struct {
	TaskID        uint                 `json:"task_id"`
	Room          string               `json:"room"`
	RoomStatus    enums.RoomStatus     `json:"room_status"`
	Type          enums.TaskType       `json:"task_type"`
	Status        enums.TaskStatus     `json:"status"`
	StaffID       *uint                `json:"staff_id,omitempty"`
	Assignee      string               `json:"assignee"`
	Estimated     string               `json:"estimated"`
	Actual        string               `json:"actual,omitempty"`
	Notes         string               `json:"notes,omitempty"`
	Consumed      []tasks.ConsumedItem `json:"consumed,omitempty"`
	ConsumedValue string               `json:"consumed_value,omitempty"`
}

// RoomStatusEvent is the payload of room_status_changed.
type RoomStatusEvent struct {
	Room   string           `json:"room"`
	From   enums.RoomStatus `json:"from"`
	To     enums.RoomStatus `json:"to"`
	Source string           `json:"source"`
}

// RoomChargeEvent is the payload of room_charged.
type RoomChargeEvent struct {
	ReservationID uint   `json:"reservation_id"`
	Room          string `json:"room"`
	ItemID        uint   `json:"item_id"`
	ItemName      string `json:"item_name"`
	Quantity      int    `json:"quantity"`
	UnitValue     string `json:"unit_value"`
	Total         string `json:"total"`
	MovementID    uint   `json:"movement_id"`
}

func reservationEvent(eventType enums.OutboxEventType, r *models.Reservation, room *models.Room) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateReservation,
		AggregateID:   r.ID,
		Data: ReservationEvent{
			ReservationID:         r.ID,
			PreviousReservationID: r.PreviousReservationID,
			GuestID:               r.GuestID,
			Room:                  r.RoomNumber,
			RoomStatus:            room.Status,
			Status:                r.Status,
			CheckInDate:           r.CheckInDate.Format(time.DateOnly),
			CheckOutDate:          r.CheckOutDate.Format(time.DateOnly),
			Nights:                r.Nights,
			Total:                 r.Total.StringFixed(2),
			Reason:                r.Reason,
		},
	}
}

func taskEvent(eventType enums.OutboxEventType, t *models.HousekeepingTask, room *models.Room) outbox.DomainEvent {
	payload := TaskEvent{
		TaskID:     t.ID,
		Room:       t.RoomNumber,
		RoomStatus: room.Status,
		Type:       t.Type,
		Status:     t.Status,
		StaffID:    t.StaffID,
		Assignee:   t.Assignee,
		Estimated:  tasks.FormatClock(t.EstimatedMinutes),
		Notes:      t.Notes,
	}
	if t.ActualMinutes != nil {
		payload.Actual = tasks.FormatClock(*t.ActualMinutes)
	}
	if len(t.Consumptions) > 0 {
		total := decimal.Zero
		for _, line := range t.Consumptions {
			payload.Consumed = append(payload.Consumed, tasks.ConsumedItem{ItemID: line.ItemID, Quantity: line.Quantity})
			total = total.Add(line.TotalValue)
		}
		payload.ConsumedValue = total.StringFixed(2)
	}
	return outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateTask,
		AggregateID:   t.ID,
		Data:          payload,
	}
}

func roomStatusEvent(room *models.Room, previous enums.RoomStatus, source string) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     enums.EventRoomStatusChanged,
		AggregateType: enums.AggregateRoom,
		AggregateID:   room.ID,
		Data: RoomStatusEvent{
			Room:   room.Number,
			From:   previous,
			To:     room.Status,
			Source: source,
		},
	}
}

func roomChargeEvent(r *models.Reservation, res *inventory.MovementResult) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     enums.EventRoomCharged,
		AggregateType: enums.AggregateReservation,
		AggregateID:   r.ID,
		Data: RoomChargeEvent{
			ReservationID: r.ID,
			Room:          r.RoomNumber,
			ItemID:        res.Item.ID,
			ItemName:      res.Item.Name,
			Quantity:      res.Movement.Quantity,
			UnitValue:     res.Movement.UnitValueAtTime.StringFixed(2),
			Total:         res.Movement.TotalValue.StringFixed(2),
			MovementID:    res.Movement.ID,
		},
	}
}
