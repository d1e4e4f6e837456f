package enums

import "fmt"

// OutboxAggregateType names the entity an outbox event describes.
type OutboxAggregateType string

const (
	AggregateRoom          OutboxAggregateType = "room"
	AggregateReservation   OutboxAggregateType = "reservation"
	AggregateTask          OutboxAggregateType = "task"
	AggregateInventoryItem OutboxAggregateType = "inventory_item"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateRoom,
	AggregateReservation,
	AggregateTask,
	AggregateInventoryItem,
}

// IsValid reports whether the value matches a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType is the topic-level name of a domain event.
type OutboxEventType string

const (
	EventReservationCheckedIn   OutboxEventType = "reservation_checked_in"
	EventReservationCheckedOut  OutboxEventType = "reservation_checked_out"
	EventReservationCancelled   OutboxEventType = "reservation_cancelled"
	EventReservationRescheduled OutboxEventType = "reservation_rescheduled"
	EventRoomCharged            OutboxEventType = "room_charged"
	EventTaskOpened             OutboxEventType = "task_opened"
	EventTaskCompleted          OutboxEventType = "task_completed"
	EventRoomStatusChanged      OutboxEventType = "room_status_changed"
	EventStockBelowMinimum      OutboxEventType = "stock_below_minimum"
)

var validEventTypes = []OutboxEventType{
	EventReservationCheckedIn,
	EventReservationCheckedOut,
	EventReservationCancelled,
	EventReservationRescheduled,
	EventRoomCharged,
	EventTaskOpened,
	EventTaskCompleted,
	EventRoomStatusChanged,
	EventStockBelowMinimum,
}

// IsValid reports whether the value matches a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
