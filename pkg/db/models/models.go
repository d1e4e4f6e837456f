package models

// All lists every persisted model in dependency order.
func All() []any {
	return []any{
		&Room{},
		&Guest{},
		&Staff{},
		&InventoryItem{},
		&Reservation{},
		&HousekeepingTask{},
		&StockMovement{},
		&TaskConsumption{},
		&OutboxEvent{},
	}
}
