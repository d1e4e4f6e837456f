package enums

import "database/sql/driver"

type InventoryItemStatus string

const (
	ItemActive   InventoryItemStatus = "active"
	ItemInactive InventoryItemStatus = "inactive"
)

var itemStatusAliases = map[string]InventoryItemStatus{
	"active":   ItemActive,
	"ativo":    ItemActive,
	"inactive": ItemInactive,
	"inativo":  ItemInactive,
}

func (s InventoryItemStatus) String() string {
	return string(s)
}

func (s InventoryItemStatus) IsValid() bool {
	return s == ItemActive || s == ItemInactive
}

func ParseInventoryItemStatus(value string) (InventoryItemStatus, error) {
	return lookup("inventory item status", value, itemStatusAliases)
}

func (s *InventoryItemStatus) Scan(value any) error {
	raw, err := scanString(value)
	if err != nil {
		return err
	}
	parsed, err := ParseInventoryItemStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s InventoryItemStatus) Value() (driver.Value, error) {
	return stringValue(s)
}

// StockMovementKind tells whether a movement added or removed stock.
type StockMovementKind string

const (
	MovementInbound  StockMovementKind = "inbound"
	MovementOutbound StockMovementKind = "outbound"
)

var movementKindAliases = map[string]StockMovementKind{
	"inbound":  MovementInbound,
	"entrada":  MovementInbound,
	"outbound": MovementOutbound,
	"saida":    MovementOutbound,
}

func (k StockMovementKind) String() string {
	return string(k)
}

func (k StockMovementKind) IsValid() bool {
	return k == MovementInbound || k == MovementOutbound
}

func ParseStockMovementKind(value string) (StockMovementKind, error) {
	return lookup("stock movement kind", value, movementKindAliases)
}

func (k *StockMovementKind) Scan(value any) error {
	raw, err := scanString(value)
	if err != nil {
		return err
	}
	parsed, err := ParseStockMovementKind(raw)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k StockMovementKind) Value() (driver.Value, error) {
	return stringValue(k)
}
