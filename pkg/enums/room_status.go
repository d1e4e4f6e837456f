package enums

import "database/sql/driver"

// RoomStatus is the persisted state of a room.
type RoomStatus string

const (
	RoomFree           RoomStatus = "free"
	RoomReserved       RoomStatus = "reserved"
	RoomOccupied       RoomStatus = "occupied"
	RoomInHousekeeping RoomStatus = "in_housekeeping"
	RoomInCleaning     RoomStatus = "in_cleaning"
	RoomInMaintenance  RoomStatus = "in_maintenance"
	RoomBlocked        RoomStatus = "blocked"
)

var validRoomStatuses = []RoomStatus{
	RoomFree,
	RoomReserved,
	RoomOccupied,
	RoomInHousekeeping,
	RoomInCleaning,
	RoomInMaintenance,
	RoomBlocked,
}

var roomStatusAliases = map[string]RoomStatus{
	"free":            RoomFree,
	"livre":           RoomFree,
	"reserved":        RoomReserved,
	"reservado":       RoomReserved,
	"occupied":        RoomOccupied,
	"ocupado":         RoomOccupied,
	"em_uso":          RoomOccupied,
	"in_housekeeping": RoomInHousekeeping,
	"em_arrumacao":    RoomInHousekeeping,
	"in_cleaning":     RoomInCleaning,
	"em_limpeza":      RoomInCleaning,
	"in_maintenance":  RoomInMaintenance,
	"em_manutencao":   RoomInMaintenance,
	"blocked":         RoomBlocked,
	"bloqueado":       RoomBlocked,
}

// RoomFamily groups statuses by the entity that owns the room.
type RoomFamily string

const (
	FamilyFree      RoomFamily = "free"
	FamilyOccupancy RoomFamily = "occupancy"
	FamilyTask      RoomFamily = "task"
)

func (s RoomStatus) String() string {
	return string(s)
}

func (s RoomStatus) IsValid() bool {
	for _, candidate := range validRoomStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Family returns the owning family of the status. Unknown values report "".
func (s RoomStatus) Family() RoomFamily {
	switch s {
	case RoomFree:
		return FamilyFree
	case RoomReserved, RoomOccupied:
		return FamilyOccupancy
	case RoomInHousekeeping, RoomInCleaning, RoomInMaintenance, RoomBlocked:
		return FamilyTask
	default:
		return ""
	}
}

// ParseRoomStatus accepts canonical values and legacy spellings.
func ParseRoomStatus(value string) (RoomStatus, error) {
	return lookup("room status", value, roomStatusAliases)
}

func (s *RoomStatus) Scan(value any) error {
	raw, err := scanString(value)
	if err != nil {
		return err
	}
	parsed, err := ParseRoomStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s RoomStatus) Value() (driver.Value, error) {
	return stringValue(s)
}
