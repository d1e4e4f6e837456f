package enums

import "database/sql/driver"

// StaffStatus controls whether a staff member can be assigned new tasks.
type StaffStatus string

const (
	StaffActive   StaffStatus = "active"
	StaffInactive StaffStatus = "inactive"
)

var staffStatusAliases = map[string]StaffStatus{
	"active":    StaffActive,
	"ativo":     StaffActive,
	"inactive":  StaffInactive,
	"inativo":   StaffInactive,
	"desligado": StaffInactive,
}

func (s StaffStatus) String() string {
	return string(s)
}

func (s StaffStatus) IsValid() bool {
	return s == StaffActive || s == StaffInactive
}

func ParseStaffStatus(value string) (StaffStatus, error) {
	return lookup("staff status", value, staffStatusAliases)
}

func (s *StaffStatus) Scan(value any) error {
	raw, err := scanString(value)
	if err != nil {
		return err
	}
	parsed, err := ParseStaffStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s StaffStatus) Value() (driver.Value, error) {
	return stringValue(s)
}
