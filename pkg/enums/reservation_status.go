package enums

import "database/sql/driver"

type ReservationStatus string

const (
	ReservationActive      ReservationStatus = "active"
	ReservationFinalized   ReservationStatus = "finalized"
	ReservationCancelled   ReservationStatus = "cancelled"
	ReservationRescheduled ReservationStatus = "rescheduled"
)

var validReservationStatuses = []ReservationStatus{
	ReservationActive,
	ReservationFinalized,
	ReservationCancelled,
	ReservationRescheduled,
}

var reservationStatusAliases = map[string]ReservationStatus{
	"active":      ReservationActive,
	"ativa":       ReservationActive,
	"finalized":   ReservationFinalized,
	"finalizada":  ReservationFinalized,
	"cancelled":   ReservationCancelled,
	"canceled":    ReservationCancelled,
	"cancelada":   ReservationCancelled,
	"rescheduled": ReservationRescheduled,
	"reagendada":  ReservationRescheduled,
}

func (s ReservationStatus) String() string {
	return string(s)
}

func (s ReservationStatus) IsValid() bool {
	for _, candidate := range validReservationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseReservationStatus(value string) (ReservationStatus, error) {
	return lookup("reservation status", value, reservationStatusAliases)
}

func (s *ReservationStatus) Scan(value any) error {
	raw, err := scanString(value)
	if err != nil {
		return err
	}
	parsed, err := ParseReservationStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s ReservationStatus) Value() (driver.Value, error) {
	return stringValue(s)
}
