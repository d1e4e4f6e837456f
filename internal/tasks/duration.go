package tasks

import (
	"fmt"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/hotelops-backend/pkg/errors"
)

// ParseClock converts an "HH:MM" duration into minutes. A bare integer is
// read as minutes.
func ParseClock(raw string) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "duration required")
	}
	hours, minutes, hasColon := strings.Cut(value, ":")
	if !hasColon {
		total, err := strconv.Atoi(value)
		if err != nil || total < 0 {
			return 0, invalidClock(raw)
		}
		return total, nil
	}
	h, err := strconv.Atoi(hours)
	if err != nil || h < 0 {
		return 0, invalidClock(raw)
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || m < 0 || m > 59 {
		return 0, invalidClock(raw)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes as "HH:MM".
func FormatClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func invalidClock(raw string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "duration must be HH:MM").
		WithDetails(map[string]any{"duration": raw})
}
