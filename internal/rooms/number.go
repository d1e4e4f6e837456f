package rooms

import (
	"fmt"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/hotelops-backend/pkg/errors"
)

// FormatNumber renders the canonical "<floor>-<number>" room label.
func FormatNumber(floor, number int) string {
	return fmt.Sprintf("%d-%d", floor, number)
}

// ParseNumber validates a room label and returns its floor and position.
// Leading zeros are accepted and dropped, so "03-07" resolves to "3-7".
func ParseNumber(raw string) (string, int, error) {
	floorPart, numberPart, ok := strings.Cut(strings.TrimSpace(raw), "-")
	if !ok {
		return "", 0, invalidNumber(raw)
	}
	floor, err := strconv.Atoi(floorPart)
	if err != nil || floor <= 0 {
		return "", 0, invalidNumber(raw)
	}
	number, err := strconv.Atoi(numberPart)
	if err != nil || number <= 0 {
		return "", 0, invalidNumber(raw)
	}
	return FormatNumber(floor, number), floor, nil
}

func invalidNumber(raw string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "room number must look like <floor>-<number>").
		WithDetails(map[string]any{"room": raw})
}
