package enums

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonicalize folds a stored status string into a lowercase snake key:
// accents and symbols are dropped, camel case and spaces become underscores.
// "Em Arrumação", "em_arrumacao" and "EmArrumacao" all yield "em_arrumacao".
func Canonicalize(value string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripper, value)
	if err != nil {
		folded = value
	}

	var b strings.Builder
	pendingSep := false
	var prev rune
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if unicode.IsUpper(r) && unicode.IsLower(prev) {
				pendingSep = true
			}
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingSep = true
		}
		prev = r
	}
	return b.String()
}

func lookup[T ~string](kind, value string, aliases map[string]T) (T, error) {
	if v, ok := aliases[Canonicalize(value)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("invalid %s %q", kind, value)
}

func scanString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unsupported enum source %T", value)
	}
}

func stringValue[T ~string](v T) (driver.Value, error) {
	return string(v), nil
}
