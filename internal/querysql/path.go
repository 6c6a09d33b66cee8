package querysql

import (
	"fmt"
	"strings"
)

// jsonPath converts a dotted field path into a quoted SQLite JSON path,
// e.g. user.name becomes $."user"."name".
//
// Numeric segments index arrays in memory but would name object keys in a
// quoted JSON path, so they are rejected along with empty segments and
// segments containing quotes or backslashes.
func jsonPath(field string) (string, error) {
	if field == "" {
		return "", fmt.Errorf("empty field path: %w", ErrUnsupported)
	}

	var b strings.Builder
	b.WriteString("$")
	for _, seg := range strings.Split(field, ".") {
		switch {
		case seg == "":
			return "", fmt.Errorf("field %q has an empty segment: %w", field, ErrUnsupported)
		case strings.ContainsAny(seg, "\"\\"):
			return "", fmt.Errorf("field %q has a quoted segment: %w", field, ErrUnsupported)
		case isIndex(seg):
			return "", fmt.Errorf("field %q indexes an array: %w", field, ErrUnsupported)
		}
		b.WriteString(`."`)
		b.WriteString(seg)
		b.WriteString(`"`)
	}
	return b.String(), nil
}

func isIndex(seg string) bool {
	for _, r := range seg {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
