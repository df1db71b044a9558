package repr

import (
	"strings"
	"unicode"
)

// LowerCamel lowers the leading initialism of an exported name as a unit:
// "ID" becomes "id", "Name" becomes "name", "FFIArray" becomes "ffiArray".
func LowerCamel(name string) string {
	runes := []rune(name)
	upper := 0
	for upper < len(runes) && runes[upper] >= 'A' && runes[upper] <= 'Z' {
		upper++
	}
	switch {
	case upper == 0:
	case upper == len(runes):
		for i := range runes {
			runes[i] += 'a' - 'A'
		}
	case upper == 1:
		runes[0] += 'a' - 'A'
	default:
		for i := 0; i < upper-1; i++ {
			runes[i] += 'a' - 'A'
		}
	}
	return string(runes)
}

// SnakeCase converts a CamelCase type name to the snake_case used in
// generated function symbols. Initialisms stay grouped: "FieldID" becomes
// "field_id", "GeoPoint" becomes "geo_point".
func SnakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			boundary := i > 0 &&
				(unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
					(i+1 < len(runes) && unicode.IsLower(runes[i+1])))
			if boundary {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
