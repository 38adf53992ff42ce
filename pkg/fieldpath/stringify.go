package fieldpath

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// String renders a resolved payload value as text. Both template
// substitution and string comparisons in conditions go through it, so a
// value reads the same in a rendered message and in a CONTAINS check.
//
// Strings are verbatim, numbers use the shortest decimal form, nil is
// "null", lists join the string form of their items with "," (nil items
// are empty) and objects are compact JSON.
func String(value any) string {
	if value == nil {
		return "null"
	}

	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	}

	if f, ok := Number(value); ok {
		return FormatNumber(f)
	}

	kind := reflect.TypeOf(value).Kind()
	if kind == reflect.Slice || kind == reflect.Array {
		rv := reflect.ValueOf(value)
		parts := make([]string, rv.Len())

		for i := range parts {
			if item := rv.Index(i).Interface(); item != nil {
				parts[i] = String(item)
			}
		}

		return strings.Join(parts, ",")
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return ""
	}

	return string(encoded)
}

// Number reports the float64 value of any Go numeric type.
func Number(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// FormatNumber prints f in its shortest decimal form, switching to exponent
// notation outside [1e-6, 1e21).
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}
