package condition

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/dukex/hireflow/pkg/fieldpath"
)

// operand is a resolved field value. found is false when the path did not
// resolve, which is distinct from a present nil.
type operand struct {
	value any
	found bool
}

func present(value any) operand {
	return operand{value: value, found: true}
}

func isList(value any) bool {
	if value == nil {
		return false
	}

	kind := reflect.TypeOf(value).Kind()

	return kind == reflect.Slice || kind == reflect.Array
}

func listItems(value any) []any {
	rv := reflect.ValueOf(value)
	items := make([]any, rv.Len())

	for i := range items {
		items[i] = rv.Index(i).Interface()
	}

	return items
}

// strictEqual compares raw values without type coercion. Numbers compare by
// value across Go numeric types; lists and objects are never equal.
func strictEqual(a operand, b operand) bool {
	if !a.found || !b.found {
		return !a.found && !b.found
	}

	if a.value == nil || b.value == nil {
		return a.value == nil && b.value == nil
	}

	if af, ok := fieldpath.Number(a.value); ok {
		bf, ok := fieldpath.Number(b.value)

		return ok && af == bf
	}

	switch av := a.value.(type) {
	case string:
		bv, ok := b.value.(string)

		return ok && av == bv
	case bool:
		bv, ok := b.value.(bool)

		return ok && av == bv
	default:
		return false
	}
}

// sameValueZero is strictEqual except that NaN equals NaN, as used by list
// membership.
func sameValueZero(a operand, b operand) bool {
	if af, ok := fieldpath.Number(a.value); ok && a.found && math.IsNaN(af) {
		bf, ok := fieldpath.Number(b.value)

		return ok && b.found && math.IsNaN(bf)
	}

	return strictEqual(a, b)
}

// toNumber converts an operand to a number the way loosely typed payloads
// expect: nil is 0, booleans are 0 or 1, strings are parsed after trimming
// with the empty string as 0, and anything else is NaN.
func toNumber(o operand) float64 {
	if !o.found {
		return math.NaN()
	}

	if o.value == nil {
		return 0
	}

	if f, ok := fieldpath.Number(o.value); ok {
		return f
	}

	switch v := o.value.(type) {
	case bool:
		if v {
			return 1
		}

		return 0
	case string:
		return parseNumber(v)
	}

	if isList(o.value) {
		return parseNumber(toString(o))
	}

	return math.NaN()
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(s, "_") {
		return math.NaN()
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}

	return f
}

// toString renders an operand as text: absent is "undefined", anything
// present takes its payload string form.
func toString(o operand) string {
	if !o.found {
		return "undefined"
	}

	return fieldpath.String(o.value)
}
