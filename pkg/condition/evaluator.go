// Package condition evaluates rule conditions against a trigger payload.
package condition

import (
	"strings"

	"github.com/dukex/hireflow/pkg/fieldpath"
	"github.com/dukex/hireflow/pkg/models"
)

type comparator func(field operand, expected any) bool

var comparators = map[models.ConditionOperator]comparator{
	models.OperatorEquals: func(field operand, expected any) bool {
		return strictEqual(field, present(expected))
	},
	models.OperatorNotEquals: func(field operand, expected any) bool {
		return !strictEqual(field, present(expected))
	},
	models.OperatorContains: func(field operand, expected any) bool {
		return strings.Contains(toString(field), toString(present(expected)))
	},
	models.OperatorNotContains: func(field operand, expected any) bool {
		return !strings.Contains(toString(field), toString(present(expected)))
	},
	models.OperatorGreaterThan: func(field operand, expected any) bool {
		return toNumber(field) > toNumber(present(expected))
	},
	models.OperatorLessThan: func(field operand, expected any) bool {
		return toNumber(field) < toNumber(present(expected))
	},
	models.OperatorGreaterThanOrEquals: func(field operand, expected any) bool {
		return toNumber(field) >= toNumber(present(expected))
	},
	models.OperatorLessThanOrEquals: func(field operand, expected any) bool {
		return toNumber(field) <= toNumber(present(expected))
	},
	models.OperatorIsEmpty: func(field operand, _ any) bool {
		return isEmpty(field)
	},
	models.OperatorIsNotEmpty: func(field operand, _ any) bool {
		return !isEmpty(field)
	},
	models.OperatorInList: func(field operand, expected any) bool {
		return isList(expected) && inList(field, expected)
	},
	models.OperatorNotInList: func(field operand, expected any) bool {
		return !isList(expected) || !inList(field, expected)
	},
}

// Evaluate reports whether every condition holds for input. An empty list
// always holds.
func Evaluate(conditions []models.Condition, input map[string]any) bool {
	for _, c := range conditions {
		if !EvaluateCondition(c, input) {
			return false
		}
	}

	return true
}

// EvaluateCondition evaluates a single condition. Unknown operators never hold.
func EvaluateCondition(c models.Condition, input map[string]any) bool {
	compare, ok := comparators[c.Operator]
	if !ok {
		return false
	}

	value, found := fieldpath.Lookup(input, c.Field)

	return compare(operand{value: value, found: found}, c.Value)
}

// Supports reports whether the evaluator implements op.
func Supports(op models.ConditionOperator) bool {
	_, ok := comparators[op]

	return ok
}

func isEmpty(field operand) bool {
	if !field.found || field.value == nil {
		return true
	}

	s, ok := field.value.(string)

	return ok && s == ""
}

func inList(field operand, list any) bool {
	for _, item := range listItems(list) {
		if sameValueZero(field, present(item)) {
			return true
		}
	}

	return false
}
