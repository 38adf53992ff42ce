package models

import "slices"

// ConditionOperator selects how a condition compares the field value with its value.
type ConditionOperator string

const (
	OperatorEquals              ConditionOperator = "EQUALS"
	OperatorNotEquals           ConditionOperator = "NOT_EQUALS"
	OperatorContains            ConditionOperator = "CONTAINS"
	OperatorNotContains         ConditionOperator = "NOT_CONTAINS"
	OperatorGreaterThan         ConditionOperator = "GREATER_THAN"
	OperatorLessThan            ConditionOperator = "LESS_THAN"
	OperatorGreaterThanOrEquals ConditionOperator = "GREATER_THAN_OR_EQUALS"
	OperatorLessThanOrEquals    ConditionOperator = "LESS_THAN_OR_EQUALS"
	OperatorIsEmpty             ConditionOperator = "IS_EMPTY"
	OperatorIsNotEmpty          ConditionOperator = "IS_NOT_EMPTY"
	OperatorInList              ConditionOperator = "IN_LIST"
	OperatorNotInList           ConditionOperator = "NOT_IN_LIST"
)

// ConditionOperators lists every supported operator.
var ConditionOperators = []ConditionOperator{
	OperatorEquals,
	OperatorNotEquals,
	OperatorContains,
	OperatorNotContains,
	OperatorGreaterThan,
	OperatorLessThan,
	OperatorGreaterThanOrEquals,
	OperatorLessThanOrEquals,
	OperatorIsEmpty,
	OperatorIsNotEmpty,
	OperatorInList,
	OperatorNotInList,
}

// IsValid reports whether o is a supported operator.
func (o ConditionOperator) IsValid() bool {
	return slices.Contains(ConditionOperators, o)
}

// Condition is a field/operator/value test against the triggering payload.
// Field is a dotted path into the payload, e.g. "candidate.email".
//
// Conditions of a rule are combined with AND only; there is no OR or grouping.
type Condition struct {
	Field    string            `json:"field"    yaml:"field"    validate:"required"`
	Operator ConditionOperator `json:"operator" yaml:"operator" validate:"condition_operator"`
	Value    any               `json:"value"    yaml:"value"`
}
