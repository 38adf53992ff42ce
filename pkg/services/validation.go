package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/hireflow/pkg/models"
	"github.com/go-playground/validator/v10"
)

// validateRule rejects a rule definition before it reaches persistence. The
// explicit checks come first so callers get a specific sentinel; the struct
// tags then catch the remaining shape errors.
func (s *Rules) validateRule(op string, rule *models.WorkflowRule) error {
	if strings.TrimSpace(rule.Name) == "" {
		return NewValidationError(op, "RULE_NAME_REQUIRED", "rule name is required", ErrRuleNameRequired)
	}

	if !rule.Trigger.IsValid() {
		return NewValidationError(op, "UNKNOWN_TRIGGER",
			fmt.Sprintf("unknown trigger '%s'", rule.Trigger), ErrUnknownTrigger)
	}

	if len(rule.Actions) == 0 {
		return NewValidationError(op, "ACTIONS_REQUIRED", "rule must have at least one action", ErrActionsRequired)
	}

	for i, action := range rule.Actions {
		if !action.Type.IsValid() {
			return NewValidationError(op, "UNKNOWN_ACTION_TYPE",
				fmt.Sprintf("action %d has unknown type '%s'", i, action.Type), ErrUnknownActionType)
		}
	}

	for i, condition := range rule.Conditions {
		if !condition.Operator.IsValid() {
			return NewValidationError(op, "UNKNOWN_OPERATOR",
				fmt.Sprintf("condition %d has unknown operator '%s'", i, condition.Operator), ErrUnknownOperator)
		}
	}

	err := s.validate.Struct(rule)
	if err != nil {
		return NewValidationError(op, "INVALID_RULE", describeValidation(err), ErrInvalidRequest)
	}

	return nil
}

func describeValidation(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, fmt.Sprintf("%s failed on '%s'", fieldErr.Namespace(), fieldErr.Tag()))
	}

	return strings.Join(messages, "; ")
}
