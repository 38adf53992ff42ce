package models

import (
	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that understands the rule enum tags
// workflow_trigger, action_type and condition_operator.
func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	_ = validate.RegisterValidation("workflow_trigger", func(fl validator.FieldLevel) bool {
		return WorkflowTrigger(fl.Field().String()).IsValid()
	})
	_ = validate.RegisterValidation("action_type", func(fl validator.FieldLevel) bool {
		return ActionType(fl.Field().String()).IsValid()
	})
	_ = validate.RegisterValidation("condition_operator", func(fl validator.FieldLevel) bool {
		return ConditionOperator(fl.Field().String()).IsValid()
	})

	return validate
}
