package services

import (
	"context"
	"fmt"

	"github.com/dukex/hireflow/pkg/models"
)

type BuilderRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	IsActive    *bool               `json:"isActive,omitempty"`
	CreatedBy   string              `json:"createdBy"`
	Graph       models.BuilderGraph `json:"graph"`
}

// CreateRuleFromBuilder turns a visual builder graph into a rule. Action order
// is the position of the node among the action nodes; edges are ignored.
func (s *Rules) CreateRuleFromBuilder(ctx context.Context, req BuilderRequest) (*models.WorkflowRule, error) {
	create, err := s.ruleFromGraph(req)
	if err != nil {
		return nil, err
	}

	return s.CreateRule(ctx, *create)
}

func (s *Rules) ruleFromGraph(req BuilderRequest) (*CreateRuleRequest, error) {
	const op = "CreateRuleFromBuilder"

	err := s.validate.Struct(req.Graph)
	if err != nil {
		return nil, NewValidationError(op, "INVALID_BUILDER_GRAPH", describeValidation(err), ErrInvalidBuilderGraph)
	}

	create := &CreateRuleRequest{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
		CreatedBy:   req.CreatedBy,
		Conditions:  []models.Condition{},
	}

	triggers := 0

	for _, node := range req.Graph.Nodes {
		switch node.Type {
		case models.BuilderNodeTrigger:
			triggers++

			trigger, _ := node.Data["trigger"].(string)
			create.Trigger = models.WorkflowTrigger(trigger)

		case models.BuilderNodeCondition:
			field, _ := node.Data["field"].(string)
			operator, _ := node.Data["operator"].(string)

			create.Conditions = append(create.Conditions, models.Condition{
				Field:    field,
				Operator: models.ConditionOperator(operator),
				Value:    node.Data["value"],
			})

		case models.BuilderNodeAction:
			action, err := actionFromNode(node, len(create.Actions))
			if err != nil {
				return nil, NewValidationError(op, "INVALID_ACTION_NODE",
					fmt.Sprintf("node %s: %v", node.ID, err), ErrInvalidBuilderGraph)
			}

			create.Actions = append(create.Actions, action)
		}
	}

	if triggers != 1 {
		return nil, NewValidationError(op, "TRIGGER_NODE_COUNT",
			fmt.Sprintf("graph must have exactly one trigger node, found %d", triggers), ErrInvalidBuilderGraph)
	}

	return create, nil
}

func actionFromNode(node models.BuilderNode, order int) (models.Action, error) {
	actionType, _ := node.Data["type"].(string)
	stopOnFailure, _ := node.Data["stopOnFailure"].(bool)

	values, _ := node.Data["config"].(map[string]any)
	if values == nil {
		values = map[string]any{}
	}

	config, err := models.ActionConfigFromMap(models.ActionType(actionType), values)
	if err != nil {
		return models.Action{}, err
	}

	return models.Action{
		Type:          models.ActionType(actionType),
		Config:        config,
		Order:         order,
		StopOnFailure: stopOnFailure,
	}, nil
}
