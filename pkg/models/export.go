package models

import "time"

// RuleExportVersion is the version tag written to and accepted from exports.
const RuleExportVersion = "1.0"

// RuleExport is the portable snapshot of a rule definition.
type RuleExport struct {
	Name       string          `json:"name"`
	Trigger    WorkflowTrigger `json:"trigger"`
	Conditions []Condition     `json:"conditions"`
	Actions    []Action        `json:"actions"`
	ExportedAt time.Time       `json:"exportedAt"`
	Version    string          `json:"version"`
}

// NewRuleExport snapshots rule at the given time.
func NewRuleExport(rule *WorkflowRule, at time.Time) *RuleExport {
	conditions := rule.Conditions
	if conditions == nil {
		conditions = []Condition{}
	}

	return &RuleExport{
		Name:       rule.Name,
		Trigger:    rule.Trigger,
		Conditions: conditions,
		Actions:    rule.Actions,
		ExportedAt: at.UTC(),
		Version:    RuleExportVersion,
	}
}
