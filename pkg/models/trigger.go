package models

import "slices"

// WorkflowTrigger is the domain event kind that makes a rule eligible to run.
type WorkflowTrigger string

const (
	TriggerApplicationReceived WorkflowTrigger = "APPLICATION_RECEIVED"
	TriggerStageChanged        WorkflowTrigger = "STAGE_CHANGED"
	TriggerInterviewScheduled  WorkflowTrigger = "INTERVIEW_SCHEDULED"
	TriggerInterviewCompleted  WorkflowTrigger = "INTERVIEW_COMPLETED"
	TriggerScoreCalculated     WorkflowTrigger = "SCORE_CALCULATED"
	TriggerOfferSent           WorkflowTrigger = "OFFER_SENT"
	TriggerCandidateRejected   WorkflowTrigger = "CANDIDATE_REJECTED"
	TriggerTimeElapsed         WorkflowTrigger = "TIME_ELAPSED"
)

// WorkflowTriggers lists every trigger kind in declaration order.
var WorkflowTriggers = []WorkflowTrigger{
	TriggerApplicationReceived,
	TriggerStageChanged,
	TriggerInterviewScheduled,
	TriggerInterviewCompleted,
	TriggerScoreCalculated,
	TriggerOfferSent,
	TriggerCandidateRejected,
	TriggerTimeElapsed,
}

// IsValid reports whether t is a known trigger kind.
func (t WorkflowTrigger) IsValid() bool {
	return slices.Contains(WorkflowTriggers, t)
}
