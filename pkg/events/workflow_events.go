package events

import (
	"github.com/dukex/hireflow/pkg/models"
)

const (
	// Rule lifecycle.
	RuleCreatedEvent EventType = "workflow.rule_created"
	RuleUpdatedEvent EventType = "workflow.rule_updated"
	RuleDeletedEvent EventType = "workflow.rule_deleted"

	// Execution lifecycle.
	ExecutionCompletedEvent EventType = "workflow.execution_completed"
	ExecutionFailedEvent    EventType = "workflow.execution_failed"

	// Emitted by actions.
	StatusUpdatedEvent      EventType = "workflow.status_updated"
	StageMoveRequestedEvent EventType = "workflow.stage_move_requested"
	TaskCreatedEvent        EventType = "workflow.task_created"
	InterviewRequestedEvent EventType = "workflow.interview_requested"
	TalentPoolAddEvent      EventType = "workflow.talent_pool_add"

	// Approval gate.
	ApprovalRequestedEvent EventType = "workflow.approval_requested"
	ApprovalGrantedEvent   EventType = "workflow.approval_granted"
	ApprovalRejectedEvent  EventType = "workflow.approval_rejected"
)

type RuleCreated struct {
	BaseEvent

	Name     string                 `json:"name"`
	Trigger  models.WorkflowTrigger `json:"trigger"`
	IsActive bool                   `json:"is_active"`
}

func (r RuleCreated) GetType() EventType {
	return RuleCreatedEvent
}

type RuleUpdated struct {
	BaseEvent

	Name     string                 `json:"name"`
	Trigger  models.WorkflowTrigger `json:"trigger"`
	IsActive bool                   `json:"is_active"`
}

func (r RuleUpdated) GetType() EventType {
	return RuleUpdatedEvent
}

type RuleDeleted struct {
	BaseEvent
}

func (r RuleDeleted) GetType() EventType {
	return RuleDeletedEvent
}

type ExecutionCompleted struct {
	BaseEvent

	RuleName        string `json:"rule_name"`
	ActionsExecuted int    `json:"actions_executed"`
	ActionsFailed   int    `json:"actions_failed"`
	DurationMs      int64  `json:"duration_ms"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

type ExecutionFailed struct {
	BaseEvent

	RuleName     string            `json:"rule_name"`
	Error        string            `json:"error"`
	FailedAction models.ActionType `json:"failed_action,omitempty"`
	DurationMs   int64             `json:"duration_ms"`
}

func (e ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}

type StatusUpdated struct {
	BaseEvent

	EntityType models.EntityType `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Status     string            `json:"status"`
}

func (s StatusUpdated) GetType() EventType {
	return StatusUpdatedEvent
}

type StageMoveRequested struct {
	BaseEvent

	ApplicationID string `json:"application_id"`
	StageID       string `json:"stage_id"`
	Reason        string `json:"reason,omitempty"`
}

func (s StageMoveRequested) GetType() EventType {
	return StageMoveRequestedEvent
}

type TaskCreated struct {
	BaseEvent

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	AssigneeID  string `json:"assignee_id,omitempty"`
	DueInDays   int    `json:"due_in_days,omitempty"`
}

func (t TaskCreated) GetType() EventType {
	return TaskCreatedEvent
}

type InterviewRequested struct {
	BaseEvent

	ApplicationID   string   `json:"application_id"`
	InterviewType   string   `json:"interview_type,omitempty"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	InterviewerIDs  []string `json:"interviewer_ids,omitempty"`
}

func (i InterviewRequested) GetType() EventType {
	return InterviewRequestedEvent
}

type TalentPoolAdd struct {
	BaseEvent

	CandidateID string   `json:"candidate_id"`
	PoolID      string   `json:"pool_id"`
	Tags        []string `json:"tags,omitempty"`
}

func (t TalentPoolAdd) GetType() EventType {
	return TalentPoolAddEvent
}

type ApprovalRequested struct {
	BaseEvent

	ApproverID string `json:"approver_id"`
	Message    string `json:"message,omitempty"`
}

func (a ApprovalRequested) GetType() EventType {
	return ApprovalRequestedEvent
}

// ApprovalDecided is published for both outcomes of an approval gate; Type
// tells them apart.
type ApprovalDecided struct {
	BaseEvent

	DecidedBy string `json:"decided_by"`
	Comment   string `json:"comment,omitempty"`
}

func (a ApprovalDecided) GetType() EventType {
	return a.Type
}

func init() {
	register(RuleCreatedEvent, func() any { return &RuleCreated{} })
	register(RuleUpdatedEvent, func() any { return &RuleUpdated{} })
	register(RuleDeletedEvent, func() any { return &RuleDeleted{} })
	register(ExecutionCompletedEvent, func() any { return &ExecutionCompleted{} })
	register(ExecutionFailedEvent, func() any { return &ExecutionFailed{} })
	register(StatusUpdatedEvent, func() any { return &StatusUpdated{} })
	register(StageMoveRequestedEvent, func() any { return &StageMoveRequested{} })
	register(TaskCreatedEvent, func() any { return &TaskCreated{} })
	register(InterviewRequestedEvent, func() any { return &InterviewRequested{} })
	register(TalentPoolAddEvent, func() any { return &TalentPoolAdd{} })
	register(ApprovalRequestedEvent, func() any { return &ApprovalRequested{} })
	register(ApprovalGrantedEvent, func() any { return &ApprovalDecided{} })
	register(ApprovalRejectedEvent, func() any { return &ApprovalDecided{} })
}
