package models

import (
	"encoding/json"
	"fmt"
	"slices"
)

// ActionType identifies one of the side-effecting steps a rule can run.
type ActionType string

const (
	ActionSendEmail         ActionType = "SEND_EMAIL"
	ActionUpdateStatus      ActionType = "UPDATE_STATUS"
	ActionMoveStage         ActionType = "MOVE_STAGE"
	ActionCreateTask        ActionType = "CREATE_TASK"
	ActionNotifyUser        ActionType = "NOTIFY_USER"
	ActionTriggerWebhook    ActionType = "TRIGGER_WEBHOOK"
	ActionScheduleInterview ActionType = "SCHEDULE_INTERVIEW"
	ActionCalculateScore    ActionType = "CALCULATE_SCORE"
	ActionAddToTalentPool   ActionType = "ADD_TO_TALENT_POOL"
	ActionRequestApproval   ActionType = "REQUEST_APPROVAL"
)

// ActionTypes lists every known action kind.
var ActionTypes = []ActionType{
	ActionSendEmail,
	ActionUpdateStatus,
	ActionMoveStage,
	ActionCreateTask,
	ActionNotifyUser,
	ActionTriggerWebhook,
	ActionScheduleInterview,
	ActionCalculateScore,
	ActionAddToTalentPool,
	ActionRequestApproval,
}

// IsValid reports whether t is a known action kind.
func (t ActionType) IsValid() bool {
	return slices.Contains(ActionTypes, t)
}

// ActionConfig is the kind-specific payload of an Action.
type ActionConfig interface {
	ActionType() ActionType
}

type SendEmailConfig struct {
	To         string         `json:"to"`
	Subject    string         `json:"subject,omitempty"`
	TemplateID string         `json:"templateId,omitempty"`
	Variables  map[string]any `json:"variables,omitempty"`
}

func (SendEmailConfig) ActionType() ActionType { return ActionSendEmail }

// EntityType names the record UPDATE_STATUS writes to.
type EntityType string

const (
	EntityApplication EntityType = "application"
	EntityCandidate   EntityType = "candidate"
	EntityJob         EntityType = "job"
)

// IsValid reports whether t names a writable entity kind.
func (t EntityType) IsValid() bool {
	switch t {
	case EntityApplication, EntityCandidate, EntityJob:
		return true
	default:
		return false
	}
}

type UpdateStatusConfig struct {
	EntityType EntityType `json:"entityType,omitempty"`
	EntityID   string     `json:"entityId"`
	Status     string     `json:"status"`
}

func (UpdateStatusConfig) ActionType() ActionType { return ActionUpdateStatus }

type MoveStageConfig struct {
	ApplicationID string `json:"applicationId"`
	StageID       string `json:"stageId"`
	Reason        string `json:"reason,omitempty"`
}

func (MoveStageConfig) ActionType() ActionType { return ActionMoveStage }

type CreateTaskConfig struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	AssigneeID  string `json:"assigneeId,omitempty"`
	DueInDays   int    `json:"dueInDays,omitempty"`
}

func (CreateTaskConfig) ActionType() ActionType { return ActionCreateTask }

type NotifyUserConfig struct {
	UserID  string `json:"userId"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
	Channel string `json:"channel,omitempty"`
}

func (NotifyUserConfig) ActionType() ActionType { return ActionNotifyUser }

type TriggerWebhookConfig struct {
	URL     string            `json:"url"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Payload map[string]any    `json:"payload,omitempty"`
}

func (TriggerWebhookConfig) ActionType() ActionType { return ActionTriggerWebhook }

type ScheduleInterviewConfig struct {
	ApplicationID   string   `json:"applicationId"`
	InterviewType   string   `json:"interviewType,omitempty"`
	DurationMinutes int      `json:"durationMinutes,omitempty"`
	InterviewerIDs  []string `json:"interviewerIds,omitempty"`
}

func (ScheduleInterviewConfig) ActionType() ActionType { return ActionScheduleInterview }

type CalculateScoreConfig struct {
	ApplicationID string `json:"applicationId"`
	CandidateID   string `json:"candidateId,omitempty"`
	JobID         string `json:"jobId,omitempty"`
}

func (CalculateScoreConfig) ActionType() ActionType { return ActionCalculateScore }

type AddToTalentPoolConfig struct {
	CandidateID string   `json:"candidateId"`
	PoolID      string   `json:"poolId"`
	Tags        []string `json:"tags,omitempty"`
}

func (AddToTalentPoolConfig) ActionType() ActionType { return ActionAddToTalentPool }

type RequestApprovalConfig struct {
	ApproverID string `json:"approverId"`
	Message    string `json:"message,omitempty"`
}

func (RequestApprovalConfig) ActionType() ActionType { return ActionRequestApproval }

// UnknownActionConfig holds the raw config of an action whose type is not
// recognised, so that validation can reject it with a meaningful error.
type UnknownActionConfig struct {
	Kind ActionType
	Raw  map[string]any
}

func (u UnknownActionConfig) ActionType() ActionType { return u.Kind }

var actionConfigFactories = map[ActionType]func() ActionConfig{
	ActionSendEmail:         func() ActionConfig { return &SendEmailConfig{} },
	ActionUpdateStatus:      func() ActionConfig { return &UpdateStatusConfig{} },
	ActionMoveStage:         func() ActionConfig { return &MoveStageConfig{} },
	ActionCreateTask:        func() ActionConfig { return &CreateTaskConfig{} },
	ActionNotifyUser:        func() ActionConfig { return &NotifyUserConfig{} },
	ActionTriggerWebhook:    func() ActionConfig { return &TriggerWebhookConfig{} },
	ActionScheduleInterview: func() ActionConfig { return &ScheduleInterviewConfig{} },
	ActionCalculateScore:    func() ActionConfig { return &CalculateScoreConfig{} },
	ActionAddToTalentPool:   func() ActionConfig { return &AddToTalentPoolConfig{} },
	ActionRequestApproval:   func() ActionConfig { return &RequestApprovalConfig{} },
}

// Action is one ordered, configured step of a rule.
type Action struct {
	Type          ActionType   `json:"type"          validate:"action_type"`
	Config        ActionConfig `json:"config"`
	Order         int          `json:"order"         validate:"min=0"`
	StopOnFailure bool         `json:"stopOnFailure"`
}

type actionWire struct {
	Type          ActionType      `json:"type"`
	Config        json.RawMessage `json:"config"`
	Order         int             `json:"order"`
	StopOnFailure bool            `json:"stopOnFailure"`
}

// MarshalJSON encodes the action with its kind-specific config under "config".
func (a Action) MarshalJSON() ([]byte, error) {
	var config any = map[string]any{}

	switch c := a.Config.(type) {
	case nil:
	case UnknownActionConfig:
		if c.Raw != nil {
			config = c.Raw
		}
	case *UnknownActionConfig:
		if c.Raw != nil {
			config = c.Raw
		}
	default:
		config = c
	}

	raw, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s config: %w", a.Type, err)
	}

	return json.Marshal(actionWire{
		Type:          a.Type,
		Config:        raw,
		Order:         a.Order,
		StopOnFailure: a.StopOnFailure,
	})
}

// UnmarshalJSON decodes "config" into the struct registered for "type".
func (a *Action) UnmarshalJSON(data []byte) error {
	var wire actionWire

	err := json.Unmarshal(data, &wire)
	if err != nil {
		return err
	}

	config, err := DecodeActionConfig(wire.Type, wire.Config)
	if err != nil {
		return err
	}

	a.Type = wire.Type
	a.Config = config
	a.Order = wire.Order
	a.StopOnFailure = wire.StopOnFailure

	return nil
}

// DecodeActionConfig decodes raw JSON into the config type of the given kind.
// Unknown kinds yield an UnknownActionConfig instead of an error.
func DecodeActionConfig(actionType ActionType, raw json.RawMessage) (ActionConfig, error) {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}

	factory, ok := actionConfigFactories[actionType]
	if !ok {
		var values map[string]any

		err := json.Unmarshal(raw, &values)
		if err != nil {
			return nil, fmt.Errorf("invalid config for action %q: %w", actionType, err)
		}

		return UnknownActionConfig{Kind: actionType, Raw: values}, nil
	}

	config := factory()

	err := json.Unmarshal(raw, config)
	if err != nil {
		return nil, fmt.Errorf("invalid config for action %s: %w", actionType, err)
	}

	return config, nil
}

// ActionConfigFromMap builds a typed config from a loosely typed map, as found
// in visual builder nodes.
func ActionConfigFromMap(actionType ActionType, values map[string]any) (ActionConfig, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("invalid config for action %s: %w", actionType, err)
	}

	return DecodeActionConfig(actionType, raw)
}
