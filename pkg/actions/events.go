package actions

import (
	"context"
	"fmt"

	"github.com/dukex/hireflow/pkg/eventbus"
	"github.com/dukex/hireflow/pkg/events"
	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/template"
)

func baseEvent(eventType events.EventType, meta Metadata) events.BaseEvent {
	return events.NewBaseEvent(eventType, meta.RuleID).WithExecution(meta.ExecutionID)
}

func (e *Executor) publish(ctx context.Context, key string, event eventbus.Event) error {
	if err := e.publisher.Publish(ctx, key, event); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.GetType(), err)
	}

	return nil
}

func (e *Executor) updateStatus(ctx context.Context, config models.ActionConfig, input map[string]any, meta Metadata) (map[string]any, error) {
	cfg, err := configAs[models.UpdateStatusConfig](config)
	if err != nil {
		return nil, err
	}

	entityType := models.EntityType(template.Resolve(string(cfg.EntityType), input))
	if entityType == "" {
		entityType = models.EntityApplication
	}

	entityID := template.Resolve(cfg.EntityID, input)
	status := template.Resolve(cfg.Status, input)

	if err := required(field{"entityId", entityID}, field{"status", status}); err != nil {
		return nil, err
	}

	if err := e.entities.UpdateStatus(ctx, entityType, entityID, status); err != nil {
		return nil, fmt.Errorf("failed to update %s %s: %w", entityType, entityID, err)
	}

	err = e.publish(ctx, entityID, events.StatusUpdated{
		BaseEvent:  baseEvent(events.StatusUpdatedEvent, meta),
		EntityType: entityType,
		EntityID:   entityID,
		Status:     status,
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"entityType": string(entityType),
		"entityId":   entityID,
		"status":     status,
	}, nil
}

func (e *Executor) moveStage(ctx context.Context, config models.ActionConfig, input map[string]any, meta Metadata) (map[string]any, error) {
	cfg, err := configAs[models.MoveStageConfig](config)
	if err != nil {
		return nil, err
	}

	applicationID := template.Resolve(cfg.ApplicationID, input)
	stageID := template.Resolve(cfg.StageID, input)

	event := events.StageMoveRequested{
		BaseEvent:     baseEvent(events.StageMoveRequestedEvent, meta),
		ApplicationID: applicationID,
		StageID:       stageID,
		Reason:        template.Resolve(cfg.Reason, input),
	}

	if err := e.publish(ctx, applicationID, event); err != nil {
		return nil, err
	}

	return map[string]any{
		"eventId":       event.ID,
		"applicationId": applicationID,
		"stageId":       stageID,
	}, nil
}

func (e *Executor) createTask(ctx context.Context, config models.ActionConfig, input map[string]any, meta Metadata) (map[string]any, error) {
	cfg, err := configAs[models.CreateTaskConfig](config)
	if err != nil {
		return nil, err
	}

	title := template.Resolve(cfg.Title, input)

	event := events.TaskCreated{
		BaseEvent:   baseEvent(events.TaskCreatedEvent, meta),
		Title:       title,
		Description: template.Resolve(cfg.Description, input),
		AssigneeID:  template.Resolve(cfg.AssigneeID, input),
		DueInDays:   cfg.DueInDays,
	}

	if err := e.publish(ctx, meta.ExecutionID, event); err != nil {
		return nil, err
	}

	result := map[string]any{
		"eventId":    event.ID,
		"title":      title,
		"assigneeId": event.AssigneeID,
	}

	if cfg.DueInDays > 0 {
		result["dueDate"] = e.now().UTC().AddDate(0, 0, cfg.DueInDays).Format("2006-01-02")
	}

	return result, nil
}

func (e *Executor) scheduleInterview(ctx context.Context, config models.ActionConfig, input map[string]any, meta Metadata) (map[string]any, error) {
	cfg, err := configAs[models.ScheduleInterviewConfig](config)
	if err != nil {
		return nil, err
	}

	applicationID := template.Resolve(cfg.ApplicationID, input)

	event := events.InterviewRequested{
		BaseEvent:       baseEvent(events.InterviewRequestedEvent, meta),
		ApplicationID:   applicationID,
		InterviewType:   template.Resolve(cfg.InterviewType, input),
		DurationMinutes: cfg.DurationMinutes,
		InterviewerIDs:  template.ResolveEach(cfg.InterviewerIDs, input),
	}

	if err := e.publish(ctx, applicationID, event); err != nil {
		return nil, err
	}

	return map[string]any{
		"eventId":       event.ID,
		"applicationId": applicationID,
		"interviewType": event.InterviewType,
	}, nil
}

func (e *Executor) addToTalentPool(ctx context.Context, config models.ActionConfig, input map[string]any, meta Metadata) (map[string]any, error) {
	cfg, err := configAs[models.AddToTalentPoolConfig](config)
	if err != nil {
		return nil, err
	}

	candidateID := template.Resolve(cfg.CandidateID, input)
	poolID := template.Resolve(cfg.PoolID, input)

	event := events.TalentPoolAdd{
		BaseEvent:   baseEvent(events.TalentPoolAddEvent, meta),
		CandidateID: candidateID,
		PoolID:      poolID,
		Tags:        template.ResolveEach(cfg.Tags, input),
	}

	if err := e.publish(ctx, candidateID, event); err != nil {
		return nil, err
	}

	return map[string]any{
		"eventId":     event.ID,
		"candidateId": candidateID,
		"poolId":      poolID,
	}, nil
}

// requestApproval only announces the request; pausing the chain is up to the
// caller, which looks at the awaitingApproval flag in the result.
func (e *Executor) requestApproval(ctx context.Context, config models.ActionConfig, input map[string]any, meta Metadata) (map[string]any, error) {
	cfg, err := configAs[models.RequestApprovalConfig](config)
	if err != nil {
		return nil, err
	}

	approverID := template.Resolve(cfg.ApproverID, input)
	message := template.Resolve(cfg.Message, input)

	err = e.publish(ctx, meta.ExecutionID, events.ApprovalRequested{
		BaseEvent:  baseEvent(events.ApprovalRequestedEvent, meta),
		ApproverID: approverID,
		Message:    message,
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		AwaitingApprovalKey: true,
		"approverId":        approverID,
		"message":           message,
	}, nil
}

// AwaitingApprovalKey is set to true in the result of a REQUEST_APPROVAL action.
const AwaitingApprovalKey = "awaitingApproval"
