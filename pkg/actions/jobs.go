package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/queue"
	"github.com/dukex/hireflow/pkg/template"
)

const defaultNotificationChannel = "in_app"

// jobID is stable for one action of one execution, so a redelivered
// enqueue does not produce a second job.
func jobID(meta Metadata) string {
	if meta.ExecutionID == "" {
		return ""
	}

	return fmt.Sprintf("%s-%d", meta.ExecutionID, meta.ActionOrder)
}

func (e *Executor) enqueue(ctx context.Context, name queue.QueueName, job queue.JobName, jobType string, payload map[string]any, meta Metadata) (string, error) {
	payload["ruleId"] = meta.RuleID
	payload["ruleName"] = meta.RuleName
	payload["executionId"] = meta.ExecutionID

	var opts []queue.JobOption
	if id := jobID(meta); id != "" {
		opts = append(opts, queue.WithJobID(id))
	}

	id, err := e.jobs.AddJob(ctx, name, job, queue.JobPayload{Type: jobType, Payload: payload}, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue %s job: %w", job, err)
	}

	return id, nil
}

func (e *Executor) sendEmail(ctx context.Context, config models.ActionConfig, input map[string]any, meta Metadata) (map[string]any, error) {
	cfg, err := configAs[models.SendEmailConfig](config)
	if err != nil {
		return nil, err
	}

	to := template.Resolve(cfg.To, input)
	subject := template.Resolve(cfg.Subject, input)

	variables := template.ResolveObject(cfg.Variables, input)
	if variables == nil {
		variables = map[string]any{}
	}

	body := map[string]any{
		"to":         to,
		"subject":    subject,
		"templateId": template.Resolve(cfg.TemplateID, input),
		"variables":  variables,
	}

	name, job, jobType := queue.QueueEmail, queue.JobSendEmail, "workflow_email"

	// A comma separated recipient list goes out as one bulk job.
	if recipients := splitRecipients(to); len(recipients) > 1 {
		name, job, jobType = queue.QueueBulkEmail, queue.JobSendBulkEmail, "workflow_bulk_email"
		body["recipients"] = recipients
	}

	id, err := e.enqueue(ctx, name, job, jobType, body, meta)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"jobId":   id,
		"queue":   string(name),
		"to":      to,
		"subject": subject,
	}, nil
}

func splitRecipients(to string) []string {
	var recipients []string

	for _, part := range strings.Split(to, ",") {
		if part = strings.TrimSpace(part); part != "" {
			recipients = append(recipients, part)
		}
	}

	return recipients
}

func (e *Executor) notifyUser(ctx context.Context, config models.ActionConfig, input map[string]any, meta Metadata) (map[string]any, error) {
	cfg, err := configAs[models.NotifyUserConfig](config)
	if err != nil {
		return nil, err
	}

	userID := template.Resolve(cfg.UserID, input)
	message := template.Resolve(cfg.Message, input)

	channel := cfg.Channel
	if channel == "" {
		channel = defaultNotificationChannel
	}

	id, err := e.enqueue(ctx, queue.QueueNotifications, queue.JobSendNotification, "workflow_notification", map[string]any{
		"userId":  userID,
		"title":   template.Resolve(cfg.Title, input),
		"message": message,
		"channel": channel,
	}, meta)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"jobId":   id,
		"userId":  userID,
		"channel": channel,
	}, nil
}

func (e *Executor) triggerWebhook(ctx context.Context, config models.ActionConfig, input map[string]any, meta Metadata) (map[string]any, error) {
	cfg, err := configAs[models.TriggerWebhookConfig](config)
	if err != nil {
		return nil, err
	}

	url := template.Resolve(cfg.URL, input)

	method := strings.ToUpper(strings.TrimSpace(cfg.Method))
	if method == "" {
		method = "POST"
	}

	headers := template.ResolveStrings(cfg.Headers, input)
	if headers == nil {
		headers = map[string]string{}
	}

	body := template.ResolveObject(cfg.Payload, input)
	if body == nil {
		body = input
	}

	id, err := e.enqueue(ctx, queue.QueueWebhooks, queue.JobDeliverWebhook, "workflow_webhook", map[string]any{
		"url":     url,
		"method":  method,
		"headers": headers,
		"payload": body,
	}, meta)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"jobId":  id,
		"url":    url,
		"method": method,
	}, nil
}

func (e *Executor) calculateScore(ctx context.Context, config models.ActionConfig, input map[string]any, meta Metadata) (map[string]any, error) {
	cfg, err := configAs[models.CalculateScoreConfig](config)
	if err != nil {
		return nil, err
	}

	applicationID := template.Resolve(cfg.ApplicationID, input)

	id, err := e.enqueue(ctx, queue.QueueAIScoring, queue.JobCalculateScore, "workflow_score", map[string]any{
		"applicationId": applicationID,
		"candidateId":   template.Resolve(cfg.CandidateID, input),
		"jobId":         template.Resolve(cfg.JobID, input),
	}, meta)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"jobId":         id,
		"applicationId": applicationID,
	}, nil
}
