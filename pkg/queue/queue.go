// Package queue defines the deferred job contract used by actions that hand
// work to downstream workers (email delivery, notifications, webhooks, scoring).
package queue

import (
	"context"
	"errors"
	"time"
)

type QueueName string

const (
	QueueEmail         QueueName = "email"
	QueueBulkEmail     QueueName = "bulk-email"
	QueueNotifications QueueName = "notifications"
	QueueWebhooks      QueueName = "webhooks"
	QueueAIScoring     QueueName = "ai-scoring"
)

type JobName string

const (
	JobSendEmail        JobName = "send-email"
	JobSendBulkEmail    JobName = "send-bulk-email"
	JobSendNotification JobName = "send-notification"
	JobDeliverWebhook   JobName = "deliver-webhook"
	JobCalculateScore   JobName = "calculate-score"
)

var ErrQueueRequired = errors.New("queue name is required")

// JobPayload is the body handed to the worker: Type tells the worker which
// template or handler applies, Payload carries the resolved values.
type JobPayload struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// Job is the envelope stored on the queue.
type Job struct {
	ID          string     `json:"id"`
	Queue       QueueName  `json:"queue"`
	Name        JobName    `json:"name"`
	Data        JobPayload `json:"data"`
	Attempts    int        `json:"attempts"`
	EnqueuedAt  time.Time  `json:"enqueued_at"`
	AvailableAt time.Time  `json:"available_at"`
}

type JobOptions struct {
	JobID    string
	Attempts int
	Delay    time.Duration
}

type JobOption func(*JobOptions)

// WithJobID makes enqueueing idempotent on the worker side.
func WithJobID(id string) JobOption {
	return func(o *JobOptions) {
		o.JobID = id
	}
}

func WithAttempts(attempts int) JobOption {
	return func(o *JobOptions) {
		o.Attempts = attempts
	}
}

func WithDelay(delay time.Duration) JobOption {
	return func(o *JobOptions) {
		o.Delay = delay
	}
}

const DefaultAttempts = 3

// BuildOptions applies opts over the defaults.
func BuildOptions(opts ...JobOption) JobOptions {
	options := JobOptions{Attempts: DefaultAttempts}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Attempts < 1 {
		options.Attempts = 1
	}

	if options.Delay < 0 {
		options.Delay = 0
	}

	return options
}

type JobQueue interface {
	AddJob(ctx context.Context, queue QueueName, job JobName, payload JobPayload, opts ...JobOption) (string, error)
}
