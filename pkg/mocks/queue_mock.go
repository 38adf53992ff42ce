package mocks

import (
	"context"
	"sync"

	"github.com/dukex/hireflow/pkg/queue"
	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of queue.JobQueue interface.
// Options are not matched against expectations; they are recorded and can
// be read back with Options.
type MockJobQueue struct {
	mock.Mock

	mu      sync.Mutex
	options []queue.JobOptions
}

func (m *MockJobQueue) AddJob(ctx context.Context, name queue.QueueName, job queue.JobName, payload queue.JobPayload, opts ...queue.JobOption) (string, error) {
	m.mu.Lock()
	m.options = append(m.options, queue.BuildOptions(opts...))
	m.mu.Unlock()

	args := m.Called(ctx, name, job, payload)

	return args.String(0), args.Error(1)
}

// Options returns the resolved options of every AddJob call, in call order.
func (m *MockJobQueue) Options() []queue.JobOptions {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]queue.JobOptions(nil), m.options...)
}
