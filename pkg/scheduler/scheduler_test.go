package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dukex/hireflow/pkg/log"
	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/scheduler"
	"github.com/dukex/hireflow/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu       sync.Mutex
	triggers []models.WorkflowTrigger
	payloads []map[string]any
}

func (h *recordingHandler) HandleTrigger(_ context.Context, trigger models.WorkflowTrigger, payload map[string]any) []*workflow.ExecutionResult {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.triggers = append(h.triggers, trigger)
	h.payloads = append(h.payloads, payload)

	return []*workflow.ExecutionResult{{Status: models.ExecutionStatusCompleted}}
}

func (h *recordingHandler) calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.triggers)
}

func TestNew_InvalidSchedule(t *testing.T) {
	tests := []string{"every minute", "61 * * * *", "* * *"}

	for _, schedule := range tests {
		t.Run(schedule, func(t *testing.T) {
			_, err := scheduler.New(log.NewTestLogger(), &recordingHandler{}, schedule)
			assert.ErrorContains(t, err, "invalid cron expression")
		})
	}
}

func TestTick(t *testing.T) {
	handler := &recordingHandler{}
	fixed := time.Date(2026, 3, 2, 9, 30, 0, 0, time.FixedZone("BRT", -3*60*60))

	s, err := scheduler.New(log.NewTestLogger(), handler, "", scheduler.WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	results := s.Tick(context.Background())
	assert.Len(t, results, 1)

	require.Equal(t, 1, handler.calls())
	assert.Equal(t, models.TriggerTimeElapsed, handler.triggers[0])
	assert.Equal(t, map[string]any{"timestamp": "2026-03-02T12:30:00Z"}, handler.payloads[0])
}

func TestStartStop(t *testing.T) {
	handler := &recordingHandler{}

	s, err := scheduler.New(log.NewTestLogger(), handler, "@every 1s")
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), scheduler.ErrAlreadyStarted)

	assert.Eventually(t, func() bool { return handler.calls() > 0 }, 3*time.Second, 50*time.Millisecond)

	s.Stop()
	s.Stop()

	calls := handler.calls()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, calls, handler.calls(), "no ticks after Stop")
}

type blockingHandler struct {
	started chan struct{}
	once    sync.Once
}

func (h *blockingHandler) HandleTrigger(ctx context.Context, _ models.WorkflowTrigger, _ map[string]any) []*workflow.ExecutionResult {
	h.once.Do(func() { close(h.started) })
	<-ctx.Done()

	return nil
}

func TestStop_CancelsRunningTick(t *testing.T) {
	handler := &blockingHandler{started: make(chan struct{})}

	s, err := scheduler.New(log.NewTestLogger(), handler, "@every 1s")
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	select {
	case <-handler.started:
	case <-time.After(3 * time.Second):
		t.Fatal("tick never started")
	}

	stopped := make(chan struct{})

	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on a running tick")
	}
}
