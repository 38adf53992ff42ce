package main

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/hireflow/pkg/actions"
	"github.com/dukex/hireflow/pkg/channels/gochannel"
	"github.com/dukex/hireflow/pkg/eventbus"
	"github.com/dukex/hireflow/pkg/events"
	"github.com/dukex/hireflow/pkg/log"
	"github.com/dukex/hireflow/pkg/mocks"
	"github.com/dukex/hireflow/pkg/persistence"
	"github.com/dukex/hireflow/pkg/persistence/file"
	"github.com/dukex/hireflow/pkg/queue"
	"github.com/dukex/hireflow/pkg/scheduler"
	"github.com/dukex/hireflow/pkg/testutil"
	"github.com/dukex/hireflow/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRunner_RunsRulesForEventsUntilCancelled(t *testing.T) {
	logger := log.NewTestLogger()

	pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(logger, pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	store := file.NewPersistence(t.TempDir())

	jobs := &mocks.MockJobQueue{}
	jobs.On("AddJob", mock.Anything, queue.QueueName("email"), mock.Anything, mock.Anything).Return("job-7", nil)

	engine := workflow.NewEngine(logger, store, bus, actions.NewExecutor(logger, bus, jobs, store.EntityRepository()))

	timeElapsed, err := scheduler.New(logger, engine, "@daily")
	require.NoError(t, err)

	rule := testutil.CreateTestRule(testutil.WithID("welcome"))
	require.NoError(t, store.RuleRepository().Save(context.Background(), rule))

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- NewRunner(logger, engine, timeElapsed).Run(ctx)
	}()

	event := events.NewRecruitingEvent(events.ApplicationReceivedEvent, map[string]any{
		"candidate": map[string]any{"email": "grace@example.com"},
	})

	assert.Eventually(t, func() bool {
		_ = bus.Publish(ctx, "app-9", event)

		page, err := store.ExecutionRepository().List(ctx, persistence.ListExecutionsOptions{RuleID: "welcome"})

		return err == nil && page.TotalCount > 0
	}, 5*time.Second, 100*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop after cancellation")
	}

	jobs.AssertCalled(t, "AddJob", mock.Anything, queue.QueueName("email"), mock.Anything, mock.Anything)
}
