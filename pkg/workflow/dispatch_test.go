package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/hireflow/pkg/channels/gochannel"
	"github.com/dukex/hireflow/pkg/eventbus"
	"github.com/dukex/hireflow/pkg/events"
	"github.com/dukex/hireflow/pkg/log"
	"github.com/dukex/hireflow/pkg/models"
	"github.com/dukex/hireflow/pkg/persistence"
	"github.com/dukex/hireflow/pkg/persistence/file"
	"github.com/dukex/hireflow/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerFor(t *testing.T) {
	for _, eventType := range events.RecruitingEventTypes {
		trigger, ok := workflow.TriggerFor(eventType)
		assert.True(t, ok, eventType)
		assert.True(t, trigger.IsValid())
	}

	trigger, ok := workflow.TriggerFor(events.ApplicationScoreCalculated)
	assert.True(t, ok)
	assert.Equal(t, models.TriggerScoreCalculated, trigger)

	_, ok = workflow.TriggerFor(events.ExecutionCompletedEvent)
	assert.False(t, ok)
}

func TestEngine_StartDispatchesRecruitingEvents(t *testing.T) {
	logger := log.NewTestLogger()

	pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(logger, pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	store := file.NewPersistence(t.TempDir())
	actions := &scriptedActions{failures: map[models.ActionType]error{}}
	engine := workflow.NewEngine(logger, store, bus, actions)

	r := rule("stage", action(models.ActionCreateTask, 0, false))
	r.Trigger = models.TriggerStageChanged
	r.Conditions = []models.Condition{{Field: "stage", Operator: models.OperatorEquals, Value: "offer"}}
	require.NoError(t, store.RuleRepository().Save(context.Background(), r))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, engine.Start(ctx))
	defer engine.Stop()

	assert.ErrorIs(t, engine.Start(ctx), workflow.ErrAlreadyStarted)

	event := events.NewRecruitingEvent(events.ApplicationStageChanged, map[string]any{"stage": "offer", "applicationId": "app-1"})
	require.NoError(t, bus.Publish(ctx, "app-1", event))

	var executions []*models.WorkflowExecution

	assert.Eventually(t, func() bool {
		page, err := store.ExecutionRepository().List(ctx, persistence.ListExecutionsOptions{RuleID: "stage"})
		if err != nil || len(page.Executions) == 0 {
			return false
		}

		executions = page.Executions

		return page.Executions[0].Status == models.ExecutionStatusCompleted
	}, 5*time.Second, 20*time.Millisecond)

	require.Len(t, executions, 1)
	assert.Equal(t, "app-1", executions[0].Input["applicationId"])
	assert.True(t, executions[0].Output.ConditionsMet)
}
