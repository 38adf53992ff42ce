package workflow

import (
	"github.com/dukex/hireflow/pkg/events"
	"github.com/dukex/hireflow/pkg/models"
)

// eventTriggers maps each consumed recruiting event to the trigger it fires.
// TIME_ELAPSED has no event; the scheduler fires it.
var eventTriggers = map[events.EventType]models.WorkflowTrigger{
	events.ApplicationReceivedEvent:   models.TriggerApplicationReceived,
	events.ApplicationStageChanged:    models.TriggerStageChanged,
	events.InterviewScheduledEvent:    models.TriggerInterviewScheduled,
	events.InterviewCompletedEvent:    models.TriggerInterviewCompleted,
	events.ApplicationScoreCalculated: models.TriggerScoreCalculated,
	events.OfferSentEvent:             models.TriggerOfferSent,
	events.CandidateRejectedEvent:     models.TriggerCandidateRejected,
}

// TriggerFor returns the trigger fired by eventType.
func TriggerFor(eventType events.EventType) (models.WorkflowTrigger, bool) {
	trigger, ok := eventTriggers[eventType]

	return trigger, ok
}
