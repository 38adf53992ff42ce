package events

// Recruiting domain events published by the applicant tracking system. Each
// one can start workflow rules.
const (
	ApplicationReceivedEvent   EventType = "application.received"
	ApplicationStageChanged    EventType = "application.stage_changed"
	InterviewScheduledEvent    EventType = "interview.scheduled"
	InterviewCompletedEvent    EventType = "interview.completed"
	ApplicationScoreCalculated EventType = "application.score_calculated"
	OfferSentEvent             EventType = "offer.sent"
	CandidateRejectedEvent     EventType = "candidate.rejected"
)

// RecruitingEventTypes lists every event type that can start a rule.
var RecruitingEventTypes = []EventType{
	ApplicationReceivedEvent,
	ApplicationStageChanged,
	InterviewScheduledEvent,
	InterviewCompletedEvent,
	ApplicationScoreCalculated,
	OfferSentEvent,
	CandidateRejectedEvent,
}

// RecruitingEvent carries the payload of a recruiting domain event. The
// payload becomes the execution input of every rule it starts.
type RecruitingEvent struct {
	BaseEvent

	Payload map[string]any `json:"payload"`
}

func (r RecruitingEvent) GetType() EventType {
	return r.Type
}

func NewRecruitingEvent(eventType EventType, payload map[string]any) *RecruitingEvent {
	if payload == nil {
		payload = make(map[string]any)
	}

	return &RecruitingEvent{
		BaseEvent: NewBaseEvent(eventType, ""),
		Payload:   payload,
	}
}

func init() {
	for _, eventType := range RecruitingEventTypes {
		register(eventType, func() any { return &RecruitingEvent{} })
	}
}
