package events

import "time"

// Event defines the contract for research lifecycle events published to the
// bus (e.g. "RESEARCH_COMPLETED").
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// ResearchCompleted builds the lifecycle event emitted when a job reaches
// the completed status.
func ResearchCompleted(researchId, query, pageURL string) Event {
	return BaseEvent{
		Type: "RESEARCH_COMPLETED",
		Data: map[string]interface{}{
			"research_id": researchId,
			"query":       query,
			"page_url":    pageURL,
		},
		OccurredAt: time.Now(),
	}
}

// ResearchFailed builds the lifecycle event emitted when a job reaches the
// failed status.
func ResearchFailed(researchId, query, reason string) Event {
	return BaseEvent{
		Type: "RESEARCH_FAILED",
		Data: map[string]interface{}{
			"research_id": researchId,
			"query":       query,
			"reason":      reason,
		},
		OccurredAt: time.Now(),
	}
}
