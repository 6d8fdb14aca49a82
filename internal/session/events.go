package session

import "github.com/geeddi-ai/geeddi-server/internal/course"

// EventType identifies a session event delivered to subscribers.
type EventType string

const (
	EventGenerationStarted   EventType = "generation.started"
	EventGenerationSucceeded EventType = "generation.succeeded"
	EventGenerationFailed    EventType = "generation.failed"
	EventStageLoading        EventType = "stage.loading"
	EventStageRevealed       EventType = "stage.revealed"
	EventExplanationLoading  EventType = "explanation.loading"
	EventExplanationReady    EventType = "explanation.ready"
	EventExplanationFailed   EventType = "explanation.failed"
)

// Event is pushed to session subscribers (the websocket stream). Question is
// only meaningful for explanation events.
type Event struct {
	Type     EventType      `json:"type"`
	Stage    string         `json:"stage,omitempty"`
	Question int            `json:"question"`
	Message  string         `json:"message,omitempty"`
	Course   *course.Course `json:"course,omitempty"`
}
