// Package eventstream defines the events kauni emits for answered queries and
// user feedback, and the publishers that ship them.
package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeChatAnswered is emitted after the pipeline answers a query.
	EventTypeChatAnswered = "kauni.chat.answered"

	// EventTypeFeedbackReceived is emitted when a user submits feedback.
	EventTypeFeedbackReceived = "kauni.feedback.received"
)

// Envelope carries the fields common to every event.
type Envelope struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
}

func newEnvelope(eventType string) Envelope {
	return Envelope{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
	}
}

// ChatAnswer describes one answered query.
type ChatAnswer struct {
	Query      string   `json:"query"`
	Answer     string   `json:"answer"`
	Source     string   `json:"source"`
	Confidence string   `json:"confidence"`
	ContextIDs []string `json:"context_ids"`

	// DegradedStages lists retrieval stages that failed, in order.
	DegradedStages []string `json:"degraded_stages,omitempty"`
	DurationMs     int64    `json:"duration_ms"`
}

// ChatAnsweredEvent is the payload published per answered query.
type ChatAnsweredEvent struct {
	Envelope
	Chat ChatAnswer `json:"chat"`
}

// NewChatAnsweredEvent wraps answer in a fresh envelope.
func NewChatAnsweredEvent(answer ChatAnswer) *ChatAnsweredEvent {
	return &ChatAnsweredEvent{
		Envelope: newEnvelope(EventTypeChatAnswered),
		Chat:     answer,
	}
}

// FeedbackEvent is the payload published per feedback submission.
type FeedbackEvent struct {
	Envelope
	Feedback string `json:"feedback"`
}

// NewFeedbackEvent wraps feedback in a fresh envelope.
func NewFeedbackEvent(feedback string) *FeedbackEvent {
	return &FeedbackEvent{
		Envelope: newEnvelope(EventTypeFeedbackReceived),
		Feedback: feedback,
	}
}
