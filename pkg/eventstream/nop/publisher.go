package nop

import (
	"context"

	"github.com/papercomputeco/kauni/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishChat validates input and otherwise does nothing.
func (p *Publisher) PublishChat(_ context.Context, event *eventstream.ChatAnsweredEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	return nil
}

// PublishFeedback validates input and otherwise does nothing.
func (p *Publisher) PublishFeedback(_ context.Context, event *eventstream.FeedbackEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}

var _ eventstream.Publisher = (*Publisher)(nil)
