package eventstream

import "context"

// Publisher publishes chat events to an event stream backend.
type Publisher interface {
	PublishChat(ctx context.Context, event *ChatAnsweredEvent) error
	PublishFeedback(ctx context.Context, event *FeedbackEvent) error
	Close() error
}
