// Package eventstreamutils builds the configured event publisher.
package eventstreamutils

import (
	"fmt"
	"log/slog"

	"github.com/papercomputeco/kauni/pkg/eventstream"
	"github.com/papercomputeco/kauni/pkg/eventstream/kafka"
	"github.com/papercomputeco/kauni/pkg/eventstream/nop"
)

// NewPublisherOpts selects and configures a publisher.
type NewPublisherOpts struct {
	// ProviderType is "none" (or empty) or "kafka".
	ProviderType string
	Brokers      string
	Topic        string
	Logger       *slog.Logger
}

// NewPublisher returns the publisher for opts.ProviderType.
func NewPublisher(opts *NewPublisherOpts) (eventstream.Publisher, error) {
	switch opts.ProviderType {
	case "", "none":
		return nop.NewPublisher(), nil
	case "kafka":
		return kafka.NewPublisher(kafka.Config{Brokers: opts.Brokers, Topic: opts.Topic}, opts.Logger)
	default:
		return nil, fmt.Errorf("unsupported events provider: %s", opts.ProviderType)
	}
}
