package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/hireflow/pkg/channels/gochannel"
	"github.com/dukex/hireflow/pkg/channels/kafka"
	"github.com/dukex/hireflow/pkg/eventbus"
)

// NewEventBus creates the event bus for provider ("kafka" or "gochannel").
// serviceName selects the Kafka consumer group.
func NewEventBus(provider string, serviceName string, logger *slog.Logger) (eventbus.EventBus, error) {
	watermillLogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "kafka":
		brokers, err := kafka.BrokersFromEnv()
		if err != nil {
			return nil, err
		}

		pub, sub, err := kafka.CreateChannel(watermillLogger, serviceName, brokers)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(logger, pub, sub), nil
	case "gochannel", "":
		pub, sub, err := gochannel.CreateChannel(watermillLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create GoChannel pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(logger, pub, sub), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
	}
}
