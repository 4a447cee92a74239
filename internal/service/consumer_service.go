package service

import (
	"context"
	"time"

	"eval-assistant-be/internal/pkg/logger"
	"eval-assistant-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

const forwardTimeout = 5 * time.Second

// Forwarder ships an event off-process, e.g. to NATS.
type Forwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	forwarder  Forwarder
	logger     logger.ILogger
}

// NewConsumerService builds the telemetry consumer. forwarder may be nil.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	forwarder Forwarder,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		forwarder:  forwarder,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks: telemetry is best effort and a bad payload
// would otherwise be redelivered forever.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	event, err := events.Decode(msg.Payload)
	if err != nil {
		cs.logger.Error("Telemetry", "failed to decode event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	cs.logger.Info("Telemetry", event.EventType(), event.Payload())

	if cs.forwarder == nil {
		return
	}
	fwdCtx, cancel := context.WithTimeout(ctx, forwardTimeout)
	defer cancel()
	if err := cs.forwarder.Publish(fwdCtx, event); err != nil {
		cs.logger.Warn("Telemetry", "failed to forward event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
