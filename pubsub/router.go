package pubsub

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"backstage/entity"
	"backstage/pubsub/bus"
	"backstage/pubsub/event"
	"backstage/pubsub/outbox"
)

const PoisonQueueTopic = "PoisonQueue"

type DataLake interface {
	StoreEvent(ctx context.Context, dataLakeEvent entity.DataLakeEvent) error
}

func NewEventProcessorConfig(rdb *redis.Client, watermillLogger watermill.LoggerAdapter) cqrs.EventProcessorConfig {
	return cqrs.EventProcessorConfig{
		SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return newRedisSubscriber(rdb, "svc-backstage."+params.HandlerName, watermillLogger)
		},
		GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
			domainEvent, ok := params.EventHandler.NewEvent().(entity.DomainEvent)
			if !ok {
				return "", fmt.Errorf("invalid event type: %T doesn't implement entity.DomainEvent", params.EventHandler.NewEvent())
			}
			return bus.SubscribeTopic(params.EventName, domainEvent.IsInternal()), nil
		},
		Marshaler: bus.Marshaler,
		Logger:    watermillLogger,
	}
}

func NewWatermillRouter(
	postgresSubscriber message.Subscriber,
	redisPublisher message.Publisher,
	rdb *redis.Client,
	eventHandler event.Handler,
	dataLake DataLake,
	watermillLogger watermill.LoggerAdapter,
) (*message.Router, error) {
	eventProcessorConfig := NewEventProcessorConfig(rdb, watermillLogger)

	router, err := message.NewRouter(message.RouterConfig{}, watermillLogger)
	if err != nil {
		return nil, fmt.Errorf("could not create router: %w", err)
	}

	if err := useMiddlewares(router, redisPublisher, watermillLogger); err != nil {
		return nil, err
	}

	if err := outbox.AddForwarderHandler(postgresSubscriber, redisPublisher, router, watermillLogger); err != nil {
		return nil, err
	}

	eventProcessor, err := cqrs.NewEventProcessorWithConfig(router, eventProcessorConfig)
	if err != nil {
		return nil, fmt.Errorf("could not create event processor: %w", err)
	}

	err = eventProcessor.AddHandlers(
		eventHandler.GenerateArtifactHandler(),
		eventHandler.IssueReceiptHandler(),
		eventHandler.AppendCancelledTicketHandler(),
	)
	if err != nil {
		return nil, fmt.Errorf("could not add handlers to event processor: %w", err)
	}

	splitterSubscriber, err := newRedisSubscriber(rdb, "svc-backstage.events_splitter", watermillLogger)
	if err != nil {
		return nil, err
	}

	router.AddNoPublisherHandler(
		"events_splitter",
		bus.EventsTopic,
		splitterSubscriber,
		func(msg *message.Message) error {
			eventName := eventProcessorConfig.Marshaler.NameFromMessage(msg)
			if eventName == "" {
				return fmt.Errorf("could not get event name from message")
			}

			return redisPublisher.Publish(bus.SubscribeTopic(eventName, false), msg)
		},
	)

	dataLakeSubscriber, err := newRedisSubscriber(rdb, "svc-backstage.store_to_data_lake", watermillLogger)
	if err != nil {
		return nil, err
	}

	router.AddNoPublisherHandler(
		"store_to_data_lake",
		bus.EventsTopic,
		dataLakeSubscriber,
		func(msg *message.Message) error {
			eventName := eventProcessorConfig.Marshaler.NameFromMessage(msg)
			if eventName == "" {
				return fmt.Errorf("could not get event name from message")
			}

			// only the header is needed, the payload is stored as is
			type Event struct {
				Header entity.EventHeader `json:"header"`
			}

			var event Event
			if err := eventProcessorConfig.Marshaler.Unmarshal(msg, &event); err != nil {
				return fmt.Errorf("could not unmarshal event: %w", err)
			}

			return dataLake.StoreEvent(
				msg.Context(),
				entity.DataLakeEvent{
					ID:          event.Header.ID,
					PublishedAt: event.Header.PublishedAt,
					Name:        eventName,
					Payload:     msg.Payload,
				},
			)
		},
	)

	return router, nil
}
