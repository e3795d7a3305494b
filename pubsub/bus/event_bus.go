package bus

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"

	"backstage/entity"
)

const (
	// EventsTopic receives every public event. The router splits it into per-event topics and
	// copies it to the data lake.
	EventsTopic = "events"

	internalTopicPrefix = "internal-events.svc-backstage."
)

var Marshaler = cqrs.JSONMarshaler{
	GenerateName: cqrs.StructName,
}

func NewEventBus(pub message.Publisher) (*cqrs.EventBus, error) {
	return cqrs.NewEventBusWithConfig(pub, cqrs.EventBusConfig{
		GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
			event, ok := params.Event.(entity.DomainEvent)
			if !ok {
				return "", fmt.Errorf("invalid event type: %T doesn't implement entity.DomainEvent", params.Event)
			}

			if event.IsInternal() {
				return internalTopicPrefix + params.EventName, nil
			}
			return EventsTopic, nil
		},
		Marshaler: Marshaler,
	})
}

// SubscribeTopic is the topic handlers of eventName consume from.
func SubscribeTopic(eventName string, internal bool) string {
	if internal {
		return internalTopicPrefix + eventName
	}
	return EventsTopic + "." + eventName
}
