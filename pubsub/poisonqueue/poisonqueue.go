package poisonqueue

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

type Message struct {
	ID       string
	StreamID string
	Reason   string
	Topic    string
	Handler  string

	msg *message.Message
}

// Queue inspects the poison queue stream in place. Nothing is consumed, so
// the handlers' consumer groups are not affected.
type Queue struct {
	rdb         *redis.Client
	topic       string
	publisher   message.Publisher
	unmarshaler redisstream.Unmarshaller
}

func New(rdb *redis.Client, topic string, publisher message.Publisher) *Queue {
	if rdb == nil {
		panic("redis client is nil")
	}

	return &Queue{
		rdb:         rdb,
		topic:       topic,
		publisher:   publisher,
		unmarshaler: redisstream.DefaultMarshallerUnmarshaller{},
	}
}

func (q *Queue) Preview(ctx context.Context) ([]Message, error) {
	entries, err := q.rdb.XRange(ctx, q.topic, "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("could not read %s stream: %w", q.topic, err)
	}

	result := make([]Message, 0, len(entries))
	for _, entry := range entries {
		msg, err := q.unmarshaler.Unmarshal(entry.Values)
		if err != nil {
			return nil, fmt.Errorf("could not unmarshal stream entry %s: %w", entry.ID, err)
		}

		result = append(result, Message{
			ID:       msg.UUID,
			StreamID: entry.ID,
			Reason:   msg.Metadata.Get(middleware.ReasonForPoisonedKey),
			Topic:    msg.Metadata.Get(middleware.PoisonedTopicKey),
			Handler:  msg.Metadata.Get(middleware.PoisonedHandlerKey),
			msg:      msg,
		})
	}

	return result, nil
}

func (q *Queue) Remove(ctx context.Context, messageID string) error {
	m, err := q.find(ctx, messageID)
	if err != nil {
		return err
	}

	return q.delete(ctx, m)
}

// Requeue publishes the message back to the topic it was poisoned on and
// removes it from the poison queue.
func (q *Queue) Requeue(ctx context.Context, messageID string) error {
	if q.publisher == nil {
		return fmt.Errorf("requeue needs a publisher")
	}

	m, err := q.find(ctx, messageID)
	if err != nil {
		return err
	}
	if m.Topic == "" {
		return fmt.Errorf("message %s has no origin topic", messageID)
	}

	requeued := message.NewMessage(m.msg.UUID, m.msg.Payload)
	for k, v := range m.msg.Metadata {
		if lo.Contains(poisonMetadataKeys, k) {
			continue
		}
		requeued.Metadata.Set(k, v)
	}
	requeued.SetContext(ctx)

	if err := q.publisher.Publish(m.Topic, requeued); err != nil {
		return fmt.Errorf("could not requeue message %s to %s: %w", messageID, m.Topic, err)
	}

	return q.delete(ctx, m)
}

var poisonMetadataKeys = []string{
	middleware.ReasonForPoisonedKey,
	middleware.PoisonedTopicKey,
	middleware.PoisonedHandlerKey,
	middleware.PoisonedSubscriberKey,
}

func (q *Queue) find(ctx context.Context, messageID string) (Message, error) {
	messages, err := q.Preview(ctx)
	if err != nil {
		return Message{}, err
	}

	m, ok := lo.Find(messages, func(m Message) bool { return m.ID == messageID })
	if !ok {
		return Message{}, fmt.Errorf("message %s not found", messageID)
	}

	return m, nil
}

func (q *Queue) delete(ctx context.Context, m Message) error {
	if err := q.rdb.XDel(ctx, q.topic, m.StreamID).Err(); err != nil {
		return fmt.Errorf("could not remove message %s: %w", m.ID, err)
	}

	return nil
}
