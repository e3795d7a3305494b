package poisonqueue_test

import (
	"context"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"

	"backstage/pubsub/poisonqueue"
)

func startRedis(t *testing.T) *goredis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("poison queue tests need redis")
	}

	ctx := context.Background()
	container, err := redis.RunContainer(ctx, testcontainers.WithImage("docker.io/redis:7"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: strings.Replace(uri, "redis://", "", 1)})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestQueue(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()
	topic := "PoisonQueue-" + uuid.NewString()

	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{Client: rdb}, watermill.NopLogger{})
	require.NoError(t, err)

	var ids []string
	for i := 0; i < 10; i++ {
		msg := message.NewMessage(watermill.NewUUID(), []byte("{}"))
		msg.Metadata.Set(middleware.ReasonForPoisonedKey, "network down")
		msg.Metadata.Set(middleware.PoisonedTopicKey, "events.TicketIssued_v1")
		require.NoError(t, publisher.Publish(topic, msg))
		ids = append(ids, msg.UUID)
	}

	queue := poisonqueue.New(rdb, topic, publisher)

	messages, err := queue.Preview(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 10)
	for _, m := range messages {
		assert.Equal(t, "network down", m.Reason)
		assert.Equal(t, "events.TicketIssued_v1", m.Topic)
	}

	require.NoError(t, queue.Remove(ctx, ids[0]))
	require.NoError(t, queue.Remove(ctx, ids[4]))
	require.NoError(t, queue.Requeue(ctx, ids[9]))
	assert.Error(t, queue.Remove(ctx, uuid.NewString()))

	messages, err = queue.Preview(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{ids[1], ids[2], ids[3], ids[5], ids[6], ids[7], ids[8]},
		lo.Map(messages, func(m poisonqueue.Message, _ int) string { return m.ID }),
	)

	requeued, err := rdb.XRange(ctx, "events.TicketIssued_v1", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, requeued, 1)

	msg, err := redisstream.DefaultMarshallerUnmarshaller{}.Unmarshal(requeued[0].Values)
	require.NoError(t, err)
	assert.Equal(t, ids[9], msg.UUID)
	assert.Empty(t, msg.Metadata.Get(middleware.ReasonForPoisonedKey))
}
