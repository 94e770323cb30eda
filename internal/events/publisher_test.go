package events

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), "r", AccountCreated, nil))
}

// 需要實際的 Redis；未設定 REDIS_ADDR 時略過。
func TestRedisPublisherWritesStream(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	stream := "test-" + uuid.NewString()
	defer client.Del(ctx, stream)

	p := NewRedisPublisher(client, stream)
	require.NoError(t, p.Publish(ctx, "Bank of Orange County", PaymentCompleted,
		PaymentCompletedEvent{PayerID: 1, PayeeID: 3, Amount: 500}))

	msgs, err := client.XRange(ctx, stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["event"].(string)), &ev))
	assert.Equal(t, PaymentCompleted, ev.Type)
	assert.Equal(t, "Bank of Orange County", ev.Registry)
	assert.NotEmpty(t, ev.ID)
}
