package redisstate

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cordi-chat/internal/domain"
)

func TestInboxChannelNames(t *testing.T) {
	assert.Equal(t, "chat:inbox:7", InboxChannel("", 7))
	assert.Equal(t, "app:inbox:7", InboxChannel("app:", 7))
	assert.Equal(t, "chat:inbox:*", InboxPattern(""))

	id, err := ParseInboxChannel("chat:", "chat:inbox:42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	_, err = ParseInboxChannel("chat:", "other:inbox:42")
	assert.Error(t, err)
	_, err = ParseInboxChannel("chat:", "chat:inbox:abc")
	assert.Error(t, err)
}

func TestRedisInboxNotifier_PublishMessage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	sub := client.Subscribe(ctx, InboxChannel("chat:", 2))
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	notifier := NewRedisInboxNotifier(client, "chat:")
	msg := domain.Message{ID: 1, SenderID: 1, ReceiverID: 2, Message: "hello", CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, notifier.PublishMessage(ctx, 2, msg))

	select {
	case got := <-sub.Channel():
		var event InboxEvent
		require.NoError(t, json.Unmarshal([]byte(got.Payload), &event))
		assert.Equal(t, EventTypeMessage, event.Type)
		assert.Equal(t, uint(2), event.UserID)
		assert.Equal(t, msg.Message, event.Message.Message)
		assert.True(t, msg.CreatedAt.Equal(event.Message.CreatedAt))
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestRedisInboxNotifier_PublishFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	err := NewRedisInboxNotifier(client, "").PublishMessage(context.Background(), 2, domain.Message{})
	assert.Error(t, err)
}
