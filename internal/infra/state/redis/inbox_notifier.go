package redisstate

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"

	"cordi-chat/internal/domain"
)

// InboxEvent 是发布到收件箱频道的负载。
type InboxEvent struct {
	Type    string         `json:"type"`
	UserID  uint           `json:"user_id"`
	Message domain.Message `json:"message"`
}

// EventTypeMessage 表示新消息事件
const EventTypeMessage = "message"

// RedisInboxNotifier 是 MessageNotifier 接口的 Redis Pub/Sub 实现
type RedisInboxNotifier struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisInboxNotifier 创建 RedisInboxNotifier 实例
func NewRedisInboxNotifier(client *redis.Client, keyPrefix string) *RedisInboxNotifier {
	if client == nil {
		panic("redis client cannot be nil for RedisInboxNotifier")
	}
	return &RedisInboxNotifier{client: client, keyPrefix: normalizePrefix(keyPrefix)}
}

// normalizePrefix 为空时使用默认前缀 "chat:"
func normalizePrefix(prefix string) string {
	if prefix == "" {
		return "chat:"
	}
	return prefix
}

// InboxChannel 返回某个账号的收件箱频道名
func InboxChannel(keyPrefix string, userID uint) string {
	return fmt.Sprintf("%sinbox:%d", normalizePrefix(keyPrefix), userID)
}

// InboxPattern 返回匹配所有收件箱频道的 PSUBSCRIBE 模式
func InboxPattern(keyPrefix string) string {
	return normalizePrefix(keyPrefix) + "inbox:*"
}

// ParseInboxChannel 从频道名中解析账号 ID
func ParseInboxChannel(keyPrefix, channel string) (uint, error) {
	head := normalizePrefix(keyPrefix) + "inbox:"
	if !strings.HasPrefix(channel, head) {
		return 0, fmt.Errorf("channel %q is not an inbox channel", channel)
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(channel, head), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("channel %q has invalid user id: %w", channel, err)
	}
	return uint(id), nil
}

// PublishMessage 把消息发布到 recipientID 的收件箱频道
func (n *RedisInboxNotifier) PublishMessage(ctx context.Context, recipientID uint, msg domain.Message) error {
	payload, err := json.Marshal(InboxEvent{Type: EventTypeMessage, UserID: recipientID, Message: msg})
	if err != nil {
		return fmt.Errorf("redis: marshal inbox event: %w", err)
	}
	channel := InboxChannel(n.keyPrefix, recipientID)
	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish to %s: %w", channel, err)
	}
	return nil
}
