package repository

import (
	"context"

	"cordi-chat/internal/domain"
)

// MessageNotifier 把新消息推送给在线的会话参与者，通常由 Redis Pub/Sub 实现。
type MessageNotifier interface {
	// PublishMessage 把消息发布到 recipientID 的收件箱频道。
	PublishMessage(ctx context.Context, recipientID uint, msg domain.Message) error
}
