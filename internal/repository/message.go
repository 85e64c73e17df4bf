package repository

import (
	"context"

	"cordi-chat/internal/domain"
)

// MessageRepository 定义了消息表 (Message Store) 的操作。
type MessageRepository interface {
	// Create 插入一条消息，成功后 msg.ID 被填充。
	Create(ctx context.Context, msg *domain.Message) error

	// ListConversation 返回 a 与 b 之间的全部消息，按 created_at、id 升序。
	// adminID 对应的发送者名称显示为 "Admin"。
	ListConversation(ctx context.Context, a, b, adminID uint) ([]domain.MessageView, error)
}
