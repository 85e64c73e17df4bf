package gormpersistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"cordi-chat/internal/domain"
)

// GormMessageRepository 是 MessageRepository 接口的 GORM 实现
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository 创建 GormMessageRepository 实例
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	if db == nil {
		panic("database connection cannot be nil for GormMessageRepository")
	}
	return &GormMessageRepository{db: db}
}

// Create 插入一条消息
func (r *GormMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("gorm: create message (%d -> %d): %w", msg.SenderID, msg.ReceiverID, err)
	}
	return nil
}

// ListConversation 查询两个账号之间的全部消息。
// created_at 精度有限，相同时间按 id 排序。
func (r *GormMessageRepository) ListConversation(ctx context.Context, a, b, adminID uint) ([]domain.MessageView, error) {
	views := make([]domain.MessageView, 0)
	err := r.db.WithContext(ctx).
		Table("messages m").
		Select("m.id, m.sender_id, m.receiver_id, m.message, m.created_at, "+
			"CASE WHEN m.sender_id = ? THEN 'Admin' ELSE COALESCE(u.username, '') END AS sender_name", adminID).
		Joins("LEFT JOIN users u ON u.id = m.sender_id").
		Where("(m.sender_id = ? AND m.receiver_id = ?) OR (m.sender_id = ? AND m.receiver_id = ?)", a, b, b, a).
		Order("m.created_at ASC").
		Order("m.id ASC").
		Scan(&views).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list conversation %d <-> %d: %w", a, b, err)
	}
	return views, nil
}
