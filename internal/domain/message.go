package domain

import "time"

// Message 是两个账号之间的一条消息，只追加，不修改。
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"index:idx_pair,priority:1;not null" json:"sender_id"`
	ReceiverID uint      `gorm:"index:idx_pair,priority:2;not null" json:"receiver_id"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// MessageView 是读取会话时返回的消息，附带发送者名称。
type MessageView struct {
	Message
	SenderName string `json:"sender_name"`
}
