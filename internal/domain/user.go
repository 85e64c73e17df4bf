// Package domain 定义了应用程序中使用的数据结构 (数据库模型)。
package domain

import "time"

// Role 表示账号角色。
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
	RoleGuest   Role = "guest"
)

// Valid 判断角色是否属于已知的三种角色之一。
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStudent, RoleGuest:
		return true
	}
	return false
}

// IsAdmin 是否为管理员角色
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// User 表示应用程序中的账号。
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"type:varchar(191);uniqueIndex:idx_username;not null" json:"username"`
	Password     string     `gorm:"type:varchar(255);not null" json:"-"` // bcrypt 哈希，永不返回给客户端
	Role         Role       `gorm:"type:varchar(16);index;not null" json:"role"`
	IsOnline     bool       `gorm:"not null;default:false" json:"is_online"`
	LastActivity *time.Time `json:"last_activity"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
