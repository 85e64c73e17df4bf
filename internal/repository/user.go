package repository

import (
	"context"
	"time"

	"cordi-chat/internal/domain"
)

// UserRepository 定义了账号数据的存储和检索操作 (User Directory)。
type UserRepository interface {
	// FindByUsername 根据用户名查找账号，不存在时返回 ErrUserNotFound。
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindByID 根据 ID 查找账号，不存在时返回 ErrUserNotFound。
	FindByID(ctx context.Context, id uint) (*domain.User, error)

	// FindFirstAdmin 返回 ID 最小的管理员账号，没有管理员时返回 ErrUserNotFound。
	FindFirstAdmin(ctx context.Context) (*domain.User, error)

	// Save 创建或更新账号。用户名冲突时返回 ErrDuplicateEntry。
	Save(ctx context.Context, user *domain.User) error

	// List 按角色、创建时间倒序列出全部账号。
	List(ctx context.Context) ([]domain.User, error)

	// Search 按用户名模糊查找。
	Search(ctx context.Context, query string) ([]domain.User, error)

	// ListContacts 列出除 excludeID 之外的所有账号，按用户名排序。
	ListContacts(ctx context.Context, excludeID uint) ([]domain.User, error)

	// Delete 删除账号，不存在时返回 ErrUserNotFound。
	Delete(ctx context.Context, id uint) error

	// Count 返回账号总数和在线数。
	Count(ctx context.Context) (total int64, online int64, err error)

	// SetOnline 更新在线标记；online 为 true 时同时刷新 last_activity。
	SetOnline(ctx context.Context, id uint, online bool, at time.Time) error

	// TouchActivity 更新 last_activity。
	TouchActivity(ctx context.Context, id uint, at time.Time) error

	// MarkIdleOffline 把 last_activity 早于 cutoff (或为空) 的在线账号标记为离线，返回受影响行数。
	MarkIdleOffline(ctx context.Context, cutoff time.Time) (int64, error)
}
