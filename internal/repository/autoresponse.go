package repository

import (
	"context"

	"cordi-chat/internal/domain"
)

// AutoResponseRepository 定义了 FAQ 问答表的操作。
type AutoResponseRepository interface {
	// FindExact 查找 question 与 text 完全相同的条目，未找到返回 ErrAutoResponseNotFound。
	FindExact(ctx context.Context, text string) (*domain.AutoResponse, error)

	// FindContainedIn 查找 question 是 text 子串的条目 (最长的 question 优先)，未找到返回 ErrAutoResponseNotFound。
	FindContainedIn(ctx context.Context, text string) (*domain.AutoResponse, error)

	// FindByID 根据 ID 查找。
	FindByID(ctx context.Context, id uint) (*domain.AutoResponse, error)

	// List 列出全部条目，按 ID 升序。
	List(ctx context.Context) ([]domain.AutoResponse, error)

	// Upsert 按 question 插入或更新 response。
	Upsert(ctx context.Context, entry *domain.AutoResponse) error

	// Update 按 ID 更新 question 和 response。question 冲突返回 ErrDuplicateEntry。
	Update(ctx context.Context, entry *domain.AutoResponse) error

	// Delete 按 ID 删除，不存在时返回 ErrAutoResponseNotFound。
	Delete(ctx context.Context, id uint) error
}
