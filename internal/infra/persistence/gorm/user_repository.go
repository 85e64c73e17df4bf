package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"cordi-chat/internal/domain"
	"cordi-chat/internal/repository"
)

// GormUserRepository 是 UserRepository 接口的 GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository 创建 GormUserRepository 实例
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	if db == nil {
		panic("database connection cannot be nil for GormUserRepository")
	}
	return &GormUserRepository{db: db}
}

// FindByUsername 实现根据用户名查找账号
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find user by username '%s': %w", username, err)
	}
	return &user, nil
}

// FindByID 实现根据 ID 查找账号
func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find user by id %d: %w", id, err)
	}
	return &user, nil
}

// FindFirstAdmin 返回 ID 最小的管理员。
// 显式 ORDER BY id，保证多个管理员时结果稳定。
func (r *GormUserRepository) FindFirstAdmin(ctx context.Context) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Where("role = ?", domain.RoleAdmin).
		Order("id ASC").
		Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find first admin: %w", err)
	}
	return &user, nil
}

// Save 实现保存账号（创建或更新）
func (r *GormUserRepository) Save(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save user (id: %d, username: %s): %w", user.ID, user.Username, err)
	}
	return nil
}

// List 按角色、创建时间倒序列出账号
func (r *GormUserRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Order("role ASC").Order("created_at DESC").Order("id ASC").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list users: %w", err)
	}
	return users, nil
}

// Search 按用户名模糊查找
func (r *GormUserRepository) Search(ctx context.Context, query string) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).
		Where("username LIKE ?", "%"+query+"%").
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: search users by '%s': %w", query, err)
	}
	return users, nil
}

// ListContacts 列出除自己之外的账号
func (r *GormUserRepository) ListContacts(ctx context.Context, excludeID uint) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Where("id <> ?", excludeID).Order("username ASC").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list contacts for user %d: %w", excludeID, err)
	}
	return users, nil
}

// Delete 删除账号。消息不做级联删除。
func (r *GormUserRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.User{}, id)
	if result.Error != nil {
		return fmt.Errorf("gorm: delete user %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

// Count 返回总数和在线数
func (r *GormUserRepository) Count(ctx context.Context) (int64, int64, error) {
	var total, online int64
	db := r.db.WithContext(ctx).Model(&domain.User{})
	if err := db.Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("gorm: count users: %w", err)
	}
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("is_online = ?", true).Count(&online).Error; err != nil {
		return 0, 0, fmt.Errorf("gorm: count online users: %w", err)
	}
	return total, online, nil
}

// SetOnline 更新在线状态
func (r *GormUserRepository) SetOnline(ctx context.Context, id uint, online bool, at time.Time) error {
	updates := map[string]interface{}{"is_online": online}
	if online {
		updates["last_activity"] = at
	}
	// MySQL 在值未变化时 RowsAffected 为 0，这里不据此判断账号是否存在
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return fmt.Errorf("gorm: set online=%t for user %d: %w", online, id, err)
	}
	return nil
}

// TouchActivity 刷新 last_activity
func (r *GormUserRepository) TouchActivity(ctx context.Context, id uint, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("last_activity", at).Error
	if err != nil {
		return fmt.Errorf("gorm: touch activity for user %d: %w", id, err)
	}
	return nil
}

// MarkIdleOffline 把长时间无活动的在线账号标记为离线
func (r *GormUserRepository) MarkIdleOffline(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("is_online = ?", true).
		Where("(last_activity IS NULL OR last_activity < ?)", cutoff).
		Update("is_online", false)
	if result.Error != nil {
		return 0, fmt.Errorf("gorm: mark idle users offline: %w", result.Error)
	}
	return result.RowsAffected, nil
}
