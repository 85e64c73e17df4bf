package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"cordi-chat/internal/domain"
	"cordi-chat/internal/repository"

	"github.com/sirupsen/logrus"
)

// UserStats 账号统计
type UserStats struct {
	Total  int64 `json:"total"`
	Online int64 `json:"online"`
}

// UpdateUserInput 是管理员修改账号时提交的字段，Password 为空表示不修改。
type UpdateUserInput struct {
	Username string
	Role     domain.Role
	Password string
}

// UserService 负责账号目录的查询、修改和在线状态维护。
type UserService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

// NewUserService 创建 UserService 实例。
func NewUserService(userRepo repository.UserRepository) *UserService {
	if userRepo == nil {
		panic("UserRepository cannot be nil for UserService")
	}
	return &UserService{userRepo: userRepo, now: time.Now}
}

// List 列出全部账号
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		logrus.WithError(err).Error("UserService.List: query failed")
		return nil, mapRepoError(err, ErrUserNotFound)
	}
	return users, nil
}

// Search 按用户名模糊查找
func (s *UserService) Search(ctx context.Context, query string) ([]domain.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validationError("missing search query")
	}
	users, err := s.userRepo.Search(ctx, query)
	if err != nil {
		logrus.WithError(err).WithField("query", query).Error("UserService.Search: query failed")
		return nil, mapRepoError(err, ErrUserNotFound)
	}
	return users, nil
}

// Contacts 返回除自己以外的账号
func (s *UserService) Contacts(ctx context.Context, userID uint) ([]domain.User, error) {
	users, err := s.userRepo.ListContacts(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err, ErrUserNotFound)
	}
	return users, nil
}

// Stats 返回账号总数和在线数
func (s *UserService) Stats(ctx context.Context) (*UserStats, error) {
	total, online, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, mapRepoError(err, ErrUserNotFound)
	}
	return &UserStats{Total: total, Online: online}, nil
}

// Update 修改账号的用户名、角色，可选地重置密码。
func (s *UserService) Update(ctx context.Context, id uint, in UpdateUserInput) (*domain.User, error) {
	logCtx := logrus.WithField("user_id", id)

	username := strings.TrimSpace(in.Username)
	if id == 0 || username == "" || in.Role == "" {
		return nil, validationError("missing username or role")
	}
	if !in.Role.Valid() {
		return nil, validationError("unknown role " + string(in.Role))
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, ErrUserNotFound)
	}
	user.Username = username
	user.Role = in.Role
	if strings.TrimSpace(in.Password) != "" {
		hashed, err := hashPassword(in.Password)
		if err != nil {
			logCtx.WithError(err).Error("Failed to hash password during update")
			return nil, ErrInternalServer
		}
		user.Password = hashed
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrUsernameTaken
		}
		logCtx.WithError(err).Error("Failed to update user")
		return nil, mapRepoError(err, ErrUserNotFound)
	}
	logCtx.Info("User updated successfully")
	user.Password = ""
	return user, nil
}

// Delete 删除账号，相关消息保留。
func (s *UserService) Delete(ctx context.Context, id uint) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return mapRepoError(err, ErrUserNotFound)
	}
	logrus.WithField("user_id", id).Info("User deleted successfully")
	return nil
}

// TouchActivity 记录账号的最近活动时间。非管理员只能更新自己。
func (s *UserService) TouchActivity(ctx context.Context, caller Identity, id uint) error {
	if !caller.Role.IsAdmin() && caller.ID != id {
		return ErrForbidden
	}
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return mapRepoError(err, ErrUserNotFound)
	}
	if err := s.userRepo.TouchActivity(ctx, id, s.now()); err != nil {
		return mapRepoError(err, ErrUserNotFound)
	}
	return nil
}

// SweepIdle 把超过 idleTimeout 没有活动的在线账号标记为离线
func (s *UserService) SweepIdle(ctx context.Context, idleTimeout time.Duration) (int64, error) {
	if idleTimeout <= 0 {
		return 0, validationError("idle timeout must be positive")
	}
	cutoff := s.now().Add(-idleTimeout)
	n, err := s.userRepo.MarkIdleOffline(ctx, cutoff)
	if err != nil {
		return 0, mapRepoError(err, ErrUserNotFound)
	}
	return n, nil
}
