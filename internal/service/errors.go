package service

import (
	"errors"
	"fmt"

	"cordi-chat/internal/repository"
)

var (
	// ErrValidation 缺少必填字段、消息为空或 ID 无法解析
	ErrValidation = errors.New("validation failed")
	// ErrNotFound 请求的资源不存在
	ErrNotFound = errors.New("not found")
	// ErrStorage 存储层拒绝或执行失败
	ErrStorage = errors.New("storage error")

	ErrNoAdmin              = fmt.Errorf("%w: no admin found", ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrAutoResponseNotFound = fmt.Errorf("%w: auto response not found", ErrNotFound)

	ErrAuthenticationFailed = errors.New("invalid username or password")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrQuestionTaken        = errors.New("question already exists")
	ErrForbidden            = errors.New("forbidden")
	ErrInternalServer       = errors.New("internal server error")
)

// validationError 构造带说明的 ErrValidation
func validationError(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}

// mapRepoError 将仓库层错误映射为服务层错误，notFound 为资源不存在时返回的错误。
func mapRepoError(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	default:
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
}
