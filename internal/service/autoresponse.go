package service

import (
	"context"
	"errors"
	"strings"

	"cordi-chat/internal/domain"
	"cordi-chat/internal/repository"

	"github.com/sirupsen/logrus"
)

// DefaultAutoReply 在没有匹配的 FAQ 时返回给查询方。
const DefaultAutoReply = "I'm not sure about that yet, please ask something else!"

// AutoResponseService 负责 FAQ 问答的管理与匹配。
type AutoResponseService struct {
	repo repository.AutoResponseRepository
}

// NewAutoResponseService 创建 AutoResponseService 实例。
func NewAutoResponseService(repo repository.AutoResponseRepository) *AutoResponseService {
	if repo == nil {
		panic("AutoResponseRepository cannot be nil for AutoResponseService")
	}
	return &AutoResponseService{repo: repo}
}

// matchAutoResponse 先精确匹配，再退回到“消息包含 question”匹配。没有匹配时返回 nil, nil。
func matchAutoResponse(ctx context.Context, repo repository.AutoResponseRepository, text string) (*domain.AutoResponse, error) {
	entry, err := repo.FindExact(ctx, text)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, repository.ErrAutoResponseNotFound) {
		return nil, err
	}

	entry, err = repo.FindContainedIn(ctx, text)
	if err == nil {
		return entry, nil
	}
	if errors.Is(err, repository.ErrAutoResponseNotFound) {
		return nil, nil
	}
	return nil, err
}

// Match 返回与 question 匹配的回复；没有匹配时返回默认回复和 false。
func (s *AutoResponseService) Match(ctx context.Context, question string) (string, bool, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", false, validationError("missing question")
	}
	entry, err := matchAutoResponse(ctx, s.repo, question)
	if err != nil {
		logrus.WithError(err).Error("AutoResponse.Match: lookup failed")
		return "", false, mapRepoError(err, ErrAutoResponseNotFound)
	}
	if entry == nil || strings.TrimSpace(entry.Response) == "" {
		return DefaultAutoReply, false, nil
	}
	return entry.Response, true, nil
}

// List 返回全部 FAQ 条目
func (s *AutoResponseService) List(ctx context.Context) ([]domain.AutoResponse, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		logrus.WithError(err).Error("AutoResponse.List: query failed")
		return nil, mapRepoError(err, ErrAutoResponseNotFound)
	}
	return entries, nil
}

// Save 按 question 新增或覆盖回复
func (s *AutoResponseService) Save(ctx context.Context, question, response string) (*domain.AutoResponse, error) {
	entry, err := newEntry(0, question, response)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, entry); err != nil {
		logrus.WithError(err).WithField("question", entry.Question).Error("AutoResponse.Save: upsert failed")
		return nil, mapRepoError(err, ErrAutoResponseNotFound)
	}
	logrus.WithField("auto_response_id", entry.ID).Info("Auto response saved")
	return entry, nil
}

// Update 按 ID 修改问答
func (s *AutoResponseService) Update(ctx context.Context, id uint, question, response string) (*domain.AutoResponse, error) {
	if id == 0 {
		return nil, validationError("missing id")
	}
	entry, err := newEntry(id, question, response)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrQuestionTaken
		}
		return nil, mapRepoError(err, ErrAutoResponseNotFound)
	}
	return entry, nil
}

// Delete 按 ID 删除
func (s *AutoResponseService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err, ErrAutoResponseNotFound)
	}
	logrus.WithField("auto_response_id", id).Info("Auto response deleted")
	return nil
}

func newEntry(id uint, question, response string) (*domain.AutoResponse, error) {
	question = strings.TrimSpace(question)
	response = strings.TrimSpace(response)
	if question == "" || response == "" {
		return nil, validationError("question and response are required")
	}
	return &domain.AutoResponse{ID: id, Question: question, Response: response}, nil
}
