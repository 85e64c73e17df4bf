package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cordi-chat/internal/domain"
	"cordi-chat/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Identity 是已经通过认证的调用方。
type Identity struct {
	ID   uint
	Role domain.Role
}

// SendResult 是发送消息的返回值，不包含自动回复的 ID。
type SendResult struct {
	PrimaryMessageID uint `json:"primaryMessageId"`
	SenderID         uint `json:"senderId"`
	ReceiverID       uint `json:"receiverId"`
}

// ConversationService 负责消息路由：确定接收方、保存消息、生成自动回复。
//
// 路由规则：
//   - 管理员发送必须显式指定接收方；
//   - 非管理员发送一律发给规范管理员 (ID 最小的管理员)，忽略传入的接收方；
//   - 非管理员的消息匹配到 FAQ 时，由管理员回复一条自动消息。
type ConversationService struct {
	userRepo     repository.UserRepository
	messageRepo  repository.MessageRepository
	responseRepo repository.AutoResponseRepository
	notifier     repository.MessageNotifier // 可选，为 nil 时不推送
	now          func() time.Time

	adminLookup singleflight.Group
}

// NewConversationService 创建 ConversationService 实例。
func NewConversationService(
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
	responseRepo repository.AutoResponseRepository,
	notifier repository.MessageNotifier,
) *ConversationService {
	if userRepo == nil || messageRepo == nil || responseRepo == nil {
		panic("repositories cannot be nil for ConversationService")
	}
	return &ConversationService{
		userRepo:     userRepo,
		messageRepo:  messageRepo,
		responseRepo: responseRepo,
		notifier:     notifier,
		now:          time.Now,
	}
}

// WithClock 替换时间来源，主要用于测试。
func (s *ConversationService) WithClock(now func() time.Time) *ConversationService {
	if now != nil {
		s.now = now
	}
	return s
}

// SendMessage 发送一条消息，必要时追加一条自动回复。
func (s *ConversationService) SendMessage(ctx context.Context, senderID uint, receiverID *uint, rawText string) (*SendResult, error) {
	logCtx := logrus.WithField("sender_id", senderID)

	text := strings.TrimSpace(rawText)
	if senderID == 0 || text == "" {
		return nil, validationError("missing sender or empty message")
	}

	sender, err := s.userRepo.FindByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logCtx.Warn("SendMessage: sender does not exist")
			return nil, validationError("unknown sender")
		}
		logCtx.WithError(err).Error("SendMessage: failed to load sender")
		return nil, mapRepoError(err, ErrUserNotFound)
	}

	toID, err := s.resolveReceiver(ctx, sender, receiverID)
	if err != nil {
		return nil, err
	}
	logCtx = logCtx.WithField("receiver_id", toID)

	// 校验通过后不再受调用方取消影响，两次写入要么完成要么明确失败
	ctx = context.WithoutCancel(ctx)

	primary := &domain.Message{
		SenderID:   sender.ID,
		ReceiverID: toID,
		Message:    text,
		CreatedAt:  s.now(),
	}
	if err := s.messageRepo.Create(ctx, primary); err != nil {
		logCtx.WithError(err).Error("SendMessage: failed to store message")
		return nil, mapRepoError(err, ErrStorage)
	}
	logCtx.WithField("message_id", primary.ID).Info("Message stored")
	s.notify(ctx, *primary)

	if !sender.Role.IsAdmin() {
		s.sendAutoReply(ctx, primary)
	}

	return &SendResult{
		PrimaryMessageID: primary.ID,
		SenderID:         sender.ID,
		ReceiverID:       toID,
	}, nil
}

// resolveReceiver 按角色确定实际接收方。
func (s *ConversationService) resolveReceiver(ctx context.Context, sender *domain.User, receiverID *uint) (uint, error) {
	if !sender.Role.IsAdmin() {
		admin, err := s.ResolveCanonicalAdmin(ctx)
		if err != nil {
			return 0, err
		}
		return admin.ID, nil
	}

	if receiverID == nil || *receiverID == 0 {
		return 0, validationError("receiver is required for admin")
	}
	receiver, err := s.userRepo.FindByID(ctx, *receiverID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return 0, validationError("unknown receiver")
		}
		return 0, mapRepoError(err, ErrUserNotFound)
	}
	return receiver.ID, nil
}

// sendAutoReply 尽力而为：查找或写入失败只记录日志。
func (s *ConversationService) sendAutoReply(ctx context.Context, primary *domain.Message) {
	logCtx := logrus.WithFields(logrus.Fields{
		"message_id":  primary.ID,
		"sender_id":   primary.SenderID,
		"receiver_id": primary.ReceiverID,
	})

	entry, err := matchAutoResponse(ctx, s.responseRepo, primary.Message)
	if err != nil {
		logCtx.WithError(err).Warn("Auto reply lookup failed, skipping")
		return
	}
	if entry == nil {
		logCtx.Debug("No auto response matched")
		return
	}
	reply := strings.TrimSpace(entry.Response)
	if reply == "" {
		return
	}

	createdAt := s.now()
	if createdAt.Before(primary.CreatedAt) {
		createdAt = primary.CreatedAt
	}
	autoMsg := &domain.Message{
		SenderID:   primary.ReceiverID,
		ReceiverID: primary.SenderID,
		Message:    reply,
		CreatedAt:  createdAt,
	}
	if err := s.messageRepo.Create(ctx, autoMsg); err != nil {
		logCtx.WithError(err).Warn("Failed to store auto reply, ignoring")
		return
	}
	logCtx.WithFields(logrus.Fields{"auto_reply_id": autoMsg.ID, "question_id": entry.ID}).Info("Auto reply stored")
	s.notify(ctx, *autoMsg)
}

// notify 向会话双方推送消息，失败只记录日志。
func (s *ConversationService) notify(ctx context.Context, msg domain.Message) {
	if s.notifier == nil {
		return
	}
	for _, userID := range []uint{msg.ReceiverID, msg.SenderID} {
		if err := s.notifier.PublishMessage(ctx, userID, msg); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"message_id": msg.ID,
				"user_id":    userID,
			}).Warn("Failed to publish message notification")
		}
		if msg.ReceiverID == msg.SenderID {
			break
		}
	}
}

// FetchConversation 返回 a、b 之间的全部消息。ID 0 代表规范管理员。
func (s *ConversationService) FetchConversation(ctx context.Context, a, b uint) ([]domain.MessageView, error) {
	var adminID uint
	admin, err := s.ResolveCanonicalAdmin(ctx)
	switch {
	case err == nil:
		adminID = admin.ID
	case a == 0 || b == 0:
		// 占位符必须解析成真实管理员
		return nil, err
	case !errors.Is(err, ErrNoAdmin):
		// 管理员 ID 只用于 "Admin" 显示名，查询失败时退回用户名
		logrus.WithError(err).WithFields(logrus.Fields{"user_a": a, "user_b": b}).
			Warn("FetchConversation: admin lookup failed, using usernames")
	}
	if a == 0 {
		a = adminID
	}
	if b == 0 {
		b = adminID
	}

	messages, err := s.messageRepo.ListConversation(ctx, a, b, adminID)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"user_a": a, "user_b": b}).Error("FetchConversation: query failed")
		return nil, mapRepoError(err, ErrStorage)
	}
	return messages, nil
}

// FetchConversationFor 在 FetchConversation 基础上校验调用方是否为会话参与者 (管理员除外)。
func (s *ConversationService) FetchConversationFor(ctx context.Context, viewer Identity, a, b uint) ([]domain.MessageView, error) {
	if !viewer.Role.IsAdmin() {
		// 非管理员只能查看自己与他人的会话，0 仍代表管理员
		if viewer.ID != a && viewer.ID != b {
			return nil, ErrForbidden
		}
	}
	return s.FetchConversation(ctx, a, b)
}

// adminLookupTimeout 限制合并后的管理员查询时长
const adminLookupTimeout = 5 * time.Second

// ResolveCanonicalAdmin 返回 ID 最小的管理员。每次调用都查询数据库，
// 只合并同一时刻的并发查询。合并后的查询不跟随任何单个调用方的取消，
// 每个调用方只在自己的 ctx 结束时提前返回。
func (s *ConversationService) ResolveCanonicalAdmin(ctx context.Context) (*domain.User, error) {
	ch := s.adminLookup.DoChan("canonical-admin", func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), adminLookupTimeout)
		defer cancel()
		return s.userRepo.FindFirstAdmin(lookupCtx)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrStorage, ctx.Err())
	}

	if res.Err != nil {
		if errors.Is(res.Err, repository.ErrUserNotFound) {
			return nil, ErrNoAdmin
		}
		logrus.WithError(res.Err).Error("ResolveCanonicalAdmin: query failed")
		return nil, mapRepoError(res.Err, ErrNoAdmin)
	}
	admin, ok := res.Val.(*domain.User)
	if !ok || admin == nil {
		return nil, ErrNoAdmin
	}
	return admin, nil
}

// ParseAccountID 解析请求中的账号 ID，"0" 是管理员占位符。
func ParseAccountID(raw string) (uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, validationError("missing user id")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, validationError("invalid user id " + strconv.Quote(raw))
	}
	return uint(id), nil
}
