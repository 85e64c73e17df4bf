package http

import (
	"net/http"

	"cordi-chat/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ConversationHandler 封装了发送消息与读取会话的 HTTP 处理逻辑
type ConversationHandler struct {
	conversationService *service.ConversationService
}

// NewConversationHandler 创建 ConversationHandler 实例
func NewConversationHandler(conversationService *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// SendMessageRequest 是发送消息的请求体。
// SenderID 可省略，发送方始终是当前登录账号。
type SendMessageRequest struct {
	SenderID   *uint  `json:"senderId"`
	ReceiverID *uint  `json:"receiverId"`
	Message    string `json:"message"`
}

// SendMessage 处理 POST /api/conversations/messages
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}
	logCtx := logrus.WithField("user_id", caller.ID)

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logCtx.WithError(err).Warn("Handler.SendMessage: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}
	if req.SenderID != nil && *req.SenderID != caller.ID {
		logCtx.WithField("claimed_sender", *req.SenderID).Warn("Handler.SendMessage: sender does not match token")
		ErrorResponse(c, http.StatusForbidden, "senderId does not match the authenticated user")
		return
	}

	result, err := h.conversationService.SendMessage(c.Request.Context(), caller.ID, req.ReceiverID, req.Message)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, result)
}

// FetchConversation 处理 GET /api/conversations/messages?userA=&userB=
func (h *ConversationHandler) FetchConversation(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}
	userA, err := service.ParseAccountID(c.Query("userA"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	userB, err := service.ParseAccountID(c.Query("userB"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	messages, err := h.conversationService.FetchConversationFor(c.Request.Context(), caller, userA, userB)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, messages)
}

// GetAdmin 处理 GET /api/conversations/admin
func (h *ConversationHandler) GetAdmin(c *gin.Context) {
	admin, err := h.conversationService.ResolveCanonicalAdmin(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": admin.ID, "username": admin.Username, "role": admin.Role})
}
