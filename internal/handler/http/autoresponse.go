package http

import (
	"net/http"

	"cordi-chat/internal/service"

	"github.com/gin-gonic/gin"
)

// AutoResponseHandler 封装了 FAQ 问答的 HTTP 处理逻辑
type AutoResponseHandler struct {
	autoResponseService *service.AutoResponseService
}

// NewAutoResponseHandler 创建 AutoResponseHandler 实例
func NewAutoResponseHandler(autoResponseService *service.AutoResponseService) *AutoResponseHandler {
	return &AutoResponseHandler{autoResponseService: autoResponseService}
}

// AutoResponseRequest 是新增或修改问答的请求体
type AutoResponseRequest struct {
	Question string `json:"question" binding:"required"`
	Response string `json:"response" binding:"required"`
}

type questionItem struct {
	ID       uint   `json:"id"`
	Question string `json:"question"`
}

// List 返回问题列表，管理员额外看到回复内容
func (h *AutoResponseHandler) List(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}
	entries, err := h.autoResponseService.List(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	if caller.Role.IsAdmin() {
		SuccessResponse(c, http.StatusOK, entries)
		return
	}
	items := make([]questionItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, questionItem{ID: e.ID, Question: e.Question})
	}
	SuccessResponse(c, http.StatusOK, items)
}

// Match 处理 GET /api/auto-responses/match?question=
func (h *AutoResponseHandler) Match(c *gin.Context) {
	question := c.Query("question")
	reply, matched, err := h.autoResponseService.Match(c.Request.Context(), question)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"question": question, "response": reply, "matched": matched})
}

// Create 按 question 新增或覆盖
func (h *AutoResponseHandler) Create(c *gin.Context) {
	var req AutoResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "question and response are required")
		return
	}
	entry, err := h.autoResponseService.Save(c.Request.Context(), req.Question, req.Response)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, entry)
}

// Update 按 ID 修改
func (h *AutoResponseHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AutoResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "question and response are required")
		return
	}
	entry, err := h.autoResponseService.Update(c.Request.Context(), id, req.Question, req.Response)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, entry)
}

// Delete 按 ID 删除
func (h *AutoResponseHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.autoResponseService.Delete(c.Request.Context(), id); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Auto response deleted"})
}
