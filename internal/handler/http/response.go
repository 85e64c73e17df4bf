package http

import (
	"net/http"
	"strconv"

	"cordi-chat/internal/domain"
	"cordi-chat/internal/middleware"
	"cordi-chat/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

func SuccessResponse(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}

// currentIdentity 读取 Auth 中间件写入的调用方身份，缺失时直接写 401 响应。
func currentIdentity(c *gin.Context) (service.Identity, bool) {
	userIDAny, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		logrus.WithField("path", c.FullPath()).Warn("Handler: User ID not found in context, middleware missing or failed?")
		ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return service.Identity{}, false
	}
	userID, ok := userIDAny.(uint)
	if !ok || userID == 0 {
		logrus.Error("Handler: User ID in context is not uint")
		ErrorResponse(c, http.StatusInternalServerError, "Internal server error processing user ID")
		return service.Identity{}, false
	}
	return service.Identity{ID: userID, Role: domain.Role(c.GetString(middleware.ContextRoleKey))}, true
}

// pathID 解析路径参数中的正整数 ID
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		ErrorResponse(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
