package http

import (
	"net/http"

	"cordi-chat/internal/domain"
	"cordi-chat/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthHandler 封装了与账号认证相关的 HTTP 处理逻辑
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler 创建 AuthHandler 实例
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignupRequest 定义注册请求的结构体
type SignupRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=student guest"`
}

// Signup 处理自助注册请求
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Signup: Invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	newUser, err := h.authService.Register(c.Request.Context(), req.Username, req.Password, domain.Role(req.Role))
	if err != nil {
		logrus.WithError(err).WithField("username", req.Username).Warn("Handler.Signup: Registration failed")
		HandleServiceError(c, err)
		return
	}

	logrus.WithField("user_id", newUser.ID).Info("Handler.Signup: User registered successfully")
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user_id": newUser.ID,
	})
}

// SigninRequest 定义登录请求的结构体
type SigninRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SigninResponse 定义登录成功的响应结构体
type SigninResponse struct {
	Message  string      `json:"message"`
	Token    string      `json:"token"`
	ID       uint        `json:"id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// Signin 处理登录请求
func (h *AuthHandler) Signin(c *gin.Context) {
	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Signin: Invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: username and password required"})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SigninResponse{
		Message:  "Login successful",
		Token:    result.Token,
		ID:       result.User.ID,
		Username: result.User.Username,
		Role:     result.User.Role,
	})
}

// Logout 把当前账号标记为离线。Token 本身无状态，由客户端丢弃。
func (h *AuthHandler) Logout(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}
	if err := h.authService.Logout(c.Request.Context(), caller.ID); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
