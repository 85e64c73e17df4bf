package bootstrap

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	httpHandler "cordi-chat/internal/handler/http"
	wsHandler "cordi-chat/internal/handler/websocket"
	"cordi-chat/internal/middleware"
)

// Handlers 汇总路由需要的所有处理器
type Handlers struct {
	Auth         *httpHandler.AuthHandler
	User         *httpHandler.UserHandler
	Conversation *httpHandler.ConversationHandler
	AutoResponse *httpHandler.AutoResponseHandler
	WebSocket    *wsHandler.WebSocketHandler
}

// NewRouter 创建 Gin Engine 并注册中间件和路由
func NewRouter(cfg *Config, h Handlers, redisClient *redis.Client, log *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.AllowedOrigin))
	router.Use(middleware.RateLimit(redisClient, cfg.KeyPrefix, cfg.RateLimitMax, cfg.RateLimitWindow))

	authRequired := middleware.Auth(cfg.JWTSecret)
	adminOnly := middleware.RequireRole("admin")

	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/signup", h.Auth.Signup)
		authRoutes.POST("/signin", h.Auth.Signin)
		authRoutes.POST("/logout", authRequired, h.Auth.Logout)
	}

	userRoutes := api.Group("/users", authRequired)
	{
		userRoutes.GET("", adminOnly, h.User.List)
		userRoutes.GET("/search", adminOnly, h.User.Search)
		userRoutes.GET("/stats", h.User.Stats)
		userRoutes.GET("/contacts", h.User.Contacts)
		userRoutes.PUT("/:id", adminOnly, h.User.Update)
		userRoutes.DELETE("/:id", adminOnly, h.User.Delete)
		userRoutes.PUT("/:id/activity", h.User.TouchActivity)
	}

	conversationRoutes := api.Group("/conversations", authRequired)
	{
		conversationRoutes.POST("/messages", h.Conversation.SendMessage)
		conversationRoutes.GET("/messages", h.Conversation.FetchConversation)
		conversationRoutes.GET("/admin", h.Conversation.GetAdmin)
	}

	autoResponseRoutes := api.Group("/auto-responses", authRequired)
	{
		autoResponseRoutes.GET("", h.AutoResponse.List)
		autoResponseRoutes.GET("/match", h.AutoResponse.Match)
		autoResponseRoutes.POST("", adminOnly, h.AutoResponse.Create)
		autoResponseRoutes.PUT("/:id", adminOnly, h.AutoResponse.Update)
		autoResponseRoutes.DELETE("/:id", adminOnly, h.AutoResponse.Delete)
	}

	router.GET("/ws/inbox", authRequired, h.WebSocket.HandleInbox)
	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })

	return router
}

// CORSMiddleware 允许配置的前端来源跨域访问
func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggerMiddleware 创建一个 Gin 中间件用于记录请求日志
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next() // 处理请求
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        path,
			"request_id":  c.GetString(middleware.ContextRequestIDKey),
		})

		switch {
		case errorMessage != "":
			entry.Error(errorMessage)
		case statusCode >= 500:
			entry.Error("Server error")
		case statusCode >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request handled")
		}
	}
}
