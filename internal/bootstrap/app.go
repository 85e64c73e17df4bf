package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpHandler "cordi-chat/internal/handler/http"
	wsHandler "cordi-chat/internal/handler/websocket"
	"cordi-chat/internal/hub"
	gormpersistence "cordi-chat/internal/infra/persistence/gorm"
	"cordi-chat/internal/infra/setup"
	redisstate "cordi-chat/internal/infra/state/redis"
	"cordi-chat/internal/service"
	"cordi-chat/internal/worker"
)

// App 结构体包含应用的所有组件和配置
type App struct {
	Config      *Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	AsynqServer *worker.WorkerServer
	Scheduler   *worker.Scheduler
	Hub         *hub.Hub
	HttpServer  *http.Server

	hubCtx    context.Context
	hubCancel context.CancelFunc
}

// NewLogger 按环境和级别创建 logrus Logger
func NewLogger(cfg *Config) *logrus.Logger {
	log := logrus.New()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logLevel, _ := logrus.ParseLevel(cfg.LogLevel) // LoadConfig 已校验
	log.SetLevel(logLevel)
	log.SetOutput(os.Stdout)

	// 服务层直接使用 logrus 包级 logger，保持相同的格式和级别
	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(logLevel)
	return log
}

// NewApp 创建并初始化应用的所有组件
func NewApp() (*App, error) {
	// 1. 加载配置
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	// 2. 初始化 Logger
	log := NewLogger(cfg)
	log.Info("Configuration loaded successfully")

	// 3. 初始化基础设施
	db, err := setup.InitDB(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	if err := setup.MigrateDB(db); err != nil {
		_ = setup.CloseDB(db)
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}

	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		_ = setup.CloseDB(db)
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	redisClientOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	log.Info("Infrastructure initialized successfully")

	// 4. 初始化 Repositories
	userRepo := gormpersistence.NewGormUserRepository(db)
	messageRepo := gormpersistence.NewGormMessageRepository(db)
	responseRepo := gormpersistence.NewGormAutoResponseRepository(db)
	notifier := redisstate.NewRedisInboxNotifier(redisClient, cfg.KeyPrefix)

	// 5. 初始化 Services
	authService, err := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiryHours)
	if err != nil {
		return nil, fmt.Errorf("failed to create AuthService: %w", err)
	}
	userService := service.NewUserService(userRepo)
	conversationService := service.NewConversationService(userRepo, messageRepo, responseRepo, notifier)
	autoResponseService := service.NewAutoResponseService(responseRepo)
	log.Info("Services initialized")

	if cfg.SeedAdmin() {
		admin, created, err := authService.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to seed admin account: %w", err)
		}
		log.WithFields(logrus.Fields{"user_id": admin.ID, "created": created}).Info("Admin account ensured")
	}

	// 6. Hub 与 Handlers
	hubInstance := hub.NewHub(redisClient, cfg.KeyPrefix)
	handlers := Handlers{
		Auth:         httpHandler.NewAuthHandler(authService),
		User:         httpHandler.NewUserHandler(userService),
		Conversation: httpHandler.NewConversationHandler(conversationService),
		AutoResponse: httpHandler.NewAutoResponseHandler(autoResponseService),
		WebSocket:    wsHandler.NewWebSocketHandler(hubInstance, cfg.AllowedOrigin),
	}

	// 7. 后台任务
	workerServer := worker.NewWorkerServer(redisClientOpt, userService, log)
	scheduler, err := worker.NewScheduler(redisClientOpt, cfg.PresenceSweepSchedule, cfg.PresenceIdleTimeout, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	// 8. 路由与 HTTP Server
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := NewRouter(cfg, handlers, redisClient, log)
	httpServer := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	hubCtx, hubCancel := context.WithCancel(context.Background())
	log.Info("Application assembled successfully")

	return &App{
		Config:      cfg,
		Log:         log,
		DB:          db,
		RedisClient: redisClient,
		AsynqServer: workerServer,
		Scheduler:   scheduler,
		Hub:         hubInstance,
		HttpServer:  httpServer,
		hubCtx:      hubCtx,
		hubCancel:   hubCancel,
	}, nil
}

// Start 启动应用的所有后台 Goroutine 和 HTTP 服务器
func (a *App) Start() error {
	go a.Hub.Run()
	if err := a.Hub.StartSubscription(a.hubCtx); err != nil {
		return fmt.Errorf("failed to start inbox subscription: %w", err)
	}
	a.Log.Info("Hub routine started")

	go a.AsynqServer.Start()
	if err := a.Scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
	return nil
}

// Shutdown 优雅地关闭应用
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	// 1. 先停止接收新请求
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	// 2. 停止 Hub 订阅并关闭所有 WebSocket 连接
	if a.Hub != nil {
		a.hubCancel()
		a.Hub.StopAllSubscriptions()
		a.Hub.Stop()
	}

	// 3. 后台任务
	if a.Scheduler != nil {
		a.Scheduler.Shutdown()
	}
	if a.AsynqServer != nil {
		a.AsynqServer.Shutdown()
	}

	// 4. Redis 与数据库连接
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis connection: %v", err)
		}
	}
	if err := setup.CloseDB(a.DB); err != nil {
		a.Log.Errorf("Error closing database connection: %v", err)
	}

	a.Log.Info("Application shutdown complete.")
}
