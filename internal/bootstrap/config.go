package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"cordi-chat/internal/infra/setup"
)

// Config 结构体用于存储从环境变量或文件加载的配置
type Config struct {
	DB              setup.DBConfig
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	KeyPrefix       string // Redis Key 前缀
	JWTSecret       string
	JWTExpiryHours  int
	ServerPort      string
	LogLevel        string
	AppEnv          string // development / production
	RateLimitMax    int
	RateLimitWindow time.Duration
	AllowedOrigin   string

	PresenceIdleTimeout   time.Duration
	PresenceSweepSchedule string

	AdminUsername string
	AdminPassword string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", setup.DriverMySQL)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "chat:")
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("SERVER_PORT", "5000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("RATE_LIMIT_MAX", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", time.Second)
	v.SetDefault("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	v.SetDefault("PRESENCE_IDLE_TIMEOUT", 15*time.Minute)
	v.SetDefault("PRESENCE_SWEEP_SCHEDULE", "@every 1m")
}

// LoadConfig 从 .env 文件 (如果存在) 和环境变量加载配置
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // 忽略错误，允许只使用环境变量

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return configFromViper(v)
}

func configFromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DB: setup.DBConfig{
			Driver:   strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
			DSN:      v.GetString("DB_DSN"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
		},
		RedisAddr:             v.GetString("REDIS_ADDR"),
		RedisPassword:         v.GetString("REDIS_PASSWORD"),
		RedisDB:               v.GetInt("REDIS_DB"),
		KeyPrefix:             v.GetString("REDIS_KEY_PREFIX"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		JWTExpiryHours:        v.GetInt("JWT_EXPIRY_HOURS"),
		ServerPort:            v.GetString("SERVER_PORT"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		AppEnv:                v.GetString("APP_ENV"),
		RateLimitMax:          v.GetInt("RATE_LIMIT_MAX"),
		RateLimitWindow:       v.GetDuration("RATE_LIMIT_WINDOW"),
		AllowedOrigin:         v.GetString("CORS_ALLOWED_ORIGIN"),
		PresenceIdleTimeout:   v.GetDuration("PRESENCE_IDLE_TIMEOUT"),
		PresenceSweepSchedule: v.GetString("PRESENCE_SWEEP_SCHEDULE"),
		AdminUsername:         strings.TrimSpace(v.GetString("ADMIN_USERNAME")),
		AdminPassword:         v.GetString("ADMIN_PASSWORD"),
	}

	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("environment variable REDIS_ADDR must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("environment variable JWT_SECRET must be set")
	}
	switch cfg.DB.Driver {
	case setup.DriverMySQL, setup.DriverPostgres, setup.DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}
	if cfg.RateLimitMax <= 0 || cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}
	if cfg.PresenceIdleTimeout < time.Second {
		return nil, fmt.Errorf("PRESENCE_IDLE_TIMEOUT must be at least 1s")
	}

	// 验证日志级别
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

// SeedAdmin 是否配置了启动时创建的管理员账号
func (c *Config) SeedAdmin() bool {
	return c.AdminUsername != "" && c.AdminPassword != ""
}
