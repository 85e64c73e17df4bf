package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cordi-chat/internal/domain"
	"cordi-chat/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 负责注册、登录、登出等认证相关的业务逻辑。
type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	jwtExpiry time.Duration
}

// LoginResult 是登录成功后返回给客户端的信息
type LoginResult struct {
	Token string
	User  *domain.User
}

// NewAuthService 创建 AuthService 实例。
// jwtExpiryHours 小于等于 0 时默认 24 小时。
func NewAuthService(userRepo repository.UserRepository, jwtSecretKey string, jwtExpiryHours int) (*AuthService, error) {
	if userRepo == nil {
		panic("UserRepository cannot be nil for AuthService")
	}
	if jwtSecretKey == "" {
		return nil, fmt.Errorf("JWT secret key cannot be empty")
	}
	if jwtExpiryHours <= 0 {
		jwtExpiryHours = 24
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecretKey),
		jwtExpiry: time.Duration(jwtExpiryHours) * time.Hour,
	}, nil
}

// Register 处理自助注册，只允许 student 和 guest 角色。
func (s *AuthService) Register(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	logCtx := logrus.WithFields(logrus.Fields{"username": username, "role": role})

	if username == "" || password == "" || role == "" {
		return nil, validationError("username, password and role are required")
	}
	if role != domain.RoleStudent && role != domain.RoleGuest {
		return nil, validationError("role must be student or guest")
	}
	return s.createUser(ctx, logCtx, username, password, role)
}

// EnsureAdmin 在指定用户名不存在时创建一个管理员账号，用于启动时的初始化。
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (*domain.User, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, false, validationError("admin username and password are required")
	}
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, mapRepoError(err, ErrUserNotFound)
	}
	user, err := s.createUser(ctx, logrus.WithField("username", username), username, password, domain.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *AuthService) createUser(ctx context.Context, logCtx *logrus.Entry, username, password string, role domain.Role) (*domain.User, error) {
	// 1. 检查用户名是否已存在
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		logCtx.Warn("Registration failed: username already exists")
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		logCtx.WithError(err).Error("Database error while checking username")
		return nil, mapRepoError(err, ErrUserNotFound)
	}

	// 2. 哈希密码
	hashedPassword, err := hashPassword(password)
	if err != nil {
		logCtx.WithError(err).Error("Failed to hash password during registration")
		return nil, ErrInternalServer
	}

	// 3. 保存账号
	user := &domain.User{
		Username: username,
		Password: hashedPassword,
		Role:     role,
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.WithError(err).Warn("Registration failed: username already exists (repo error)")
			return nil, ErrUsernameTaken
		}
		logCtx.WithError(err).Error("Database error during user creation")
		return nil, mapRepoError(err, ErrUserNotFound)
	}

	logCtx.WithField("user_id", user.ID).Info("User registered successfully")
	user.Password = ""
	return user, nil
}

// Login 校验密码，成功后标记在线并签发 JWT。
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	logCtx := logrus.WithField("username", username)

	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			logCtx.Warn("Login attempt failed: User not found")
		} else {
			logCtx.WithError(err).Warn("Login attempt failed: Error finding user")
		}
		return nil, ErrAuthenticationFailed
	}
	if !checkPassword(password, user.Password) {
		logCtx.Warn("Login attempt failed: Invalid password")
		return nil, ErrAuthenticationFailed
	}

	token, err := s.generateJWT(user)
	if err != nil {
		logCtx.WithError(err).Error("Failed to generate JWT token during login")
		return nil, ErrInternalServer
	}

	now := time.Now()
	if err := s.userRepo.SetOnline(ctx, user.ID, true, now); err != nil {
		// 在线标记失败不影响登录
		logCtx.WithError(err).Warn("Failed to mark user online")
	} else {
		user.IsOnline = true
		user.LastActivity = &now
	}

	logCtx.WithField("user_id", user.ID).Info("User logged in successfully")
	user.Password = ""
	return &LoginResult{Token: token, User: user}, nil
}

// Logout 把账号标记为离线
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	if err := s.userRepo.SetOnline(ctx, userID, false, time.Now()); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Logout failed")
		return mapRepoError(err, ErrUserNotFound)
	}
	logrus.WithField("user_id", userID).Info("User logged out")
	return nil
}

// --- 私有辅助函数 ---

// hashPassword 使用 bcrypt 对密码进行哈希处理
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to generate hash from password: %w", err)
	}
	return string(bytes), nil
}

// checkPassword 验证提供的密码是否与存储的哈希匹配 (bcrypt 内部为常量时间比较)
func checkPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// generateJWT 为账号生成 JWT Token，携带 user_id 和 role
func (s *AuthService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"exp":     now.Add(s.jwtExpiry).Unix(),
		"iat":     now.Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}
