// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pytutor-go/internal/apperr"
	"pytutor-go/internal/model"
	"pytutor-go/internal/repository"
	"pytutor-go/pkg/database"
	"pytutor-go/pkg/hash"
	"pytutor-go/pkg/token"
)

// UserService 接口定义了所有与用户相关的业务操作。
type UserService interface {
	Register(name, email, password string) (*model.User, error)
	Login(email, password string) (user *model.User, accessToken, refreshToken string, err error)
	GetByEmail(email string) (*model.User, error)
	Logout(tokenString string) error
	IsTokenRevoked(ctx context.Context, tokenString string) bool
	RefreshToken(refreshTokenString string) (newAccessToken, newRefreshToken string, err error)
}

// userService 是 UserService 接口的实现。
type userService struct {
	userRepo   repository.UserRepository
	jwtManager *token.JWTManager
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo repository.UserRepository, jwtManager *token.JWTManager) UserService {
	return &userService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
	}
}

// Register 处理用户注册的业务逻辑。
func (s *userService) Register(name, email, password string) (*model.User, error) {
	// 1. 检查邮箱是否已被占用
	_, err := s.userRepo.FindByEmail(email)
	if err == nil {
		return nil, apperr.ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 2. 对密码进行哈希处理
	hashedPassword, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	// 3. 创建新用户，默认角色 USER
	newUser := &model.User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
		Role:     model.RoleUser,
	}
	if err := s.userRepo.Create(newUser); err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}

	return newUser, nil
}

// Login 处理用户登录的业务逻辑。
// 用户不存在与密码错误统一返回 apperr.ErrInvalidCredentials，不向调用方泄露区别。
func (s *userService) Login(email, password string) (*model.User, string, string, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", apperr.ErrInvalidCredentials
		}
		return nil, "", "", err
	}

	if !hash.CheckPasswordHash(password, user.Password) {
		return nil, "", "", apperr.ErrInvalidCredentials
	}

	accessToken, err := s.jwtManager.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", "", err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

// GetByEmail 根据邮箱获取用户详细信息。
func (s *userService) GetByEmail(email string) (*model.User, error) {
	return s.userRepo.FindByEmail(email)
}

// Logout 处理用户登出逻辑，将 token 加入 Redis 黑名单。
// token 的剩余有效期作为黑名单键的过期时间。
func (s *userService) Logout(tokenString string) error {
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil {
		return err
	}
	expiration := time.Until(claims.ExpiresAt.Time)
	if expiration <= 0 {
		return nil // 已过期的 token 无需拉黑
	}
	return database.RDB.Set(context.Background(), "blacklist:"+tokenString, "true", expiration).Err()
}

// IsTokenRevoked 查询 token 是否已被登出拉黑。
// Redis 查询失败时视为未拉黑，避免缓存故障放大为全站 401。
func (s *userService) IsTokenRevoked(ctx context.Context, tokenString string) bool {
	n, err := database.RDB.Exists(ctx, "blacklist:"+tokenString).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// RefreshToken 验证 refresh token 并签发新的 access token 和 refresh token。
func (s *userService) RefreshToken(refreshTokenString string) (string, string, error) {
	claims, err := s.jwtManager.VerifyToken(refreshTokenString)
	if err != nil {
		return "", "", errors.New("invalid refresh token")
	}

	user, err := s.userRepo.FindByEmail(claims.Email)
	if err != nil {
		return "", "", errors.New("user not found")
	}

	newAccessToken, err := s.jwtManager.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", "", err
	}
	newRefreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", "", err
	}

	return newAccessToken, newRefreshToken, nil
}
