// Package token 提供了用于生成和验证 JSON Web Tokens (JWT) 的功能。
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager 负责管理 JWT 的生成和验证。
type JWTManager struct {
	secretKey       []byte        // 用于签名和验证 token 的密钥
	accessTokenDur  time.Duration // access token 的有效期
	refreshTokenDur time.Duration // refresh token 的有效期
}

// CustomClaims 定义了存储在 JWT 中的自定义数据。
// 嵌入 jwt.RegisteredClaims 以包含标准声明（如过期时间）。
type CustomClaims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// NewJWTManager 创建一个新的 JWTManager 实例。
func NewJWTManager(secret string, accessTokenExpireHours, refreshTokenExpireDays int) *JWTManager {
	return &JWTManager{
		secretKey:       []byte(secret),
		accessTokenDur:  time.Hour * time.Duration(accessTokenExpireHours),
		refreshTokenDur: time.Duration(refreshTokenExpireDays) * 24 * time.Hour,
	}
}

// GenerateToken 根据给定的用户信息生成一个新的 access token。
func (m *JWTManager) GenerateToken(userID uint, email, role string) (string, error) {
	return m.sign(userID, email, role, m.accessTokenDur)
}

// GenerateRefreshToken 生成一个有效期更长的 refresh token。
func (m *JWTManager) GenerateRefreshToken(userID uint, email, role string) (string, error) {
	return m.sign(userID, email, role, m.refreshTokenDur)
}

func (m *JWTManager) sign(userID uint, email, role string, dur time.Duration) (string, error) {
	claims := CustomClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(dur)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secretKey)
}

// VerifyToken 验证给定的 token 字符串。
// token 有效时返回 CustomClaims，无效（签名不匹配或已过期）时返回错误。
func (m *JWTManager) VerifyToken(tokenString string) (*CustomClaims, error) {
	t, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := t.Claims.(*CustomClaims); ok && t.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
