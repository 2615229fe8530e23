// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"gorm.io/gorm"

	"pytutor-go/internal/apperr"
	"pytutor-go/internal/model"
	"pytutor-go/internal/repository"
	"pytutor-go/pkg/log"
)

const settingKeyGemini = model.SettingKeyGeminiAPIKey

// Gemini API Key 的格式约束。
const (
	apiKeyMinLen = 20
	apiKeyMaxLen = 100
)

var apiKeyPattern = regexp.MustCompile(`^AI[a-zA-Z0-9_-]+$`)

// SettingService 定义了设置读写的业务接口。
// GetValue 带进程内读穿缓存；SetProviderKey 写库成功后立即更新缓存，
// 管理员轮换密钥无需重启进程即可生效。
type SettingService interface {
	GetValue(ctx context.Context, key string) (string, error)
	SetProviderKey(ctx context.Context, apiKey string) error
}

type settingService struct {
	repo  repository.SettingRepository
	mu    sync.RWMutex
	cache map[string]string
}

// NewSettingService 创建一个新的 SettingService 实例。
// 缓存是实例状态而不是包级单例，测试可以为每个用例构造新实例。
func NewSettingService(repo repository.SettingRepository) SettingService {
	return &settingService{
		repo:  repo,
		cache: make(map[string]string),
	}
}

// GetValue 返回键对应的设置值，记录不存在时返回 apperr.ErrNotFound。
func (s *settingService) GetValue(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	if v, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return v, nil
	}
	s.mu.RUnlock()

	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("setting %q: %w", key, apperr.ErrNotFound)
		}
		return "", fmt.Errorf("failed to get setting %q: %w", key, err)
	}

	s.mu.Lock()
	s.cache[key] = setting.Value
	s.mu.Unlock()
	return setting.Value, nil
}

// SetProviderKey 校验并 upsert Gemini API Key，成功后刷新缓存条目。
func (s *settingService) SetProviderKey(ctx context.Context, apiKey string) error {
	if len(apiKey) < apiKeyMinLen {
		return apperr.NewValidation(fmt.Sprintf("apiKey: 长度不能小于 %d 个字符", apiKeyMinLen))
	}
	if len(apiKey) > apiKeyMaxLen {
		return apperr.NewValidation("apiKey: 超出长度上限")
	}
	if !apiKeyPattern.MatchString(apiKey) {
		return apperr.NewValidation("apiKey: 格式不合法")
	}

	if err := s.repo.Upsert(ctx, settingKeyGemini, apiKey); err != nil {
		return err
	}

	// 写库成功后同步缓存，避免旧密钥驻留到进程重启
	s.mu.Lock()
	s.cache[settingKeyGemini] = apiKey
	s.mu.Unlock()

	log.Info("Gemini API key updated")
	return nil
}
