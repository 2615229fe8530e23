// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pytutor-go/internal/apperr"
	"pytutor-go/internal/model"
	"pytutor-go/internal/service"
	"pytutor-go/pkg/log"
)

// SettingsHandler 负责处理管理员设置相关的 API 请求。
type SettingsHandler struct {
	settingService service.SettingService
}

// NewSettingsHandler 创建一个新的 SettingsHandler 实例。
func NewSettingsHandler(settingService service.SettingService) *SettingsHandler {
	return &SettingsHandler{settingService: settingService}
}

// UpdateProviderKeyRequest 定义了更新 Gemini API Key 的请求体结构。
type UpdateProviderKeyRequest struct {
	APIKey string `json:"apiKey" binding:"required"`
}

// UpdateProviderKey 处理更新 Gemini API Key 的请求（仅限管理员）。
func (h *SettingsHandler) UpdateProviderKey(c *gin.Context) {
	var req UpdateProviderKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "API key is required",
		})
		return
	}

	if err := h.settingService.SetProviderKey(c.Request.Context(), req.APIKey); err != nil {
		var verr *apperr.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    http.StatusBadRequest,
				"message": "无效的 API Key",
				"errors":  verr.Fields,
			})
			return
		}
		log.Error("UpdateProviderKey: failed to update setting", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "更新 API Key 失败",
		})
		return
	}

	if userValue, ok := c.Get("user"); ok {
		if admin, ok := userValue.(*model.User); ok {
			log.Infof("Admin user '%s' updated the Gemini API key", admin.Email)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "API key updated",
	})
}
