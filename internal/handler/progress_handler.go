// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pytutor-go/internal/apperr"
	"pytutor-go/internal/service"
	"pytutor-go/pkg/log"
)

// ProgressHandler 负责处理学习进度与徽章相关的 API 请求。
type ProgressHandler struct {
	progressService service.ProgressService
}

// NewProgressHandler 创建一个新的 ProgressHandler 实例。
func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// ProgressPayload 是一次课程进度上报。
type ProgressPayload struct {
	Lesson    string `json:"lesson" binding:"required"`
	Completed bool   `json:"completed"`
	Score     int    `json:"score" binding:"min=0,max=100"`
}

// BadgePayload 是一次徽章授予。
type BadgePayload struct {
	Name string `json:"name" binding:"required"`
}

// SaveProgressRequest 定义了进度上报 API 的请求体结构。
// progress 与 badge 至少提供其一。
type SaveProgressRequest struct {
	UserID   string           `json:"userId" binding:"required"`
	Progress *ProgressPayload `json:"progress"`
	Badge    *BadgePayload    `json:"badge"`
}

// SaveProgress 处理进度上报请求。
func (h *ProgressHandler) SaveProgress(c *gin.Context) {
	var req SaveProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("SaveProgress: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载",
			"errors":  bindingErrors(err),
		})
		return
	}

	var progress *service.ProgressUpdate
	if req.Progress != nil {
		progress = &service.ProgressUpdate{
			Lesson:    req.Progress.Lesson,
			Completed: req.Progress.Completed,
			Score:     req.Progress.Score,
		}
	}
	var badge *service.BadgeUpdate
	if req.Badge != nil {
		badge = &service.BadgeUpdate{Name: req.Badge.Name}
	}

	if err := h.progressService.SaveProgress(c.Request.Context(), req.UserID, progress, badge); err != nil {
		var verr *apperr.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    http.StatusBadRequest,
				"message": "Missing required fields",
				"errors":  verr.Fields,
			})
			return
		}
		log.Error("SaveProgress: database update failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "保存进度失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Progress saved",
	})
}

// GetUserData 处理用户整体进度与徽章查询请求。
func (h *ProgressHandler) GetUserData(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "User ID is required",
		})
		return
	}

	data, err := h.progressService.GetUserData(c.Request.Context(), userID)
	if err != nil {
		log.Error("GetUserData: failed to fetch user data", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "获取用户数据失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    data,
	})
}
