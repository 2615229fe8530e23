// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pytutor-go/internal/model"
)

// TutorHandler 返回内置的导师人设集合。
type TutorHandler struct{}

// NewTutorHandler 创建一个新的 TutorHandler 实例。
func NewTutorHandler() *TutorHandler {
	return &TutorHandler{}
}

// List 返回全部导师人设。
func (h *TutorHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    model.Tutors,
	})
}
