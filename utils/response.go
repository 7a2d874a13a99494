package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-soilhealth/models"
)

// Response 统一API响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

// BadRequest 返回请求错误响应
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// InternalServerError 返回服务器内部错误响应
func InternalServerError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Response{
		Code:    http.StatusInternalServerError,
		Message: message,
	})
}

// ServiceUnavailable 返回依赖不可用响应
func ServiceUnavailable(c *gin.Context, data interface{}) {
	c.JSON(http.StatusServiceUnavailable, Response{
		Code:    http.StatusServiceUnavailable,
		Message: "unavailable",
		Data:    data,
	})
}

// StatusFor 提示级别对应的 HTTP 状态码，success 使用 okStatus
func StatusFor(sev models.Severity, okStatus int) int {
	switch sev {
	case models.SeverityWarning:
		return http.StatusBadRequest
	case models.SeverityError:
		return http.StatusInternalServerError
	default:
		return okStatus
	}
}

// Notify 按提示级别返回响应，message 为提示文本
func Notify(c *gin.Context, n models.Notification, okStatus int, data interface{}) {
	status := StatusFor(n.Severity, okStatus)
	c.JSON(status, Response{
		Code:    status,
		Message: n.Text,
		Data:    data,
	})
}
