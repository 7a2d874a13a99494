package controllers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"go-soilhealth/services"
	"go-soilhealth/utils"
)

// HealthController 存储连通性检查
type HealthController struct {
	Service *services.SoilService
}

// NewHealthController 创建健康检查控制器
func NewHealthController(svc *services.SoilService) *HealthController {
	return &HealthController{Service: svc}
}

// Health 数据库可达时返回 200，否则 503
func (h *HealthController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.Service.Ping(pingCtx); err != nil {
		utils.ServiceUnavailable(ctx, gin.H{"status": "down", "error": err.Error()})
		return
	}
	utils.Success(ctx, gin.H{"status": "ok"})
}
