package controllers

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-soilhealth/models"
	"go-soilhealth/services"
	"go-soilhealth/utils"
)

// SoilController 处理土壤检测记录的 JSON 接口
type SoilController struct {
	Service *services.SoilService
	// StrictQuantities 为 true 时批量数量必须是 services.BulkQuantities 之一
	StrictQuantities bool
}

// NewSoilController 创建一个新的SoilController实例
func NewSoilController(svc *services.SoilService, strictQuantities bool) *SoilController {
	return &SoilController{Service: svc, StrictQuantities: strictQuantities}
}

// BulkRequest 批量导入请求
type BulkRequest struct {
	Total     int `json:"total"`
	BatchSize int `json:"batchSize"`
}

// SaveSoilRecord 保存一条手工录入的记录
func (c *SoilController) SaveSoilRecord(ctx *gin.Context) {
	var input models.SoilInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		utils.BadRequest(ctx, err.Error())
		return
	}

	res := c.Service.InsertOne(ctx.Request.Context(), input)
	utils.Notify(ctx, res.Notification, http.StatusCreated, res)
}

// SaveBulkRecords 生成并批量写入模拟记录
func (c *SoilController) SaveBulkRecords(ctx *gin.Context) {
	var req BulkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(ctx, err.Error())
		return
	}
	if c.StrictQuantities && !slices.Contains(services.BulkQuantities, req.Total) {
		utils.BadRequest(ctx, fmt.Sprintf("total must be one of %v", services.BulkQuantities))
		return
	}
	if req.BatchSize == 0 {
		req.BatchSize = services.EffectiveBatchSize(req.Total, c.Service.Limits().MaxBatch)
	}

	res := c.Service.InsertBulk(ctx.Request.Context(), req.Total, req.BatchSize)
	utils.Notify(ctx, res.Notification, http.StatusCreated, res)
}

// GetSoilRecords 按 record_no 倒序返回记录，不带 limit 时返回全部
func (c *SoilController) GetSoilRecords(ctx *gin.Context) {
	limit, err := parseLimit(ctx.Query("limit"), c.Service.Limits().MaxLimit)
	if err != nil {
		utils.BadRequest(ctx, err.Error())
		return
	}

	res := c.Service.FetchRecords(ctx.Request.Context(), limit)
	if res.Notification != nil {
		utils.Notify(ctx, *res.Notification, http.StatusOK, res)
		return
	}
	utils.Success(ctx, res)
}

// GetRecordCount 返回总记录数
func (c *SoilController) GetRecordCount(ctx *gin.Context) {
	n, err := c.Service.Count(ctx.Request.Context())
	if err != nil {
		utils.InternalServerError(ctx, fmt.Sprintf("Error counting records: %v", err))
		return
	}
	utils.Success(ctx, gin.H{"count": n})
}

// parseLimit 解析 limit 参数，空串表示不限制
func parseLimit(raw string, maxLimit int) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", services.ErrInvalidLimit, raw)
	}
	if err := services.ValidateLimit(limit, maxLimit); err != nil {
		return 0, err
	}
	return limit, nil
}
