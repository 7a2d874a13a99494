package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-soilhealth/controllers"
	"go-soilhealth/middleware"
	"go-soilhealth/services"
)

// Options 路由所需的依赖和开关
type Options struct {
	Service          *services.SoilService
	Dashboard        *controllers.DashboardController
	StrictQuantities bool
	Logger           *zap.Logger
}

// SetupRouter 配置所有路由
func SetupRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(opts.Logger), middleware.AccessLog(opts.Logger), gin.Recovery())
	r.SetHTMLTemplate(controllers.DashboardTemplate())

	// 创建控制器实例
	soilController := controllers.NewSoilController(opts.Service, opts.StrictQuantities)
	healthController := controllers.NewHealthController(opts.Service)
	dashboard := opts.Dashboard

	// 看板
	r.GET("/", dashboard.Show)
	r.POST("/dashboard/records", dashboard.InsertRecord)
	r.POST("/dashboard/bulk", dashboard.InsertBulk)

	// 土壤记录 JSON 接口
	soil := r.Group("/soil")
	{
		soil.POST("/records", soilController.SaveSoilRecord)
		soil.POST("/records/bulk", soilController.SaveBulkRecords)
		soil.GET("/records", soilController.GetSoilRecords)
		soil.GET("/records/count", soilController.GetRecordCount)
		soil.GET("/export", soilController.ExportSoilRecords)
	}

	// 运维
	r.GET("/healthz", healthController.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
