package controllers

import (
	"embed"
	"html/template"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"go-soilhealth/models"
	"go-soilhealth/services"
)

//go:embed templates/*.html
var templateFS embed.FS

// historySize 看板保留的提示条数
const historySize = 10

var nowFunc = time.Now

// DashboardController 渲染录入表单、批量导入、记录表格和提示栏
type DashboardController struct {
	Service      *services.SoilService
	DefaultLimit int

	mu      sync.Mutex
	history []models.Notification // 最新的在前
}

// NewDashboardController 创建看板控制器
func NewDashboardController(svc *services.SoilService, defaultLimit int) *DashboardController {
	return &DashboardController{Service: svc, DefaultLimit: defaultLimit}
}

// DashboardTemplate 解析内嵌模板，交给 gin 的 SetHTMLTemplate
func DashboardTemplate() *template.Template {
	return template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
		"num":        formatFloat,
		"limitLabel": limitLabel,
	}).ParseFS(templateFS, "templates/dashboard.html"))
}

// Push 记录一条提示，只保留最近 historySize 条
func (d *DashboardController) Push(n models.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history = append([]models.Notification{n}, d.history...)
	if len(d.history) > historySize {
		d.history = d.history[:historySize]
	}
}

// Latest 返回最近一条提示
func (d *DashboardController) Latest() (models.Notification, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.history) == 0 {
		return models.Notification{}, false
	}
	return d.history[0], true
}

// History 返回提示历史的副本
func (d *DashboardController) History() []models.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.history)
}

type dashboardView struct {
	Heading        string
	Labels         []string
	Records        []models.SoilRecord
	Limit          int
	LimitOptions   []int
	BulkQuantities []int
	Banner         *models.Notification
	FetchNotice    *models.Notification
	History        []models.Notification
	Today          string
}

// Show 渲染看板
func (d *DashboardController) Show(ctx *gin.Context) {
	limit := d.selectedLimit(ctx.Query("limit"))
	res := d.Service.FetchRecords(ctx.Request.Context(), limit)

	heading := "All Records"
	if limit > 0 {
		heading = "Last " + strconv.Itoa(limit) + " Records"
	}

	view := dashboardView{
		Heading:        heading,
		Labels:         models.ColumnLabels,
		Records:        res.Records,
		Limit:          limit,
		LimitOptions:   services.LimitOptions,
		BulkQuantities: services.BulkQuantities,
		FetchNotice:    res.Notification,
		History:        d.History(),
		Today:          models.DateOf(nowFunc()).String(),
	}
	if n, ok := d.Latest(); ok {
		view.Banner = &n
	}
	ctx.HTML(http.StatusOK, "dashboard.html", view)
}

// InsertRecord 处理录入表单。数值字段缺省或无法解析时按 0 处理
func (d *DashboardController) InsertRecord(ctx *gin.Context) {
	input := models.SoilInput{
		FarmLocation:    ctx.PostForm("farmLocation"),
		NitrogenLevel:   formFloat(ctx, "nitrogenLevel"),
		PhosphorusLevel: formFloat(ctx, "phosphorusLevel"),
		PotassiumLevel:  formFloat(ctx, "potassiumLevel"),
		PHLevel:         formFloat(ctx, "phLevel"),
		MoistureContent: formFloat(ctx, "moistureContent"),
	}
	if raw := ctx.PostForm("testDate"); raw != "" {
		date, err := models.ParseDate(raw)
		if err != nil {
			d.Push(models.Warning(err.Error()))
			d.redirect(ctx)
			return
		}
		input.TestDate = date
	}

	res := d.Service.InsertOne(ctx.Request.Context(), input)
	d.Push(res.Notification)
	d.redirect(ctx)
}

// InsertBulk 处理批量导入按钮，批大小为 min(数量, 10000)
func (d *DashboardController) InsertBulk(ctx *gin.Context) {
	quantity, err := strconv.Atoi(ctx.PostForm("quantity"))
	if err != nil || !slices.Contains(services.BulkQuantities, quantity) {
		d.Push(models.Warning("Select a bulk quantity from the list"))
		d.redirect(ctx)
		return
	}

	batchSize := services.EffectiveBatchSize(quantity, d.Service.Limits().MaxBatch)
	res := d.Service.InsertBulk(ctx.Request.Context(), quantity, batchSize)
	d.Push(res.Notification)
	d.redirect(ctx)
}

// selectedLimit 非法的 limit 回落到默认值
func (d *DashboardController) selectedLimit(raw string) int {
	if raw == "" {
		return d.DefaultLimit
	}
	limit, err := parseLimit(raw, d.Service.Limits().MaxLimit)
	if err != nil {
		return d.DefaultLimit
	}
	return limit
}

// redirect 提交后重定向回看板，保留当前行数选择
func (d *DashboardController) redirect(ctx *gin.Context) {
	target := "/?" + url.Values{"limit": {strconv.Itoa(d.selectedLimit(ctx.PostForm("limit")))}}.Encode()
	ctx.Redirect(http.StatusSeeOther, target)
}

func formFloat(ctx *gin.Context, key string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(ctx.PostForm(key)), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func limitLabel(limit int) string {
	if limit == 0 {
		return "Don't Limit"
	}
	return "Limit to " + strconv.Itoa(limit) + " rows"
}
