// Package generator 生成用于批量导入的模拟土壤检测记录。
// 各字段独立均匀抽样，只保证满足表结构，不模拟字段之间的相关性。
package generator

import (
	"math"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"go-soilhealth/models"
)

// 各字段取值范围
const (
	NutrientMin = 0.1
	NutrientMax = 5.0
	PHMin       = 4.5
	PHMax       = 8.5
	MoistureMin = 5.0
	MoistureMax = 50.0

	// HistoryYears 检测日期最早距今的年数
	HistoryYears = 2
)

// Generator 模拟记录生成器
type Generator struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
	now   func() time.Time
}

// Option 生成器选项
type Option func(*Generator)

// WithSeed 固定随机种子，0 表示使用加密随机种子
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.faker = gofakeit.New(seed) }
}

// WithClock 替换当前时间来源
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New 创建生成器
func New(opts ...Option) *Generator {
	g := &Generator{
		faker: gofakeit.New(0),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// DateWindow 返回可生成的检测日期区间 [today-2y, today]
func (g *Generator) DateWindow() (from, to models.Date) {
	to = models.DateOf(g.now())
	from = models.Date{Time: to.AddDate(-HistoryYears, 0, 0)}
	return from, to
}

// Next 生成一条记录
func (g *Generator) Next() models.SoilRecord {
	g.mu.Lock()
	defer g.mu.Unlock()

	from, to := g.DateWindow()
	days := int(to.Sub(from.Time).Hours() / 24)

	return models.SoilRecord{
		FarmLocation:    g.faker.City(),
		TestDate:        from.AddDays(g.faker.IntRange(0, days)),
		NitrogenLevel:   g.uniform(NutrientMin, NutrientMax),
		PhosphorusLevel: g.uniform(NutrientMin, NutrientMax),
		PotassiumLevel:  g.uniform(NutrientMin, NutrientMax),
		PHLevel:         g.uniform(PHMin, PHMax),
		MoistureContent: g.uniform(MoistureMin, MoistureMax),
	}
}

// Batch 生成 n 条记录
func (g *Generator) Batch(n int) []models.SoilRecord {
	out := make([]models.SoilRecord, n)
	for i := range out {
		out[i] = g.Next()
	}
	return out
}

func (g *Generator) uniform(lo, hi float64) *float64 {
	v := Round2(g.faker.Float64Range(lo, hi))
	return &v
}

// Round2 四舍五入到两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
