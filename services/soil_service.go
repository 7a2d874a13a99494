package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-soilhealth/logger"
	"go-soilhealth/metrics"
	"go-soilhealth/models"
	"go-soilhealth/store"
)

// 提示文本
const (
	MsgLocationRequired = "Farm Location field must be filled!"
	MsgInserted         = "Soil record inserted successfully!"
)

// BulkQuantities 批量导入下拉框的可选数量
var BulkQuantities = []int{10, 50, 100, 500, 1000, 10000, 100000}

// LimitOptions 表格行数下拉框，0 表示不限制
var LimitOptions = []int{0, 10, 50, 100, 200, 300, 500}

// ErrInvalidLimit limit 超出允许范围
var ErrInvalidLimit = errors.New("invalid limit")

// RecordSource 批量导入时的记录来源
type RecordSource interface {
	Batch(n int) []models.SoilRecord
}

// Limits 写入和查询的上限
type Limits struct {
	MaxBatch int // 单批最多行数
	MaxTotal int // 单次批量导入最多行数，0 表示不限制
	MaxLimit int // 单次查询最多行数
}

// DefaultLimits 默认上限
func DefaultLimits() Limits {
	return Limits{MaxBatch: 10000, MaxTotal: 0, MaxLimit: 500}
}

// SoilService 记录写入和查询。每个操作都把结果提示作为返回值交给调用方
type SoilService struct {
	store  store.SoilStore
	source RecordSource
	limits Limits
	log    *zap.Logger
	now    func() time.Time

	// schemaMu 保护 schemaReady；建表成功前每次读写都会重试
	schemaMu    sync.Mutex
	schemaReady bool
}

// NewSoilService 创建服务
func NewSoilService(st store.SoilStore, source RecordSource, limits Limits, log *zap.Logger) *SoilService {
	return &SoilService{
		store:  st,
		source: source,
		limits: limits,
		log:    log,
		now:    time.Now,
	}
}

// Limits 返回当前上限
func (s *SoilService) Limits() Limits { return s.limits }

// EnsureSchema 启动时建表。失败只返回错误提示，不中断启动；
// 之后的读写会在执行前再次尝试建表
func (s *SoilService) EnsureSchema(ctx context.Context) *models.Notification {
	if err := s.ensureSchema(ctx); err != nil {
		n := schemaError(err)
		return &n
	}
	return nil
}

// ensureSchema 表还没建成功时执行一次幂等的建表
func (s *SoilService) ensureSchema(ctx context.Context) error {
	s.schemaMu.Lock()
	defer s.schemaMu.Unlock()
	if s.schemaReady {
		return nil
	}
	if err := s.store.EnsureSchema(ctx); err != nil {
		logger.FromContext(ctx, s.log).Error("ensure schema failed", zap.Error(err))
		return err
	}
	s.schemaReady = true
	return nil
}

func schemaError(err error) models.Notification {
	return models.Error(fmt.Sprintf("Error creating table: %v", err))
}

// InsertOne 写入一条手工录入的记录。
// 地点为空（或只有空白）时直接返回 warning，不访问存储。
func (s *SoilService) InsertOne(ctx context.Context, in models.SoilInput) models.InsertResult {
	log := logger.FromContext(ctx, s.log)

	in.FarmLocation = strings.TrimSpace(in.FarmLocation)
	if in.FarmLocation == "" {
		return insertOutcome(models.InsertResult{Notification: models.Warning(MsgLocationRequired)})
	}
	if in.TestDate.IsZero() {
		in.TestDate = models.DateOf(s.now())
	}
	if err := s.ensureSchema(ctx); err != nil {
		return insertOutcome(models.InsertResult{Notification: schemaError(err)})
	}

	id, err := s.store.Insert(ctx, in.Record())
	if err != nil {
		log.Error("insert soil record failed", zap.String("location", in.FarmLocation), zap.Error(err))
		return insertOutcome(models.InsertResult{
			Notification: models.Error(fmt.Sprintf("Error inserting record: %v", err)),
		})
	}

	metrics.RecordsInserted.WithLabelValues("manual").Inc()
	log.Info("soil record inserted", zap.Int64("record_no", id))
	return insertOutcome(models.InsertResult{
		Notification: models.Success(MsgInserted),
		RecordNo:     id,
	})
}

// EffectiveBatchSize 实际批大小：min(batchSize, maxBatch)
func EffectiveBatchSize(batchSize, maxBatch int) int {
	if maxBatch > 0 && batchSize > maxBatch {
		return maxBatch
	}
	return batchSize
}

// PlanBatches 把 total 切成连续的批次，每批不超过 EffectiveBatchSize 行
func PlanBatches(total, batchSize, maxBatch int) []int {
	size := EffectiveBatchSize(batchSize, maxBatch)
	if total <= 0 || size <= 0 {
		return nil
	}
	plan := make([]int, 0, (total+size-1)/size)
	for remaining := total; remaining > 0; remaining -= size {
		plan = append(plan, min(remaining, size))
	}
	return plan
}

// InsertBulk 生成并写入 total 条模拟记录。
// 每批在独立事务中写入并立即提交，已提交的批次不会因后续失败而回滚；
// 某批失败时停止，并在提示中说明已提交的批次数和行数。
func (s *SoilService) InsertBulk(ctx context.Context, total, batchSize int) models.BulkResult {
	log := logger.FromContext(ctx, s.log)

	res := models.BulkResult{Requested: total}
	if total <= 0 {
		res.Notification = models.Warning("Bulk quantity must be positive")
		return bulkOutcome(res)
	}
	if s.limits.MaxTotal > 0 && total > s.limits.MaxTotal {
		res.Notification = models.Warning(fmt.Sprintf("Bulk quantity must be between 1 and %d", s.limits.MaxTotal))
		return bulkOutcome(res)
	}
	if batchSize <= 0 {
		res.Notification = models.Warning("Batch size must be positive")
		return bulkOutcome(res)
	}

	plan := PlanBatches(total, batchSize, s.limits.MaxBatch)
	res.BatchSize = EffectiveBatchSize(batchSize, s.limits.MaxBatch)
	res.BatchesPlanned = len(plan)
	if err := s.ensureSchema(ctx); err != nil {
		res.Notification = schemaError(err)
		return bulkOutcome(res)
	}

	for i, n := range plan {
		if err := s.store.InsertBatch(ctx, s.source.Batch(n)); err != nil {
			metrics.BulkBatches.WithLabelValues("failed").Inc()
			log.Error("bulk batch failed",
				zap.Int("batch", i+1),
				zap.Int("batches", len(plan)),
				zap.Int("committed_rows", res.Inserted),
				zap.Error(err))
			res.Notification = models.Error(fmt.Sprintf(
				"Error inserting bulk records: batch %d of %d failed after %d records were committed: %v",
				i+1, len(plan), res.Inserted, err))
			return bulkOutcome(res)
		}
		metrics.BulkBatches.WithLabelValues("committed").Inc()
		metrics.RecordsInserted.WithLabelValues("bulk").Add(float64(n))
		res.BatchesCommitted++
		res.Inserted += n
	}

	log.Info("bulk insert completed", zap.Int("records", res.Inserted), zap.Int("batches", res.BatchesCommitted))
	res.Notification = models.Success(fmt.Sprintf("%d records inserted successfully!", res.Inserted))
	return bulkOutcome(res)
}

// ValidateLimit 检查查询行数：0 表示全部，否则必须在 [1, max] 内
func ValidateLimit(limit, maxLimit int) error {
	if limit < 0 || limit > maxLimit {
		return fmt.Errorf("%w: %d (allowed 0..%d)", ErrInvalidLimit, limit, maxLimit)
	}
	return nil
}

// FetchRecords 按 record_no 倒序返回最多 limit 条记录，limit 为 0 时返回全部。
// 查询失败时返回空列表和错误提示。
func (s *SoilService) FetchRecords(ctx context.Context, limit int) models.FetchResult {
	log := logger.FromContext(ctx, s.log)

	res := models.FetchResult{Records: []models.SoilRecord{}, Limit: limit}
	if err := ValidateLimit(limit, s.limits.MaxLimit); err != nil {
		n := models.Warning(fmt.Sprintf("Limit must be between 1 and %d, or 0 for all rows", s.limits.MaxLimit))
		res.Notification = &n
		metrics.Outcomes.WithLabelValues("fetch", string(n.Severity)).Inc()
		return res
	}

	if err := s.ensureSchema(ctx); err != nil {
		n := schemaError(err)
		res.Notification = &n
		metrics.Outcomes.WithLabelValues("fetch", string(n.Severity)).Inc()
		return res
	}

	records, err := s.store.List(ctx, limit)
	if err != nil {
		log.Error("fetch soil records failed", zap.Int("limit", limit), zap.Error(err))
		n := models.Error(fmt.Sprintf("Error fetching records: %v", err))
		res.Notification = &n
		metrics.Outcomes.WithLabelValues("fetch", string(n.Severity)).Inc()
		return res
	}

	res.Records = records
	metrics.Outcomes.WithLabelValues("fetch", string(models.SeveritySuccess)).Inc()
	return res
}

// Count 返回总记录数
func (s *SoilService) Count(ctx context.Context) (int64, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return 0, err
	}
	return s.store.Count(ctx)
}

// Ping 检查存储
func (s *SoilService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func insertOutcome(res models.InsertResult) models.InsertResult {
	metrics.Outcomes.WithLabelValues("insert_one", string(res.Notification.Severity)).Inc()
	return res
}

func bulkOutcome(res models.BulkResult) models.BulkResult {
	metrics.Outcomes.WithLabelValues("insert_bulk", string(res.Notification.Severity)).Inc()
	return res
}
