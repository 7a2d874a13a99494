package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsInserted 已写入的记录数，source 为 manual 或 bulk
	RecordsInserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soil",
		Name:      "records_inserted_total",
		Help:      "Soil records persisted, by insert path.",
	}, []string{"source"})

	// Outcomes 每次操作返回的提示级别
	Outcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soil",
		Name:      "operation_outcomes_total",
		Help:      "Operation outcomes by operation and notification severity.",
	}, []string{"operation", "severity"})

	// BulkBatches 批量导入的批次结果
	BulkBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soil",
		Name:      "bulk_batches_total",
		Help:      "Bulk load batches by result.",
	}, []string{"result"})

	// HTTPDuration 请求耗时
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "soil",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
