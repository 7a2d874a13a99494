package models

import (
	"time"

	"github.com/google/uuid"
)

// Severity 提示消息级别
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Notification 一次操作的结果提示，由调用方决定如何展示
type Notification struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewNotification 创建带 ID 和时间戳的提示
func NewNotification(sev Severity, text string) Notification {
	return Notification{
		ID:        uuid.NewString(),
		Severity:  sev,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

func Success(text string) Notification { return NewNotification(SeveritySuccess, text) }
func Warning(text string) Notification { return NewNotification(SeverityWarning, text) }
func Error(text string) Notification   { return NewNotification(SeverityError, text) }
func Info(text string) Notification    { return NewNotification(SeverityInfo, text) }

// InsertResult 单条插入的结果
type InsertResult struct {
	Notification Notification `json:"notification"`
	RecordNo     int64        `json:"recordNo,omitempty"`
}

// BulkResult 批量插入的结果。失败时 Inserted 和 BatchesCommitted 给出已提交的进度
type BulkResult struct {
	Notification     Notification `json:"notification"`
	Requested        int          `json:"requested"`
	BatchSize        int          `json:"batchSize"`
	BatchesPlanned   int          `json:"batchesPlanned"`
	BatchesCommitted int          `json:"batchesCommitted"`
	Inserted         int          `json:"inserted"`
}

// FetchResult 查询结果。成功时 Notification 为空
type FetchResult struct {
	Records      []SoilRecord  `json:"records"`
	Limit        int           `json:"limit"`
	Notification *Notification `json:"notification,omitempty"`
}
