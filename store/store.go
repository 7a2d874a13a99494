package store

import (
	"context"
	"errors"
	"fmt"

	"go-soilhealth/models"
)

// TableName 记录表名
const TableName = "soil_health"

// ErrUnsupportedDriver 不支持的数据库驱动
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// SoilStore 土壤记录的持久化接口
type SoilStore interface {
	// EnsureSchema 建表，表已存在时不做任何事
	EnsureSchema(ctx context.Context) error

	// Insert 写入一行并返回系统分配的 record_no
	Insert(ctx context.Context, rec models.SoilRecord) (int64, error)

	// InsertBatch 在一个事务内写入一批记录，要么全部提交要么全部回滚
	InsertBatch(ctx context.Context, recs []models.SoilRecord) error

	// List 按 record_no 倒序返回记录；limit 为 0 时返回全部
	List(ctx context.Context, limit int) ([]models.SoilRecord, error)

	// Count 返回总行数
	Count(ctx context.Context) (int64, error)

	// Ping 检查存储是否可达
	Ping(ctx context.Context) error
}

// Dialect 不同数据库的建表语句和单条 INSERT 的最大行数
type Dialect struct {
	Name                string
	CreateTable         string
	MaxRowsPerStatement int
}

var dialects = map[string]Dialect{
	"mysql": {
		Name: "mysql",
		CreateTable: `
		CREATE TABLE IF NOT EXISTS soil_health (
			record_no INT AUTO_INCREMENT PRIMARY KEY,
			farm_location VARCHAR(255) NOT NULL,
			test_date DATE,
			nitrogen_level DOUBLE,
			phosphorus_level DOUBLE,
			potassium_level DOUBLE,
			pH_level DOUBLE,
			moisture_content DOUBLE
		)
		`,
		// DSN 开启了 interpolateParams，一个批次只需一条语句
		MaxRowsPerStatement: 10000,
	},
	"sqlite": {
		Name: "sqlite",
		CreateTable: `
		CREATE TABLE IF NOT EXISTS soil_health (
			record_no INTEGER PRIMARY KEY AUTOINCREMENT,
			farm_location TEXT NOT NULL,
			test_date DATE,
			nitrogen_level REAL,
			phosphorus_level REAL,
			potassium_level REAL,
			pH_level REAL,
			moisture_content REAL
		)
		`,
		// 7 列 * 500 行，远低于 SQLITE_MAX_VARIABLE_NUMBER
		MaxRowsPerStatement: 500,
	},
}

// DialectFor 按驱动名返回方言
func DialectFor(driver string) (Dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return Dialect{}, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	return d, nil
}
