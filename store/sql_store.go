package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"go-soilhealth/models"
)

const columnList = `farm_location, test_date, nitrogen_level, phosphorus_level, potassium_level, pH_level, moisture_content`

const selectSQL = `
	SELECT record_no, farm_location, test_date, nitrogen_level, phosphorus_level,
		potassium_level, pH_level, moisture_content
	FROM soil_health
	ORDER BY record_no DESC`

const rowPlaceholders = "(?, ?, ?, ?, ?, ?, ?)"

// SQLStore 基于 database/sql 的 SoilStore 实现
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	log     *zap.Logger
}

var _ SoilStore = (*SQLStore)(nil)

// NewSQLStore 创建存储，driver 为 mysql 或 sqlite
func NewSQLStore(db *sql.DB, driver string, log *zap.Logger) (*SQLStore, error) {
	d, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &SQLStore{db: db, dialect: d, log: log}, nil
}

// Dialect 返回当前方言
func (s *SQLStore) Dialect() Dialect { return s.dialect }

func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.CreateTable); err != nil {
		return fmt.Errorf("create %s table: %w", TableName, err)
	}
	s.log.Info("schema ensured", zap.String("table", TableName), zap.String("dialect", s.dialect.Name))
	return nil
}

func (s *SQLStore) Insert(ctx context.Context, rec models.SoilRecord) (int64, error) {
	query := "INSERT INTO soil_health (" + columnList + ") VALUES " + rowPlaceholders
	result, err := s.db.ExecContext(ctx, query, recordArgs(rec)...)
	if err != nil {
		return 0, fmt.Errorf("insert soil record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted record_no: %w", err)
	}
	return id, nil
}

func (s *SQLStore) InsertBatch(ctx context.Context, recs []models.SoilRecord) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	step := s.dialect.MaxRowsPerStatement
	for start := 0; start < len(recs); start += step {
		end := min(start+step, len(recs))
		query, args := multiRowInsert(recs[start:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert rows %d-%d: %w", start, end-1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	s.log.Debug("batch persisted", zap.Int("rows", len(recs)))
	return nil
}

func (s *SQLStore) List(ctx context.Context, limit int) ([]models.SoilRecord, error) {
	if limit < 0 {
		return nil, fmt.Errorf("negative limit %d", limit)
	}

	var (
		rows *sql.Rows
		err  error
	)
	if limit == 0 {
		rows, err = s.db.QueryContext(ctx, selectSQL)
	} else {
		rows, err = s.db.QueryContext(ctx, selectSQL+" LIMIT ?", limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query soil records: %w", err)
	}
	defer rows.Close()

	records := make([]models.SoilRecord, 0)
	for rows.Next() {
		var rec models.SoilRecord
		if err := rows.Scan(
			&rec.RecordNo, &rec.FarmLocation, &rec.TestDate,
			&rec.NitrogenLevel, &rec.PhosphorusLevel, &rec.PotassiumLevel,
			&rec.PHLevel, &rec.MoistureContent,
		); err != nil {
			return nil, fmt.Errorf("scan soil record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate soil records: %w", err)
	}
	return records, nil
}

func (s *SQLStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM soil_health").Scan(&n); err != nil {
		return 0, fmt.Errorf("count soil records: %w", err)
	}
	return n, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func recordArgs(rec models.SoilRecord) []any {
	return []any{
		rec.FarmLocation, rec.TestDate,
		rec.NitrogenLevel, rec.PhosphorusLevel, rec.PotassiumLevel,
		rec.PHLevel, rec.MoistureContent,
	}
}

// multiRowInsert 生成 INSERT ... VALUES (...), (...) 语句及参数
func multiRowInsert(recs []models.SoilRecord) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO soil_health (" + columnList + ") VALUES ")
	args := make([]any, 0, len(recs)*7)
	for i, rec := range recs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(rowPlaceholders)
		args = append(args, recordArgs(rec)...)
	}
	return b.String(), args
}
