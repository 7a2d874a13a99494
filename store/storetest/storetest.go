// Package storetest 为测试提供基于临时 sqlite 文件的存储
package storetest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"go-soilhealth/config"
	"go-soilhealth/logger"
	"go-soilhealth/store"
)

// NewSQLite 在 t.TempDir() 中创建已建表的 sqlite 存储，测试结束时关闭
func NewSQLite(t testing.TB) (*store.SQLStore, *sql.DB) {
	t.Helper()

	db, err := config.ConnectDB(config.DBConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "soil.db"),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	st, err := store.NewSQLStore(db, "sqlite", logger.Nop().Logger)
	if err != nil {
		t.Fatalf("NewSQLStore: %v", err)
	}
	if err := st.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return st, db
}
