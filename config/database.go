package config

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const defaultConnectTimeout = 15 * time.Second

// DSN 生成驱动所需的连接串
func DSN(cfg DBConfig) (string, error) {
	switch cfg.Driver {
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.DBName = cfg.Name
		mc.ParseTime = true
		// 主机不响应时 TCP 建连不超过 connect_timeout
		mc.Timeout = cfg.ConnectTimeout
		if mc.Timeout <= 0 {
			mc.Timeout = defaultConnectTimeout
		}
		// 客户端插值，一个批次 10000 行不受 65535 个占位符的限制
		mc.InterpolateParams = true
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return mc.FormatDSN(), nil
	case "sqlite":
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", cfg.Path), nil
	default:
		return "", fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

// ConnectDB 打开连接池，不做网络往返
func ConnectDB(cfg DBConfig) (*sql.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", cfg.Driver, err)
	}
	if cfg.Driver == "sqlite" {
		// sqlite 单写者
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	return db, nil
}

// InitDB 打开连接池并以指数退避重试 Ping。
// Ping 最终失败时仍返回 db，调用方决定是否继续启动。
func InitDB(ctx context.Context, cfg DBConfig, log *zap.Logger) (*sql.DB, error) {
	db, err := ConnectDB(cfg)
	if err != nil {
		return nil, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = cfg.ConnectTimeout
	if bo.MaxElapsedTime <= 0 {
		bo.MaxElapsedTime = defaultConnectTimeout
	}

	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			log.Warn("database ping failed", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		return nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return db, fmt.Errorf("ping %s db: %w", cfg.Driver, err)
	}

	log.Info("database connected", zap.String("driver", cfg.Driver), zap.Int("attempts", attempt))
	return db, nil
}
