package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-soilhealth/config"
	"go-soilhealth/controllers"
	"go-soilhealth/generator"
	"go-soilhealth/logger"
	"go-soilhealth/models"
	"go-soilhealth/routes"
	"go-soilhealth/services"
	"go-soilhealth/store"
)

var (
	Version   = "dev"
	BuildTime = ""
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version info and exit")
	flag.Parse()
	if *versionFlag {
		fmt.Printf("Version:   %s\n", Version)
		fmt.Printf("BuildTime: %s\n", BuildTime)
		os.Exit(0)
	}

	// 读取配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	lg, err := logger.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error setting up logger:", err)
		os.Exit(1)
	}
	log := lg.Logger
	defer logger.Flush(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 连接数据库；连不上时继续启动，错误显示在看板上
	db, connErr := config.InitDB(ctx, cfg.DB, log)
	if db == nil {
		log.Fatal("failed to open database", zap.Error(connErr))
	}
	defer db.Close()

	st, err := store.NewSQLStore(db, cfg.DB.Driver, log)
	if err != nil {
		log.Fatal("failed to create store", zap.Error(err))
	}

	svc := services.NewSoilService(st, generator.New(), services.Limits{
		MaxBatch: cfg.Bulk.MaxBatch,
		MaxTotal: cfg.Bulk.MaxTotal,
		MaxLimit: cfg.Read.MaxLimit,
	}, log)
	dashboard := controllers.NewDashboardController(svc, cfg.Read.DefaultLimit)

	if connErr != nil {
		log.Error("database unreachable at startup", zap.Error(connErr))
		dashboard.Push(models.Error(fmt.Sprintf("Error connecting to database: %v", connErr)))
	}
	// 建表失败不阻止启动，之后的读写会重试
	schemaCtx, cancelSchema := context.WithTimeout(ctx, cfg.DB.ConnectTimeout)
	if n := svc.EnsureSchema(schemaCtx); n != nil {
		dashboard.Push(*n)
	}
	cancelSchema()

	// 设置路由
	gin.SetMode(cfg.HTTP.GinMode)
	r := routes.SetupRouter(routes.Options{
		Service:          svc,
		Dashboard:        dashboard,
		StrictQuantities: cfg.Bulk.StrictQuantities,
		Logger:           log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Infof("soil service %s listening on %s (db driver %s)", Version, cfg.HTTP.Addr, cfg.DB.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}
