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

	"github.com/robfig/cron"
	"go.uber.org/zap"

	"faculty-portal/config"
	"faculty-portal/internal/api/handler"
	"faculty-portal/internal/api/router"
	"faculty-portal/internal/repository"
	"faculty-portal/internal/service"
	"faculty-portal/pkg/database"
	"faculty-portal/pkg/jwt"
	applogger "faculty-portal/pkg/logger"
	"faculty-portal/pkg/mailer"
	"faculty-portal/pkg/rbac"
	"faculty-portal/pkg/redis"
	"faculty-portal/pkg/storage"
	"faculty-portal/pkg/validation"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	migrateDown := flag.Int("migrate-down", 0, "回滚指定步数的数据库迁移后退出")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}

	// 3.1 回滚模式：执行后直接退出
	if *migrateDown > 0 {
		if err := database.RollbackMigrations(sqlDB, *migrateDown, logger); err != nil {
			logger.Fatal("数据库回滚失败", zap.Error(err))
		}
		_ = sqlDB.Close()
		return
	}

	// 3.2 执行数据库迁移
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与限流将不可用", zap.Error(err))
		rdb = nil
	}
	var revoker service.TokenRevoker
	if rdb != nil {
		revoker = rdb
	}

	// 5. 基础组件
	trans, err := validation.Setup()
	if err != nil {
		logger.Fatal("初始化参数校验失败", zap.Error(err))
	}

	files, err := storage.NewLocal(&cfg.Upload)
	if err != nil {
		logger.Fatal("初始化上传目录失败", zap.Error(err))
	}

	policy := rbac.NewPolicy(cfg.RBAC.Roles)
	jwtMgr := jwt.NewManager(&cfg.Auth)
	mail := mailer.NewDispatcher(mailer.NewSender(&cfg.Mail, logger), logger)

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(service.Deps{
		Config:  cfg,
		Repo:    repo,
		JWT:     jwtMgr,
		Revoker: revoker,
		Mail:    mail,
		Files:   files,
		Policy:  policy,
		Logger:  logger,
	})
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	engine := router.Setup(router.Deps{
		Config:     cfg,
		Handler:    h,
		JWT:        jwtMgr,
		Redis:      rdb,
		Users:      repo.User,
		Policy:     policy,
		Translator: trans,
		UploadDir:  files.Dir(),
		Ping:       repo.Ping,
		Logger:     logger,
	})

	// 8. 定时任务：清理过期通知
	scheduler := cron.New()
	if err := scheduler.AddFunc(cfg.Notification.PurgeSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := svc.Notification.PurgeExpired(ctx)
		if err != nil {
			logger.Error("清理过期通知失败", zap.Error(err))
			return
		}
		if n > 0 {
			logger.Info("已清理过期通知", zap.Int64("count", n))
		}
	}); err != nil {
		logger.Fatal("注册定时任务失败", zap.String("spec", cfg.Notification.PurgeSpec), zap.Error(err))
	}
	scheduler.Start()

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))
	case err := <-serveErr:
		logger.Error("HTTP 服务器异常", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	scheduler.Stop()

	// 等待尚未发送完的邮件
	mail.Wait()

	_ = sqlDB.Close()
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("服务器已关闭")
}
