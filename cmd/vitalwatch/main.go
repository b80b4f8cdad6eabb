package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"vitalwatch/internal/alerts"
	"vitalwatch/internal/cache"
	"vitalwatch/internal/config"
	"vitalwatch/internal/consumer"
	"vitalwatch/internal/detector"
	"vitalwatch/internal/httpapi"
	"vitalwatch/internal/logger"
	"vitalwatch/internal/mqttclient"
	"vitalwatch/internal/repository"
	"vitalwatch/internal/service"
	"vitalwatch/internal/stream"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "vitalwatch")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	// 3. 连接数据库
	db, err := sql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	db.SetMaxOpenConns(cfg.Database.MaxConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdle)
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}
	defer db.Close()

	// 4. 连接 Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to ping Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// 5. 连接 MQTT
	mqttClient, err := mqttclient.NewClient(&cfg.MQTT, log)
	if err != nil {
		log.Fatal("Failed to connect to MQTT broker", zap.Error(err))
	}
	defer mqttClient.Disconnect()

	// 6. 组装组件
	readingRepo := repository.NewReadingRepository(db, log)
	alertRepo := repository.NewAlertRepository(db, log)
	profileRepo := repository.NewProfileRepository(db, log)

	cacheManager := cache.NewManager(cfg, redisClient, log)
	publisher := stream.NewPublisher(cfg, redisClient, log)
	alertManager := alerts.NewManager(alertRepo, log)

	var notifier detector.Notifier
	if cfg.Monitor.WebhookURL != "" {
		notifier = detector.NewWebhookNotifier(cfg.Monitor.WebhookURL, log)
	}

	monitor := service.NewMonitorService(cfg, cacheManager, readingRepo, alertRepo, alertManager, notifier, log)

	streamConsumer := stream.NewConsumer(cfg, redisClient, monitor, log)
	mqttConsumer := consumer.NewMQTTConsumer(cfg, mqttClient, readingRepo, cacheManager, alertRepo, publisher, log)

	// 7. 创建上下文（支持优雅关闭）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 8. 启动消费者
	go streamConsumer.Start(ctx)

	serviceErrChan := make(chan error, 1)
	go func() {
		if err := mqttConsumer.Start(ctx); err != nil {
			serviceErrChan <- err
		}
	}()

	// 9. 启动 HTTP 服务
	router := httpapi.NewRouter(log)
	router.RegisterDashboardRoutes(httpapi.NewDashboardHandler(monitor, profileRepo, log))

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router,
	}
	go func() {
		log.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serviceErrChan <- err
		}
	}()

	// 10. 等待信号（优雅关闭）
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down",
			zap.String("signal", sig.String()),
		)
	case err := <-serviceErrChan:
		log.Error("Service error", zap.Error(err))
	}

	// 11. 优雅关闭：先停会话，再停消费者和HTTP
	monitor.Stop()
	cancel()
	if err := mqttConsumer.Stop(context.Background()); err != nil {
		log.Error("Failed to stop MQTT consumer", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}

	log.Info("Monitor service stopped")
}
