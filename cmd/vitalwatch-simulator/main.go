package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"vitalwatch/internal/config"
	"vitalwatch/internal/logger"
	"vitalwatch/internal/mqttclient"
	"vitalwatch/internal/simulator"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "vitalwatch-simulator")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	userID := os.Getenv("SIMULATOR_USER_ID")
	if userID == "" {
		userID = "demo-user"
	}

	// 3. 连接 MQTT
	mqttCfg := cfg.MQTT
	mqttCfg.ClientID = mqttCfg.ClientID + "-simulator"
	mqttClient, err := mqttclient.NewClient(&mqttCfg, log)
	if err != nil {
		log.Fatal("Failed to connect to MQTT broker", zap.Error(err))
	}
	defer mqttClient.Disconnect()

	sim := simulator.New(time.Now().UnixNano())

	// 4. 可选历史回填（每分钟一条的倒推读数，用于冷启动演示）
	if backfill, err := strconv.Atoi(os.Getenv("SIMULATOR_BACKFILL")); err == nil && backfill > 0 {
		for _, reading := range sim.Historical(userID, backfill) {
			payload, err := json.Marshal(reading)
			if err != nil {
				log.Error("Failed to marshal historical reading", zap.Error(err))
				continue
			}
			if err := mqttClient.Publish(cfg.MQTT.Topic, cfg.MQTT.QoS, false, payload); err != nil {
				log.Error("Failed to publish historical reading", zap.Error(err))
			}
		}
		log.Info("Historical backfill published",
			zap.String("user_id", userID),
			zap.Int("count", backfill),
		)
	}

	// 5. 按节拍生成并发布读数
	cadence := time.Duration(cfg.Monitor.ReadingCadence) * time.Second
	ticker := time.NewTicker(cadence)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("Received signal, stopping simulator",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	log.Info("Simulator started",
		zap.String("user_id", userID),
		zap.String("topic", cfg.MQTT.Topic),
		zap.Duration("cadence", cadence),
	)

	for {
		select {
		case <-ctx.Done():
			log.Info("Simulator stopped")
			return
		case <-ticker.C:
			reading := sim.Next(userID)
			payload, err := json.Marshal(reading)
			if err != nil {
				log.Error("Failed to marshal reading", zap.Error(err))
				continue
			}
			if err := mqttClient.Publish(cfg.MQTT.Topic, cfg.MQTT.QoS, false, payload); err != nil {
				log.Error("Failed to publish reading", zap.Error(err))
				continue
			}
			log.Debug("Published reading",
				zap.Int("heart_rate", reading.HeartRate),
				zap.Int("spo2", reading.SpO2),
				zap.Float64("temperature", reading.Temperature),
			)

			// 5% 概率随刻产生一条设备侧报警
			if alert := sim.MaybeAlert(reading); alert != nil {
				alertPayload, err := json.Marshal(alert)
				if err != nil {
					log.Error("Failed to marshal alert", zap.Error(err))
					continue
				}
				if err := mqttClient.Publish(cfg.MQTT.AlertTopic, cfg.MQTT.QoS, false, alertPayload); err != nil {
					log.Error("Failed to publish alert", zap.Error(err))
					continue
				}
				log.Info("Published alert",
					zap.String("alert_type", alert.AlertType),
					zap.String("sensor", alert.Sensor),
				)
			}
		}
	}
}
