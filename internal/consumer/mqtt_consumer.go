package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vitalwatch/internal/config"
	"vitalwatch/internal/models"
	"vitalwatch/internal/mqttclient"
)

// ReadingStore 读数持久化接口
type ReadingStore interface {
	Append(ctx context.Context, reading *models.Reading) error
}

// ReadingCache 读数缓存接口
type ReadingCache interface {
	PushReading(ctx context.Context, reading *models.Reading) error
}

// AlertStore 报警持久化接口
type AlertStore interface {
	Create(ctx context.Context, alert *models.Alert) error
}

// EventPublisher 事件发布接口
type EventPublisher interface {
	PublishReading(ctx context.Context, reading *models.Reading) (string, error)
	PublishAlert(ctx context.Context, alert *models.Alert) (string, error)
}

// Subscriber MQTT订阅接口
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqttclient.MessageHandler) error
	Unsubscribe(topics ...string) error
}

// MQTTConsumer 读数/报警上报的 MQTT 消费入口
// 无法解码的载荷记录并丢弃，越界数值不在此拒绝（由分类器处理）
type MQTTConsumer struct {
	config     *config.Config
	mqtt       Subscriber
	store      ReadingStore
	cache      ReadingCache
	alertStore AlertStore
	publisher  EventPublisher
	logger     *zap.Logger
}

// NewMQTTConsumer 创建MQTT消费者
func NewMQTTConsumer(
	cfg *config.Config,
	mqttClient Subscriber,
	store ReadingStore,
	cache ReadingCache,
	alertStore AlertStore,
	publisher EventPublisher,
	logger *zap.Logger,
) *MQTTConsumer {
	return &MQTTConsumer{
		config:     cfg,
		mqtt:       mqttClient,
		store:      store,
		cache:      cache,
		alertStore: alertStore,
		publisher:  publisher,
		logger:     logger,
	}
}

// Start 启动消费者，阻塞直到 ctx 取消
func (c *MQTTConsumer) Start(ctx context.Context) error {
	topic := c.config.MQTT.Topic
	if topic == "" {
		return fmt.Errorf("reading MQTT topic not configured")
	}

	if err := c.mqtt.Subscribe(topic, c.config.MQTT.QoS, c.HandleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to reading topic: %w", err)
	}

	if alertTopic := c.config.MQTT.AlertTopic; alertTopic != "" {
		if err := c.mqtt.Subscribe(alertTopic, c.config.MQTT.QoS, c.HandleAlertMessage); err != nil {
			return fmt.Errorf("failed to subscribe to alert topic: %w", err)
		}
	}

	c.logger.Info("MQTT consumer started",
		zap.String("topic", topic),
		zap.String("alert_topic", c.config.MQTT.AlertTopic),
		zap.String("stream", c.config.Monitor.Stream.ReadingStream),
	)

	<-ctx.Done()
	return nil
}

// Stop 停止消费者
func (c *MQTTConsumer) Stop(ctx context.Context) error {
	var topics []string
	if c.config.MQTT.Topic != "" {
		topics = append(topics, c.config.MQTT.Topic)
	}
	if c.config.MQTT.AlertTopic != "" {
		topics = append(topics, c.config.MQTT.AlertTopic)
	}
	if len(topics) > 0 {
		if err := c.mqtt.Unsubscribe(topics...); err != nil {
			c.logger.Error("Failed to unsubscribe", zap.Error(err))
		}
	}

	c.logger.Info("MQTT consumer stopped")
	return nil
}

// HandleMessage 处理单条MQTT消息
func (c *MQTTConsumer) HandleMessage(topic string, payload []byte) error {
	c.logger.Debug("Received MQTT message",
		zap.String("topic", topic),
		zap.Int("payload_size", len(payload)),
	)

	// 1. 解析读数载荷
	var reading models.Reading
	if err := json.Unmarshal(payload, &reading); err != nil {
		c.logger.Error("Failed to unmarshal reading message",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	if reading.UserID == "" {
		c.logger.Warn("Reading message without user_id, dropped",
			zap.String("topic", topic),
		)
		return fmt.Errorf("reading message missing user_id")
	}

	// 2. 补齐服务端字段
	if reading.ID == "" {
		reading.ID = uuid.New().String()
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now().UTC()
	}
	reading.CreatedAt = time.Now().UTC()

	return c.processReading(&reading)
}

// HandleAlertMessage 处理设备侧报警消息
func (c *MQTTConsumer) HandleAlertMessage(topic string, payload []byte) error {
	c.logger.Debug("Received MQTT alert message",
		zap.String("topic", topic),
		zap.Int("payload_size", len(payload)),
	)

	// 1. 解析报警载荷
	var alert models.Alert
	if err := json.Unmarshal(payload, &alert); err != nil {
		c.logger.Error("Failed to unmarshal alert message",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return fmt.Errorf("failed to unmarshal alert message: %w", err)
	}

	if alert.UserID == "" {
		c.logger.Warn("Alert message without user_id, dropped",
			zap.String("topic", topic),
		)
		return fmt.Errorf("alert message missing user_id")
	}

	// 2. 补齐服务端字段
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}

	return c.processAlert(&alert)
}

// processAlert 持久化并发布单条报警
func (c *MQTTConsumer) processAlert(alert *models.Alert) error {
	ctx := context.Background()

	// 1. 写入数据库
	if err := c.alertStore.Create(ctx, alert); err != nil {
		return fmt.Errorf("failed to persist alert: %w", err)
	}

	// 2. 发布报警插入事件
	streamID, err := c.publisher.PublishAlert(ctx, alert)
	if err != nil {
		return fmt.Errorf("failed to publish alert event: %w", err)
	}

	c.logger.Info("Published alert to Redis Streams",
		zap.String("user_id", alert.UserID),
		zap.String("alert_id", alert.ID),
		zap.String("alert_type", alert.AlertType),
		zap.String("stream_id", streamID),
	)

	return nil
}

// processReading 持久化、缓存并发布单条读数
func (c *MQTTConsumer) processReading(reading *models.Reading) error {
	ctx := context.Background()

	// 1. 写入数据库
	if err := c.store.Append(ctx, reading); err != nil {
		return fmt.Errorf("failed to persist reading: %w", err)
	}

	// 2. 更新 Redis 滚动窗口和快照（失败记录，不中断流程）
	if err := c.cache.PushReading(ctx, reading); err != nil {
		c.logger.Error("Failed to cache reading",
			zap.String("user_id", reading.UserID),
			zap.Error(err),
		)
	}

	// 3. 发布读数插入事件
	streamID, err := c.publisher.PublishReading(ctx, reading)
	if err != nil {
		return fmt.Errorf("failed to publish reading event: %w", err)
	}

	c.logger.Debug("Published reading to Redis Streams",
		zap.String("user_id", reading.UserID),
		zap.String("reading_id", reading.ID),
		zap.String("stream_id", streamID),
	)

	return nil
}
