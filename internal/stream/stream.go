package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"vitalwatch/internal/config"
	"vitalwatch/internal/models"
)

// Publisher 把读数/报警插入事件发布到 Redis Streams
// 两条流相互独立，消费侧不能假设二者之间的先后顺序
type Publisher struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewPublisher 创建发布器
func NewPublisher(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) *Publisher {
	return &Publisher{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

// PublishReading 发布一条读数插入事件
func (p *Publisher) PublishReading(ctx context.Context, reading *models.Reading) (string, error) {
	return p.publishJSON(ctx, p.config.Monitor.Stream.ReadingStream, reading)
}

// PublishAlert 发布一条报警插入事件
func (p *Publisher) PublishAlert(ctx context.Context, alert *models.Alert) (string, error) {
	return p.publishJSON(ctx, p.config.Monitor.Stream.AlertStream, alert)
}

// publishJSON 序列化并 XADD 到指定流
func (p *Publisher) publishJSON(ctx context.Context, stream string, data interface{}) (string, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal stream payload: %w", err)
	}

	id, err := p.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data":      string(jsonBytes),
			"timestamp": time.Now().Unix(),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to xadd to %s: %w", stream, err)
	}

	return id, nil
}

// Handler 事件回调接口（至多一次投递，两个通道之间无顺序保证）
type Handler interface {
	OnReadingInserted(reading *models.Reading)
	OnAlertInserted(alert *models.Alert)
}

// Consumer 事件流消费者
// 读数流和报警流各由一个独立的读取循环消费；读取错误只记录并退避重试，
// 流中断表现为事件缺口，绝不导致监测会话崩溃
type Consumer struct {
	config      *config.Config
	redisClient *redis.Client
	handler     Handler
	logger      *zap.Logger
}

// NewConsumer 创建事件流消费者
func NewConsumer(cfg *config.Config, redisClient *redis.Client, handler Handler, logger *zap.Logger) *Consumer {
	return &Consumer{
		config:      cfg,
		redisClient: redisClient,
		handler:     handler,
		logger:      logger,
	}
}

// Start 启动两个消费循环，阻塞直到 ctx 取消
func (c *Consumer) Start(ctx context.Context) {
	readingDone := make(chan struct{})
	alertDone := make(chan struct{})

	go func() {
		defer close(readingDone)
		c.consumeLoop(ctx, c.config.Monitor.Stream.ReadingStream, c.dispatchReading)
	}()
	go func() {
		defer close(alertDone)
		c.consumeLoop(ctx, c.config.Monitor.Stream.AlertStream, c.dispatchAlert)
	}()

	<-readingDone
	<-alertDone
}

// consumeLoop 单条流的读取循环（从当前末尾开始，只消费新事件）
func (c *Consumer) consumeLoop(ctx context.Context, stream string, dispatch func([]byte)) {
	lastID := "$"

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Stream consumer stopped",
				zap.String("stream", stream),
			)
			return
		default:
		}

		streams, err := c.redisClient.XRead(ctx, &redis.XReadArgs{
			Streams: []string{stream, lastID},
			Count:   10,
			Block:   5 * time.Second,
		}).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("Failed to read stream, retrying",
				zap.String("stream", stream),
				zap.Error(err),
			)
			time.Sleep(time.Second)
			continue
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				lastID = msg.ID
				data, ok := msg.Values["data"].(string)
				if !ok {
					c.logger.Warn("Stream message without data field",
						zap.String("stream", stream),
						zap.String("id", msg.ID),
					)
					continue
				}
				dispatch([]byte(data))
			}
		}
	}
}

// dispatchReading 解码并投递读数事件
func (c *Consumer) dispatchReading(data []byte) {
	reading, err := DecodeReading(data)
	if err != nil {
		c.logger.Error("Failed to decode reading event", zap.Error(err))
		return
	}
	c.handler.OnReadingInserted(reading)
}

// dispatchAlert 解码并投递报警事件
func (c *Consumer) dispatchAlert(data []byte) {
	alert, err := DecodeAlert(data)
	if err != nil {
		c.logger.Error("Failed to decode alert event", zap.Error(err))
		return
	}
	c.handler.OnAlertInserted(alert)
}

// DecodeReading 解码读数事件载荷
func DecodeReading(data []byte) (*models.Reading, error) {
	var reading models.Reading
	if err := json.Unmarshal(data, &reading); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reading event: %w", err)
	}
	return &reading, nil
}

// DecodeAlert 解码报警事件载荷
func DecodeAlert(data []byte) (*models.Alert, error) {
	var alert models.Alert
	if err := json.Unmarshal(data, &alert); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alert event: %w", err)
	}
	return &alert, nil
}
