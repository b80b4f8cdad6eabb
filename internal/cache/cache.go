package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"vitalwatch/internal/config"
	"vitalwatch/internal/models"
)

// ErrCacheMiss 表示缓存不存在
var ErrCacheMiss = errors.New("cache miss")

// Manager Redis 缓存管理器
// 维护每个用户的滚动读数窗口（最近N条）和最新快照
type Manager struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewManager 创建缓存管理器
func NewManager(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) *Manager {
	return &Manager{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

// readingsKey 滚动窗口缓存键
func (m *Manager) readingsKey(userID string) string {
	return fmt.Sprintf("%s%s%s",
		m.config.Monitor.Cache.ReadingKeyPrefix,
		userID,
		m.config.Monitor.Cache.ReadingSuffix,
	)
}

// snapshotKey 最新快照缓存键
func (m *Manager) snapshotKey(userID string) string {
	return fmt.Sprintf("%s%s%s",
		m.config.Monitor.Cache.ReadingKeyPrefix,
		userID,
		m.config.Monitor.Cache.SnapshotSuffix,
	)
}

// PushReading 写入一条新读数：插入窗口头部并截断，同时刷新快照
func (m *Manager) PushReading(ctx context.Context, reading *models.Reading) error {
	jsonData, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}

	key := m.readingsKey(reading.UserID)
	if err := m.redisClient.LPush(ctx, key, jsonData).Err(); err != nil {
		return fmt.Errorf("failed to push reading: %w", err)
	}

	window := int64(m.config.Monitor.Cache.ReadingWindowSize)
	if err := m.redisClient.LTrim(ctx, key, 0, window-1).Err(); err != nil {
		return fmt.Errorf("failed to trim reading window: %w", err)
	}

	ttl := time.Duration(m.config.Monitor.Cache.SnapshotTTL) * time.Second
	if err := m.redisClient.Set(ctx, m.snapshotKey(reading.UserID), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set snapshot: %w", err)
	}

	return nil
}

// GetRecentReadings 读取滚动窗口内的读数（最新在前）
func (m *Manager) GetRecentReadings(ctx context.Context, userID string) ([]models.Reading, error) {
	window := int64(m.config.Monitor.Cache.ReadingWindowSize)
	vals, err := m.redisClient.LRange(ctx, m.readingsKey(userID), 0, window-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read reading window: %w", err)
	}

	readings := make([]models.Reading, 0, len(vals))
	for _, val := range vals {
		var reading models.Reading
		if err := json.Unmarshal([]byte(val), &reading); err != nil {
			// 坏记录跳过，不让单条脏数据拖垮整个窗口
			m.logger.Warn("Skipping malformed cached reading",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		readings = append(readings, reading)
	}

	return readings, nil
}

// GetSnapshot 读取最新读数快照
func (m *Manager) GetSnapshot(ctx context.Context, userID string) (*models.Reading, error) {
	val, err := m.redisClient.Get(ctx, m.snapshotKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var reading models.Reading
	if err := json.Unmarshal([]byte(val), &reading); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &reading, nil
}

// Clear 清除某个用户的窗口和快照（会话结束时调用）
func (m *Manager) Clear(ctx context.Context, userID string) error {
	if err := m.redisClient.Del(ctx, m.readingsKey(userID), m.snapshotKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
