package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vitalwatch/internal/config"
	"vitalwatch/internal/models"
)

func setupTestCache(t *testing.T) (*miniredis.Miniredis, *Manager) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cfg := &config.Config{}
	cfg.Monitor.Cache.ReadingKeyPrefix = "vitalwatch:user:"
	cfg.Monitor.Cache.ReadingSuffix = ":readings"
	cfg.Monitor.Cache.SnapshotSuffix = ":snapshot"
	cfg.Monitor.Cache.SnapshotTTL = 30
	cfg.Monitor.Cache.ReadingWindowSize = 50

	return mr, NewManager(cfg, redisClient, zap.NewNop())
}

func testReading(userID string, hr int) *models.Reading {
	return &models.Reading{
		ID:          fmt.Sprintf("r-%d", hr),
		UserID:      userID,
		HeartRate:   hr,
		SpO2:        98,
		Temperature: 36.6,
		StressLevel: 30,
		Timestamp:   time.Now(),
	}
}

func TestPushAndGetRecentReadings(t *testing.T) {
	_, m := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, m.PushReading(ctx, testReading("u1", 70)))
	require.NoError(t, m.PushReading(ctx, testReading("u1", 75)))

	readings, err := m.GetRecentReadings(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, 75, readings[0].HeartRate) // 最新在前
	assert.Equal(t, 70, readings[1].HeartRate)
}

// 窗口截断到配置的大小，最旧的先被淘汰
func TestPushReading_WindowTrim(t *testing.T) {
	_, m := setupTestCache(t)
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		require.NoError(t, m.PushReading(ctx, testReading("u1", 60+i)))
	}

	readings, err := m.GetRecentReadings(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, readings, 50)
	assert.Equal(t, 119, readings[0].HeartRate)
	assert.Equal(t, 70, readings[len(readings)-1].HeartRate)
}

func TestGetSnapshot(t *testing.T) {
	_, m := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, m.PushReading(ctx, testReading("u1", 88)))

	snap, err := m.GetSnapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 88, snap.HeartRate)
}

func TestGetSnapshot_Miss(t *testing.T) {
	_, m := setupTestCache(t)

	_, err := m.GetSnapshot(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestSnapshot_TTLExpiry(t *testing.T) {
	mr, m := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, m.PushReading(ctx, testReading("u1", 70)))
	mr.FastForward(31 * time.Second)

	_, err := m.GetSnapshot(ctx, "u1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestClear(t *testing.T) {
	_, m := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, m.PushReading(ctx, testReading("u1", 70)))
	require.NoError(t, m.Clear(ctx, "u1"))

	readings, err := m.GetRecentReadings(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, readings)
}
