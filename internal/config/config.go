package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig MQTT配置
type MQTTConfig struct {
	Broker     string
	ClientID   string
	Username   string
	Password   string
	Topic      string // 传感器读数主题
	AlertTopic string // 设备侧报警主题
	QoS        byte
}

// Config 监测服务配置
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	MQTT     MQTTConfig

	HTTP struct {
		Addr string
	}

	Monitor struct {
		// Redis 缓存键配置
		Cache struct {
			ReadingKeyPrefix  string // 读数窗口缓存键前缀，如 "vitalwatch:user:"
			ReadingSuffix     string // 读数窗口缓存键后缀，如 ":readings"
			SnapshotSuffix    string // 最新快照缓存键后缀，如 ":snapshot"
			SnapshotTTL       int    // 快照 TTL（秒）
			ReadingWindowSize int    // 滚动窗口大小（最近N条）
		}

		// 事件流配置
		Stream struct {
			ReadingStream string // 读数插入事件流
			AlertStream   string // 报警插入事件流
		}

		ReadingCadence int // 读数生成周期（秒），参考值2秒

		// 异常通知 Webhook（为空则禁用）
		WebhookURL string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置（环境变量，带默认值）
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "vitalwatch")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "vitalwatch")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "vitalwatch/readings")
	cfg.MQTT.AlertTopic = getEnv("MQTT_ALERT_TOPIC", "vitalwatch/alerts")
	cfg.MQTT.QoS = 1

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Monitor.Cache.ReadingKeyPrefix = getEnv("CACHE_READING_PREFIX", "vitalwatch:user:")
	cfg.Monitor.Cache.ReadingSuffix = ":readings"
	cfg.Monitor.Cache.SnapshotSuffix = ":snapshot"
	cfg.Monitor.Cache.SnapshotTTL = getEnvInt("CACHE_SNAPSHOT_TTL", 30)
	cfg.Monitor.Cache.ReadingWindowSize = getEnvInt("CACHE_READING_WINDOW", 50)

	cfg.Monitor.Stream.ReadingStream = getEnv("STREAM_READINGS", "vitalwatch:stream:readings")
	cfg.Monitor.Stream.AlertStream = getEnv("STREAM_ALERTS", "vitalwatch:stream:alerts")

	cfg.Monitor.ReadingCadence = getEnvInt("READING_CADENCE", 2)
	cfg.Monitor.WebhookURL = getEnv("ANOMALY_WEBHOOK_URL", "")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
