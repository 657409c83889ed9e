package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション設定を表す
type Config struct {
	Env       string
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Lock      LockConfig
	Broadcast BroadcastConfig
	Kafka     KafkaConfig
	Cache     CacheConfig
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig はデータベース設定
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

// RedisConfig はRedis設定
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// LockConfig は分散ロックのポリシー設定
// TTLはクリティカルセクション（在庫確認〜減算）の最悪所要時間より
// 十分大きく設定すること
type LockConfig struct {
	TTL           time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// BroadcastConfig は在庫配信ワーカーの設定
type BroadcastConfig struct {
	QueueSize   int
	PushTimeout time.Duration
}

// KafkaConfig はKafkaイベント発行の設定
// Brokersが空の場合はイベント発行を行わない
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// CacheConfig は空室数キャッシュの設定
type CacheConfig struct {
	AvailabilityTTL time.Duration
}

// Load は環境変数から設定を読み込む
func Load() *Config {
	return &Config{
		Env: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "channel_manager"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Lock: LockConfig{
			TTL:           getDurationEnv("LOCK_TTL", 30*time.Second),
			RetryAttempts: getIntEnv("LOCK_RETRY_ATTEMPTS", 3),
			RetryDelay:    getDurationEnv("LOCK_RETRY_DELAY", 100*time.Millisecond),
		},
		Broadcast: BroadcastConfig{
			QueueSize:   getIntEnv("BROADCAST_QUEUE_SIZE", 256),
			PushTimeout: getDurationEnv("BROADCAST_PUSH_TIMEOUT", 10*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: getSliceEnv("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_BOOKING_TOPIC", "booking-events"),
		},
		Cache: CacheConfig{
			AvailabilityTTL: getDurationEnv("AVAILABILITY_CACHE_TTL", 5*time.Minute),
		},
	}
}

// DSN はPostgreSQL接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr はRedis接続アドレスを返す
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// Enabled はKafkaイベント発行が有効かを返す
func (c *KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
