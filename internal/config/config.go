package config

import (
	"os"
	"strconv"
	"time"
)

type CropTaskServiceConfig struct {
	Port          string
	PostgresCfg   PostgresConfig
	RedisCfg      RedisConfig
	RabbitMQCfg   RabbitMQConfig
	MinioCfg      MinioConfig
	SchedulerCfg  SchedulerConfig
	AutomationCfg AutomationConfig
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	Username string
	Password string
	Host     string
	Port     string
}

type MinioConfig struct {
	MinioURL       string
	MinioAccessKey string
	MinioSecretKey string
	MinioLocation  string
	MinioSecure    string
}

// SchedulerConfig carries the background cadences: the task tick, the weather
// alert sweep, and the inventory sweep.
type SchedulerConfig struct {
	TaskTickInterval       time.Duration
	WeatherAlertInterval   time.Duration
	InventoryAlertInterval time.Duration
	PoolWorkers            int
}

// AutomationConfig carries the scheduling policy knobs.
type AutomationConfig struct {
	CatalogPath string
	// Minimum automated-task priority that auto-spawns a farm task on ready.
	AutoSpawnMinPriority string
}

func New() *CropTaskServiceConfig {
	return &CropTaskServiceConfig{
		Port: getEnvOrDefault("PORT", "8086"),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "croptask"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       0,
		},
		RabbitMQCfg: RabbitMQConfig{
			Username: getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "admin"),
			Host:     getEnvOrDefault("RABBITMQ_HOST", "localhost"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
		},
		MinioCfg: MinioConfig{
			MinioURL:       getEnvOrDefault("MINIO_ENDPOINT", "http://localhost:9407"),
			MinioAccessKey: getEnvOrDefault("MINIO_ACCESS_KEY", "minio"),
			MinioSecretKey: getEnvOrDefault("MINIO_SECRET_KEY", "minio123"),
			MinioLocation:  getEnvOrDefault("MINIO_LOCATION", "us-east-1"),
			MinioSecure:    getEnvOrDefault("MINIO_SECURE", "false"),
		},
		SchedulerCfg: SchedulerConfig{
			TaskTickInterval:       getEnvDuration("TASK_TICK_INTERVAL", time.Hour),
			WeatherAlertInterval:   getEnvDuration("WEATHER_ALERT_INTERVAL", 6*time.Hour),
			InventoryAlertInterval: getEnvDuration("INVENTORY_ALERT_INTERVAL", 24*time.Hour),
			PoolWorkers:            getEnvInt("WORKER_POOL_SIZE", 4),
		},
		AutomationCfg: AutomationConfig{
			CatalogPath:          getEnvOrDefault("CATALOG_PATH", "seed/rice_catalog.yaml"),
			AutoSpawnMinPriority: getEnvOrDefault("TASK_AUTOGEN_MIN_PRIORITY", "high"),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
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
