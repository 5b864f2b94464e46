package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// RedisConfig Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig MQTT broker settings
type MQTTConfig struct {
	Enabled  bool
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

// Config console configuration
type Config struct {
	API struct {
		// BaseURL is the backend root, e.g. http://localhost:8080
		BaseURL string
		Timeout time.Duration
	}

	Countdown struct {
		TickInterval    time.Duration
		NotificationTTL time.Duration
	}

	Session struct {
		// Store "memory" or "redis"
		Store string
		Key   string
		TTL   time.Duration
	}

	Redis RedisConfig

	Notify struct {
		StreamEnabled bool
		Stream        string
		MQTT          MQTTConfig
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first; variables already set take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.API.BaseURL = getEnv("WAITLIST_API_URL", "http://localhost:8080")
	cfg.API.Timeout = time.Duration(getEnvInt("WAITLIST_API_TIMEOUT", 15)) * time.Second

	cfg.Countdown.TickInterval = time.Duration(getEnvInt("WAITLIST_TICK_INTERVAL_MS", 1000)) * time.Millisecond
	cfg.Countdown.NotificationTTL = time.Duration(getEnvInt("WAITLIST_NOTIFICATION_TTL_MS", 3000)) * time.Millisecond

	cfg.Session.Store = getEnv("SESSION_STORE", "memory")
	cfg.Session.Key = getEnv("SESSION_KEY", "default")
	cfg.Session.TTL = time.Duration(getEnvInt("SESSION_TTL_HOURS", 12)) * time.Hour

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.Notify.StreamEnabled = getEnv("NOTIFY_STREAM_ENABLED", "false") == "true"
	cfg.Notify.Stream = getEnv("NOTIFY_STREAM", "waitlist:cure-notifications")

	// MQTT publishing is off unless a broker is explicitly enabled
	cfg.Notify.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.Notify.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.Notify.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "wellbeing-waitlist")
	cfg.Notify.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.Notify.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.Notify.MQTT.Topic = getEnv("MQTT_TOPIC", "waitlist/cured")
	cfg.Notify.MQTT.QoS = byte(getEnvInt("MQTT_QOS", 1))

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "console")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || v < 0 {
		return defaultValue
	}
	return v
}
