package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is read from the environment once at startup
type Config struct {
	Port      string
	StaticDir string

	MongoURI string
	MongoDB  string
	RedisURI string
	NATSURL  string // empty disables lifecycle events

	RoomTTL           time.Duration
	SweepInterval     time.Duration
	HeartbeatInterval time.Duration
	ResultTTL         time.Duration

	AdminUsername string
	AdminPassword string
	JWTSecret     string

	CORSAllowedOrigins string

	LogLevel  string
	LogFormat string
}

// Load reads every setting, falling back to local development defaults
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		StaticDir: os.Getenv("STATIC_DIR"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "buzzer"),
		RedisURI: getEnv("REDIS_URI", "localhost:6379"),
		NATSURL:  os.Getenv("NATS_URL"),

		RoomTTL:           getDuration("ROOM_TTL", 30*time.Minute),
		SweepInterval:     getDuration("SWEEP_INTERVAL", time.Minute),
		HeartbeatInterval: getDuration("HEARTBEAT_INTERVAL", 5*time.Second),
		ResultTTL:         getDuration("RESULT_TTL", 24*time.Hour),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
		JWTSecret:     getEnv("JWT_SECRET", "default-secret-change-me"),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// RedisAddr strips the redis:// scheme go-redis does not expect in Addr
func (c *Config) RedisAddr() string {
	return strings.TrimPrefix(c.RedisURI, "redis://")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getDuration accepts Go durations ("90s") or a bare number of seconds
func getDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}
