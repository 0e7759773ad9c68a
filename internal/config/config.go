package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8090"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DataDir string // root directory for the embedded database
	DBPath  string // SQLite file, defaults to <DataDir>/speedial.db

	SyncConfigFile string // path to the GitHub sync config (.json/.yaml/.yml); empty = sync disabled
	AutoSync       bool   // true => schedule the daily midnight sync when configured

	ThumbTimeout time.Duration // timeout for remote thumbnail fetches
	ThumbMaxSize int64         // max thumbnail payload in bytes (0 = no limit)

	// Redis (optional thumbnail cache; empty Addr disables it)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDialTimeout    time.Duration // ex: 5s
	RedisReadTimeout    time.Duration // ex: 3s
	RedisWriteTimeout   time.Duration // ex: 3s
	RedisPoolSize       int           // connection pool size
	RedisConnectTimeout time.Duration // total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // initial wait between retries, grows exponentially
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisWarnThreshold  int           // warn after this many attempts
	ThumbCacheTTL       time.Duration // TTL for cached thumbnail payloads
}

func Load() *Config {
	dataDir := getenv("SPEEDIAL_DATA_DIR", "./data")

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SPEEDIAL_LISTEN_PORT", ":8090"),
		ShutdownTimeout: mustDuration("SPEEDIAL_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("SPEEDIAL_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SPEEDIAL_PRETTY_LOG", true),

		// Storage
		DataDir: dataDir,
		DBPath:  getenv("SPEEDIAL_DB_PATH", filepath.Join(dataDir, "speedial.db")),

		// Remote sync
		SyncConfigFile: getenv("SPEEDIAL_SYNC_CONFIG_FILE", ""),
		AutoSync:       mustBool("SPEEDIAL_AUTO_SYNC", true),

		// Thumbnails
		ThumbTimeout: mustDuration("SPEEDIAL_THUMB_TIMEOUT", 10*time.Second),
		ThumbMaxSize: int64(getenvInt("SPEEDIAL_THUMB_MAX_SIZE", 2<<20)),

		// Redis settings (optional)
		RedisAddr:           getenv("SPEEDIAL_REDIS_ADDR", ""),
		RedisUser:           getenv("SPEEDIAL_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("SPEEDIAL_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("SPEEDIAL_REDIS_DB", 0),
		RedisDialTimeout:    mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisReadTimeout:    mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWriteTimeout:   mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),
		ThumbCacheTTL:       mustDuration("SPEEDIAL_THUMB_CACHE_TTL", 24*time.Hour),
	}

	return cfg
}

// ThumbCacheEnabled reports whether a Redis address was configured.
func (c *Config) ThumbCacheEnabled() bool {
	return c.RedisAddr != ""
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
