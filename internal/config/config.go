package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config urap-polar (CLI + report server) configuration
type Config struct {
	API  APIConfig
	HTTP struct {
		Addr string
	}
	Cache struct {
		Enabled bool
		TTL     time.Duration
		Redis   RedisConfig
	}
	Log struct {
		Level  string
		Format string
	}
}

// APIConfig mobile app API endpoint settings
type APIConfig struct {
	BaseURL     string
	ListTimeout time.Duration // GET /recordings
	GetTimeout  time.Duration // GET /recordings/{id}, full sessions can be large
	RetryCount  int
}

// RedisConfig Redis connection for the recording cache
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoadFromEnv overrides fields from <prefix>_ADDR, <prefix>_PASSWORD, <prefix>_DB.
func (c *RedisConfig) LoadFromEnv(prefix string) {
	if addr := os.Getenv(prefix + "_ADDR"); addr != "" {
		c.Addr = addr
	}
	if password := os.Getenv(prefix + "_PASSWORD"); password != "" {
		c.Password = password
	}
	if db := os.Getenv(prefix + "_DB"); db != "" {
		c.DB = parseInt(db, c.DB)
	}
}

// LoadDotenv loads KEY=VALUE pairs from the given files (default ".env") into
// the process environment. Variables already set are left alone, and a
// missing file is not an error.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

func Load() *Config {
	cfg := &Config{}

	cfg.API.BaseURL = strings.TrimRight(getEnv("URAP_BASE_URL", "http://localhost:8080"), "/")
	cfg.API.ListTimeout = parseDuration(getEnv("URAP_LIST_TIMEOUT", "10s"), 10*time.Second)
	cfg.API.GetTimeout = parseDuration(getEnv("URAP_GET_TIMEOUT", "30s"), 30*time.Second)
	cfg.API.RetryCount = parseInt(getEnv("URAP_RETRY_COUNT", "0"), 0)

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8090")

	// Cache is off by default: the CLI is usually run without a Redis next to it.
	cfg.Cache.Enabled = getEnv("CACHE_ENABLED", "false") == "true"
	cfg.Cache.TTL = parseDuration(getEnv("CACHE_TTL", "10m"), 10*time.Minute)
	cfg.Cache.Redis.Addr = "localhost:6379"
	cfg.Cache.Redis.LoadFromEnv("REDIS")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "console")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		// bare numbers are seconds
		if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
		return def
	}
	return d
}
