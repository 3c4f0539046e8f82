package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables that override file settings. Secrets such as the
// Redis password or a MongoDB URI with credentials belong here rather than
// in the config file.
const (
	EnvCacheBackend  = "TANGLESTAT_CACHE_BACKEND"
	EnvCacheTTL      = "TANGLESTAT_CACHE_TTL"
	EnvCacheDir      = "TANGLESTAT_CACHE_DIR"
	EnvRedisAddr     = "TANGLESTAT_REDIS_ADDR"
	EnvRedisPassword = "TANGLESTAT_REDIS_PASSWORD"
	EnvRedisDB       = "TANGLESTAT_REDIS_DB"
	EnvMongoURI      = "TANGLESTAT_MONGO_URI"
	EnvServerAddr    = "TANGLESTAT_SERVER_ADDR"
)

// LoadDotenv loads variables from the given .env files (default ".env")
// into the process environment without overriding variables already set.
// Missing files are ignored.
func LoadDotenv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// applyEnv copies set, non-empty TANGLESTAT_* variables into cfg.
func applyEnv(cfg *Config) error {
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}
	str(EnvCacheBackend, &cfg.Cache.Backend)
	str(EnvCacheDir, &cfg.Cache.Dir)
	str(EnvRedisAddr, &cfg.Cache.Redis.Addr)
	str(EnvRedisPassword, &cfg.Cache.Redis.Password)
	str(EnvMongoURI, &cfg.Cache.Mongo.URI)
	str(EnvServerAddr, &cfg.Server.Addr)

	if v := strings.TrimSpace(os.Getenv(EnvCacheTTL)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCacheTTL, err)
		}
		cfg.Cache.TTL = d
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisDB)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRedisDB, err)
		}
		cfg.Cache.Redis.DB = n
	}
	return nil
}
