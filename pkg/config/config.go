// Package config loads tanglestat settings from a TOML file.
//
// Every field has a usable default, so a missing file is not an error:
// [Load] returns [Default] when the path does not exist. Command-line flags
// override whatever the file says.
//
//	[cache]
//	backend = "redis"
//	ttl = "24h"
//
//	[cache.redis]
//	addr = "localhost:6379"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
)

// Cache backend names.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

var backends = []string{BackendFile, BackendMemory, BackendRedis, BackendMongo, BackendNone}

const appName = "tanglestat"

// Config is the root of the configuration file.
type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Report ReportConfig `toml:"report"`
}

// CacheConfig selects and configures the report cache.
type CacheConfig struct {
	Backend string        `toml:"backend"`
	TTL     time.Duration `toml:"ttl"`
	Dir     string        `toml:"dir"`

	// Namespace prefixes every key so deployments can share one backend.
	Namespace string       `toml:"namespace"`
	Memory    MemoryConfig `toml:"memory"`
	Redis     RedisConfig  `toml:"redis"`
	Mongo     MongoConfig  `toml:"mongo"`
}

// MemoryConfig sizes the in-process LRU cache.
type MemoryConfig struct {
	Size int `toml:"size"`
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig holds the MongoDB connection settings.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig configures `tanglestat serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`

	// CORSOrigins enables CORS for the listed origins ("*" for any).
	CORSOrigins []string `toml:"cors_origins"`

	// Metrics exposes Prometheus metrics at /metrics.
	Metrics bool `toml:"metrics"`
}

// ReportConfig controls report formatting.
type ReportConfig struct {
	// Precision is the number of decimals printed for averages.
	Precision int `toml:"precision"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     7 * 24 * time.Hour,
			Dir:     DefaultCacheDir(),
			Memory:  MemoryConfig{Size: 1024},
			Redis:   RedisConfig{Addr: "localhost:6379"},
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   appName,
				Collection: "reports",
			},
		},
		Server: ServerConfig{Addr: ":8080"},
		Report: ReportConfig{Precision: 6},
	}
}

// Load reads the file at path on top of [Default], then applies
// TANGLESTAT_* environment overrides. A missing file yields the defaults;
// an empty path means [DefaultPath].
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = Default()
	case err != nil:
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	default:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if !slices.Contains(backends, c.Cache.Backend) {
		return fmt.Errorf("cache.backend %q: must be one of %v", c.Cache.Backend, backends)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl %v: must not be negative", c.Cache.TTL)
	}
	switch c.Cache.Backend {
	case BackendFile:
		if c.Cache.Dir == "" {
			return errors.New("cache.dir: required for the file backend")
		}
	case BackendMemory:
		if c.Cache.Memory.Size <= 0 {
			return fmt.Errorf("cache.memory.size %d: must be positive", c.Cache.Memory.Size)
		}
	case BackendRedis:
		if c.Cache.Redis.Addr == "" {
			return errors.New("cache.redis.addr: required for the redis backend")
		}
	case BackendMongo:
		if c.Cache.Mongo.URI == "" || c.Cache.Mongo.Database == "" || c.Cache.Mongo.Collection == "" {
			return errors.New("cache.mongo: uri, database and collection are required for the mongo backend")
		}
	}
	if c.Report.Precision < 0 || c.Report.Precision > 17 {
		return fmt.Errorf("report.precision %d: must be between 0 and 17", c.Report.Precision)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr: must not be empty")
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/tanglestat/config.toml, falling back
// to the OS user config directory.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", appName+".toml")
	}
	return filepath.Join(dir, appName, "config.toml")
}

// DefaultCacheDir returns the directory used by the file cache.
func DefaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(dir, appName)
}
