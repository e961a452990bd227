package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the process configuration. Values come from an optional YAML file
// with environment overrides on top; components receive the pieces they need
// through their constructors, never through package globals.
type Config struct {
	HTTP  HTTPConfig  `yaml:"http"`
	Redis RedisConfig `yaml:"redis"`
	Log   LogConfig   `yaml:"log"`
	Queue QueueConfig `yaml:"queue"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type QueueConfig struct {
	// ListenTimeout bounds each blocking wait on a result stream.
	ListenTimeout time.Duration `yaml:"listen_timeout"`
	// ResultTTL is how long a completed stream stays readable.
	ResultTTL time.Duration `yaml:"result_ttl"`
}

// Default returns the configuration used when no file or overrides apply.
func Default() Config {
	return Config{
		HTTP:  HTTPConfig{Addr: ":8080"},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Log:   LogConfig{Level: "info"},
		Queue: QueueConfig{
			ListenTimeout: 30 * time.Second,
			ResultTTL:     time.Hour,
		},
	}
}

// Load reads path (when non-empty) over the defaults and then applies
// environment overrides (CONVEYOR_HTTP_ADDR, CONVEYOR_REDIS_ADDR,
// CONVEYOR_REDIS_PASSWORD, CONVEYOR_LOG_LEVEL).
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if v := os.Getenv("CONVEYOR_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("CONVEYOR_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("CONVEYOR_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("CONVEYOR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	return cfg, nil
}

// LogLevel maps the configured level name to slog.
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
