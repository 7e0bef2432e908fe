package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the insight engine.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Engine  EngineConfig  `yaml:"engine"`
	Storage StorageConfig `yaml:"storage"`
	Rules   RulesConfig   `yaml:"rules"`
}

// ServerConfig controls the HTTP listeners.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
	AllowedOrigins  []string      `yaml:"allowedOrigins"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// EngineConfig controls analysis caching and rebuild gating.
type EngineConfig struct {
	ResultTTL   time.Duration `yaml:"resultTTL"`
	MinInterval time.Duration `yaml:"minInterval"`
}

// StorageConfig selects and configures the key-value backend.
type StorageConfig struct {
	// Backend is one of memory, sqlite, valkey.
	Backend    string       `yaml:"backend"`
	SQLitePath string       `yaml:"sqlitePath"`
	Valkey     ValkeyConfig `yaml:"valkey"`
}

// ValkeyConfig holds connection parameters for a Valkey backend.
type ValkeyConfig struct {
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	MaxRetries   int           `yaml:"maxRetries"`
	TLS          bool          `yaml:"tls"`
}

// RulesConfig controls rule-pack loading for the plan builder.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("INSIGHT_ENGINE_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8085",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Engine: EngineConfig{
			ResultTTL:   24 * time.Hour,
			MinInterval: 24 * time.Hour,
		},
		Storage: StorageConfig{
			Backend:    "memory",
			SQLitePath: "data/insight-engine.db",
			Valkey: ValkeyConfig{
				DialTimeout:  2 * time.Second,
				ReadTimeout:  500 * time.Millisecond,
				WriteTimeout: 500 * time.Millisecond,
				MaxRetries:   2,
			},
		},
		Rules: RulesConfig{Path: ""},
	}
}

func validate(cfg *Config) error {
	switch cfg.Storage.Backend {
	case "memory", "sqlite", "valkey":
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Backend == "valkey" && cfg.Storage.Valkey.Addr == "" {
		return errors.New("storage.valkey.addr is required for the valkey backend")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INSIGHT_ENGINE_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("INSIGHT_ENGINE_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("INSIGHT_ENGINE_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("INSIGHT_ENGINE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("INSIGHT_ENGINE_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("INSIGHT_ENGINE_RESULT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Engine.ResultTTL = d
		}
	}
	if v := os.Getenv("INSIGHT_ENGINE_MIN_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Engine.MinInterval = d
		}
	}
	if v := os.Getenv("INSIGHT_ENGINE_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("INSIGHT_ENGINE_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("INSIGHT_ENGINE_VALKEY_ADDR"); v != "" {
		cfg.Storage.Valkey.Addr = v
	}
	if v := os.Getenv("INSIGHT_ENGINE_VALKEY_USERNAME"); v != "" {
		cfg.Storage.Valkey.Username = v
	}
	if v := os.Getenv("INSIGHT_ENGINE_VALKEY_PASSWORD"); v != "" {
		cfg.Storage.Valkey.Password = v
	}
	if v := os.Getenv("INSIGHT_ENGINE_VALKEY_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Valkey.DB = db
		}
	}
	if v := os.Getenv("INSIGHT_ENGINE_VALKEY_TLS"); strings.EqualFold(v, "true") || strings.EqualFold(v, "1") {
		cfg.Storage.Valkey.TLS = true
	}
	if v := os.Getenv("INSIGHT_ENGINE_RULES_PATH"); v != "" {
		cfg.Rules.Path = v
	}
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
