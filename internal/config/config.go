package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "SPEAKSFER_CONFIG"
	databaseDriverEnv = "DATABASE_DRIVER"
	databaseDSNEnv    = "DATABASE_DSN"
	logLevelEnv       = "LOG_LEVEL"
	natsURLEnv        = "NATS_URL"
	natsPrefixEnv     = "NATS_SUBJECT_PREFIX"
	maxRetriesEnv     = "ENGAGEMENT_MAX_RETRIES"
	adminUsersEnv     = "ADMIN_USERNAMES"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	NATS       NATSConfig       `yaml:"nats"`
	Engagement EngagementConfig `yaml:"engagement"`
	Pagination PaginationConfig `yaml:"pagination"`
	Admin      AdminConfig      `yaml:"admin"`
}

// ServerConfig holds the API and diagnostics listen addresses.
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	DiagAddr string `yaml:"diagAddr"`
}

// DatabaseConfig selects the SQL driver ("sqlite" or "postgres") and DSN.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// NATSConfig enables engagement event publishing when URL is set.
type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subjectPrefix"`
}

// EngagementConfig bounds optimistic update retries.
type EngagementConfig struct {
	MaxRetries int `yaml:"maxRetries"`
}

type PaginationConfig struct {
	DefaultLimit uint64 `yaml:"defaultLimit"`
	MaxLimit     uint64 `yaml:"maxLimit"`
}

// AdminConfig lists the usernames allowed through the admin routes.
type AdminConfig struct {
	Usernames []string `yaml:"usernames"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := Default()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if fileCfg, err := Parse(raw); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

// Parse decodes a YAML document without applying defaults.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(natsURLEnv); v != "" {
		c.NATS.URL = v
	}
	if v := os.Getenv(natsPrefixEnv); v != "" {
		c.NATS.SubjectPrefix = v
	}
	if v := os.Getenv(maxRetriesEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Engagement.MaxRetries = n
		}
	}
	if v := os.Getenv(adminUsersEnv); v != "" {
		c.Admin.Usernames = splitList(v)
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	return out
}

func mergeConfig(base, override Config) Config {
	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.DiagAddr != "" {
		base.Server.DiagAddr = override.Server.DiagAddr
	}

	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.NATS.URL != "" {
		base.NATS.URL = override.NATS.URL
	}
	if override.NATS.SubjectPrefix != "" {
		base.NATS.SubjectPrefix = override.NATS.SubjectPrefix
	}

	if override.Engagement.MaxRetries > 0 {
		base.Engagement.MaxRetries = override.Engagement.MaxRetries
	}

	if override.Pagination.DefaultLimit > 0 {
		base.Pagination.DefaultLimit = override.Pagination.DefaultLimit
	}
	if override.Pagination.MaxLimit > 0 {
		base.Pagination.MaxLimit = override.Pagination.MaxLimit
	}

	if len(override.Admin.Usernames) > 0 {
		base.Admin.Usernames = override.Admin.Usernames
	}

	return base
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server:     ServerConfig{Addr: ":3333", DiagAddr: ":9999"},
		Database:   DatabaseConfig{Driver: "sqlite", DSN: "speaksfer.db"},
		Logging:    LoggingConfig{Level: "info"},
		NATS:       NATSConfig{URL: "", SubjectPrefix: "speaksfer"},
		Engagement: EngagementConfig{MaxRetries: 5},
		Pagination: PaginationConfig{DefaultLimit: 20, MaxLimit: 100},
	}
}
