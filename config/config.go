package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Backends BackendsConfig `yaml:"backends"`
	Gate     GateConfig     `yaml:"gate"`
}

type DatabaseConfig struct {
	// Enabled переключает локальный стор с in-memory на postgres.
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type AuthConfig struct {
	Secret           string `yaml:"secret"`
	Issuer           string `yaml:"issuer"`
	TokenTTLSeconds  int    `yaml:"token_ttl_seconds"`
	LoginRatePerMin  int    `yaml:"login_rate_per_minute"`
}

type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
}

type BackendsConfig struct {
	// Порядок fallback фиксирован: ground, air, sea. Бэкенд без base_url
	// в цепочку не попадает.
	Ground BackendConfig `yaml:"ground"`
	Air    BackendConfig `yaml:"air"`
	Sea    BackendConfig `yaml:"sea"`

	CallTimeoutSeconds int `yaml:"call_timeout_seconds"`
}

type GateConfig struct {
	HTTPAddr string `yaml:"http_addr"`

	ResolveCacheTTLSeconds int `yaml:"resolve_cache_ttl_seconds"`

	// SeedDemoData загружает демо-пользователей и демо-записи на старте.
	SeedDemoData bool `yaml:"seed_demo_data"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}
