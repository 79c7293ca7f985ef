package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port    string `yaml:"port"`
		SiteURL string `yaml:"site_url"`
	} `yaml:"server"`
	Backend struct {
		URL        string `yaml:"url"`
		PublicKey  string `yaml:"public_key"`
		ServiceKey string `yaml:"service_key"`
		Timeout    string `yaml:"timeout"`
	} `yaml:"backend"`
	Auth struct {
		// Tokens maps static bearer tokens to user ids for local development.
		Tokens map[string]string `yaml:"tokens"`
	} `yaml:"auth"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Cache struct {
		TTL string `yaml:"ttl"`
	} `yaml:"cache"`
	Drafts struct {
		TTL string `yaml:"ttl"`
	} `yaml:"drafts"`
}

// Load reads YAML config from path and applies environment overrides.
// A missing file yields an environment-only config.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Postgres.URL, "DATABASE_URL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if db, err := strconv.Atoi(raw); err == nil {
			cfg.Redis.DB = db
		}
	}
	setString(&cfg.Backend.URL, "BACKEND_URL")
	setString(&cfg.Backend.PublicKey, "BACKEND_PUBLIC_KEY")
	setString(&cfg.Backend.ServiceKey, "BACKEND_SERVICE_KEY")
	setString(&cfg.Server.SiteURL, "PUBLIC_SITE_URL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
