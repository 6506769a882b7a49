// Package config loads server settings from the environment and an optional .env file.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/blogem/toolshelf/models"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Config holds all server settings
type Config struct {
	Env            string
	Port           string
	AdminSecret    string
	AllowedOrigins []string
	IPAllowList    []string
	CatalogPath    string
	AuditDBPath    string
	TrustProxy     bool
	ReadLimit      int
	ReadWindow     time.Duration
	WriteLimit     int
	WriteWindow    time.Duration
	MaxBodyBytes   int64
	SessionTTL     time.Duration
	LogLevel       slog.Level
}

// Load reads .env (when present) and then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the process environment only
func FromEnv() *Config {
	return &Config{
		Env:            strings.ToLower(getEnv("APP_ENV", EnvDevelopment)),
		Port:           getEnv("PORT", "8080"),
		AdminSecret:    os.Getenv("ADMIN_SECRET"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", nil),
		IPAllowList:    getEnvList("ADMIN_IP_ALLOWLIST", nil),
		CatalogPath:    os.Getenv("CATALOG_PATH"),
		AuditDBPath:    os.Getenv("AUDIT_DB_PATH"),
		TrustProxy:     getEnvBool("TRUST_PROXY", false),
		ReadLimit:      getEnvInt("READ_RATE_LIMIT", 30),
		ReadWindow:     getEnvDuration("READ_RATE_WINDOW", time.Minute),
		WriteLimit:     getEnvInt("WRITE_RATE_LIMIT", 5),
		WriteWindow:    getEnvDuration("WRITE_RATE_WINDOW", time.Minute),
		MaxBodyBytes:   int64(getEnvInt("MAX_BODY_BYTES", 10<<20)),
		SessionTTL:     getEnvDuration("SESSION_TTL", models.SessionLifetime),
		LogLevel:       getEnvLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// IsDevelopment reports whether internal error detail may be shown to clients
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// Validate returns a ConfigurationError for settings the process cannot run
// with. A missing secret is only fatal in production; elsewhere mutations
// are refused at request time.
func (c *Config) Validate() error {
	if c.AdminSecret == "" && c.IsProduction() {
		return &models.ConfigurationError{Setting: "ADMIN_SECRET", Message: "must be set in production"}
	}
	if c.ReadLimit <= 0 || c.WriteLimit <= 0 {
		return &models.ConfigurationError{Setting: "RATE_LIMIT", Message: "limits must be positive"}
	}
	if c.ReadWindow <= 0 || c.WriteWindow <= 0 {
		return &models.ConfigurationError{Setting: "RATE_WINDOW", Message: "windows must be positive"}
	}
	for _, entry := range c.IPAllowList {
		if strings.Count(entry, "*") > 1 {
			return &models.ConfigurationError{Setting: "ADMIN_IP_ALLOWLIST", Message: "entries may contain at most one '*': " + entry}
		}
	}
	return nil
}

// CatalogCandidates returns the catalog locations to try, override first
func (c *Config) CatalogCandidates(defaults []string) []string {
	if c.CatalogPath == "" {
		return defaults
	}
	out := []string{c.CatalogPath}
	for _, p := range defaults {
		if p != c.CatalogPath {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		slog.Warn("ignoring invalid integer setting", "key", key)
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("ignoring invalid duration setting", "key", key)
	}
	return def
}

func getEnvLevel(key string, def slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(v)); err == nil {
			return level
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				result = append(result, t)
			}
		}
		return result
	}
	return def
}
