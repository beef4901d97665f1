// Package config loads client configuration and sets up logging.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration values.
type Config struct {
	// Backend
	BackendURL string
	Timeout    time.Duration

	// Ambient credential store
	CookieFile string

	// Route guard
	PrivatePrefixes []string
	LoginRoute      string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// fileConfig is the on-disk YAML shape. Only a subset of Config is
// settable from the file; logging stays env-only.
type fileConfig struct {
	BackendURL      string   `yaml:"backend_url"`
	Timeout         string   `yaml:"timeout"`
	CookieFile      string   `yaml:"cookie_file"`
	PrivatePrefixes []string `yaml:"private_prefixes"`
	LoginRoute      string   `yaml:"login_route"`
}

// Load reads configuration from the optional YAML config file and then
// environment variables. Env vars win over the file, defaults fill the rest.
func Load() Config {
	cfg := Config{
		BackendURL:      "http://localhost:8000",
		Timeout:         30 * time.Second,
		CookieFile:      defaultCookieFile(),
		PrivatePrefixes: []string{"/settings"},
		LoginRoute:      "/login",
		LogFile:         filepath.Join(os.TempDir(), "ragchat.log"),
		LogLevel:        parseLogLevel(getEnv("RAGCHAT_LOG_LEVEL", "INFO")),
	}

	if fc, ok := loadFile(configFilePath()); ok {
		if fc.BackendURL != "" {
			cfg.BackendURL = fc.BackendURL
		}
		if fc.Timeout != "" {
			if d, err := time.ParseDuration(fc.Timeout); err == nil {
				cfg.Timeout = d
			}
		}
		if fc.CookieFile != "" {
			cfg.CookieFile = fc.CookieFile
		}
		if len(fc.PrivatePrefixes) > 0 {
			cfg.PrivatePrefixes = fc.PrivatePrefixes
		}
		if fc.LoginRoute != "" {
			cfg.LoginRoute = fc.LoginRoute
		}
	}

	cfg.BackendURL = getEnv("RAGCHAT_BACKEND_URL", cfg.BackendURL)
	cfg.CookieFile = getEnv("RAGCHAT_COOKIE_FILE", cfg.CookieFile)
	cfg.LogFile = getEnv("RAGCHAT_LOG_FILE", cfg.LogFile)
	if t := os.Getenv("RAGCHAT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.Timeout = d
		}
	}
	if p := os.Getenv("RAGCHAT_PRIVATE_PREFIXES"); p != "" {
		cfg.PrivatePrefixes = splitList(p)
	}

	return cfg
}

// configFilePath returns RAGCHAT_CONFIG or the default location under
// the user config dir.
func configFilePath() string {
	if p := os.Getenv("RAGCHAT_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ragchat", "config.yaml")
}

func loadFile(path string) (fileConfig, bool) {
	var fc fileConfig
	if path == "" {
		return fc, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, false
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, false
	}
	return fc, true
}

func defaultCookieFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "ragchat-cookies.json")
	}
	return filepath.Join(dir, "ragchat", "cookies.json")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
