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
	"gopkg.in/yaml.v3"
)

// Environment variable names understood by Load.
const (
	EnvConfigFile    = "EVENTMANAGER_CONFIG_FILE"
	EnvHTTPPort      = "EVENTMANAGER_HTTP_PORT"
	EnvSQLiteDSN     = "EVENTMANAGER_SQLITE_DSN"
	EnvSessionSecret = "EVENTMANAGER_SESSION_SECRET"
	EnvFlashTTL      = "EVENTMANAGER_FLASH_TTL"
	EnvLogLevel      = "EVENTMANAGER_LOG_LEVEL"
	EnvLogFormat     = "EVENTMANAGER_LOG_FORMAT"
)

// Config captures environment driven configuration values for the event manager.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	SessionSecret string
	FlashTTL      time.Duration
	LogLevel      string
	LogFormat     string
}

// fileConfig mirrors Config in the optional YAML file. Durations are strings
// such as "5m".
type fileConfig struct {
	HTTPPort      *int   `yaml:"http_port"`
	SQLiteDSN     string `yaml:"sqlite_dsn"`
	SessionSecret string `yaml:"session_secret"`
	FlashTTL      string `yaml:"flash_ttl"`
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
}

// LoadDotEnv loads variables from a .env file at path. Variables already set
// in the environment win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration from defaults, the YAML file named by
// EVENTMANAGER_CONFIG_FILE and finally the process environment.
//
// Every missing or invalid value is reported at once.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:  8080,
		SQLiteDSN: "eventmanager.db",
		FlashTTL:  5 * time.Minute,
		LogLevel:  "info",
		LogFormat: "json",
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	if path := strings.TrimSpace(os.Getenv(EnvConfigFile)); path != "" {
		fc, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		invalid = append(invalid, fc.apply(&cfg)...)
	}

	if portValue := strings.TrimSpace(os.Getenv(EnvHTTPPort)); portValue != "" {
		if port, ok := parsePort(portValue); ok {
			cfg.HTTPPort = port
		} else {
			invalid = append(invalid, EnvHTTPPort)
		}
	}

	if dsn := strings.TrimSpace(os.Getenv(EnvSQLiteDSN)); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv(EnvSessionSecret)); secret != "" {
		cfg.SessionSecret = secret
	}
	if cfg.SessionSecret == "" {
		missing = append(missing, EnvSessionSecret)
	}

	if ttlValue := strings.TrimSpace(os.Getenv(EnvFlashTTL)); ttlValue != "" {
		if ttl, ok := parseTTL(ttlValue); ok {
			cfg.FlashTTL = ttl
		} else {
			invalid = append(invalid, EnvFlashTTL)
		}
	}

	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}
	if !validLogLevel(cfg.LogLevel) {
		invalid = append(invalid, EnvLogLevel)
	}

	if format := strings.TrimSpace(os.Getenv(EnvLogFormat)); format != "" {
		cfg.LogFormat = strings.ToLower(format)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		invalid = append(invalid, EnvLogFormat)
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(dedupe(invalid), ", "))
	}

	return cfg, nil
}

func readFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return fc, nil
}

// apply copies set file values onto cfg and returns the names of the
// variables whose file values were invalid.
func (fc fileConfig) apply(cfg *Config) []string {
	var invalid []string

	if fc.HTTPPort != nil {
		if *fc.HTTPPort > 0 && *fc.HTTPPort <= 65535 {
			cfg.HTTPPort = *fc.HTTPPort
		} else {
			invalid = append(invalid, EnvHTTPPort)
		}
	}
	if dsn := strings.TrimSpace(fc.SQLiteDSN); dsn != "" {
		cfg.SQLiteDSN = dsn
	}
	if secret := strings.TrimSpace(fc.SessionSecret); secret != "" {
		cfg.SessionSecret = secret
	}
	if ttlValue := strings.TrimSpace(fc.FlashTTL); ttlValue != "" {
		if ttl, ok := parseTTL(ttlValue); ok {
			cfg.FlashTTL = ttl
		} else {
			invalid = append(invalid, EnvFlashTTL)
		}
	}
	if level := strings.TrimSpace(fc.LogLevel); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}
	if format := strings.TrimSpace(fc.LogFormat); format != "" {
		cfg.LogFormat = strings.ToLower(format)
	}

	return invalid
}

func parsePort(value string) (int, bool) {
	port, err := strconv.Atoi(value)
	if err != nil || port <= 0 || port > 65535 {
		return 0, false
	}
	return port, true
}

func parseTTL(value string) (time.Duration, bool) {
	ttl, err := time.ParseDuration(value)
	if err != nil || ttl <= 0 {
		return 0, false
	}
	return ttl, true
}

func validLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
