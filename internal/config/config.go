// Package config loads application configuration from environment variables,
// an optional .env file and an optional YAML file.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	SecretKey       []byte
	ListenAddr      string
	DBPath          string
	MasterKeyPath   string
	SessionTTL      time.Duration
	RevealPasswords bool
	MetricsEnabled  bool
	LogLevel        slog.Level
	LogFormat       string
}

// fileConfig is the YAML layout. Every field is optional; environment
// variables take precedence over whatever the file sets.
type fileConfig struct {
	SecretKey       string `yaml:"secret_key"`
	ListenAddr      string `yaml:"listen_addr"`
	DBPath          string `yaml:"db_path"`
	MasterKeyPath   string `yaml:"master_key_path"`
	SessionTTL      string `yaml:"session_ttl"`
	RevealPasswords *bool  `yaml:"reveal_passwords"`
	Metrics         *bool  `yaml:"metrics_enabled"`
	Logging         struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// Load reads configuration and returns a validated Config.
//
// Sources, lowest precedence first: built-in defaults, the YAML file named by
// PASSPANEL_CONFIG, the .env file named by PASSPANEL_ENV_FILE (default .env,
// never overriding variables already set), and the process environment.
//
// PASSPANEL_SECRET_KEY is required: 64 hex characters (32 bytes). Optional
// variables with defaults: PASSPANEL_LISTEN_ADDR (127.0.0.1:8080),
// PASSPANEL_DB_PATH (passpanel.db), PASSPANEL_MASTER_KEY_PATH
// (master_password_config.json), PASSPANEL_SESSION_TTL (15m),
// PASSPANEL_REVEAL_PASSWORDS (false), PASSPANEL_METRICS_ENABLED (false),
// PASSPANEL_LOG_LEVEL (info), PASSPANEL_LOG_FORMAT (text).
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	fc, err := loadFile(os.Getenv("PASSPANEL_CONFIG"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ListenAddr:    pick("PASSPANEL_LISTEN_ADDR", fc.ListenAddr, "127.0.0.1:8080"),
		DBPath:        pick("PASSPANEL_DB_PATH", fc.DBPath, "passpanel.db"),
		MasterKeyPath: pick("PASSPANEL_MASTER_KEY_PATH", fc.MasterKeyPath, "master_password_config.json"),
		LogFormat:     strings.ToLower(pick("PASSPANEL_LOG_FORMAT", fc.Logging.Format, "text")),
	}

	rawKey := pick("PASSPANEL_SECRET_KEY", fc.SecretKey, "")
	if rawKey == "" {
		return nil, errors.New("PASSPANEL_SECRET_KEY is required (generate one with passpanel-keygen)")
	}
	cfg.SecretKey, err = parseSecretKey(rawKey)
	if err != nil {
		return nil, err
	}

	ttl := pick("PASSPANEL_SESSION_TTL", fc.SessionTTL, "15m")
	cfg.SessionTTL, err = time.ParseDuration(ttl)
	if err != nil {
		return nil, fmt.Errorf("PASSPANEL_SESSION_TTL has invalid duration %q: %w", ttl, err)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("PASSPANEL_SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}

	if cfg.RevealPasswords, err = pickBool("PASSPANEL_REVEAL_PASSWORDS", fc.RevealPasswords); err != nil {
		return nil, err
	}
	if cfg.MetricsEnabled, err = pickBool("PASSPANEL_METRICS_ENABLED", fc.Metrics); err != nil {
		return nil, err
	}

	level := pick("PASSPANEL_LOG_LEVEL", fc.Logging.Level, "info")
	if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("PASSPANEL_LOG_LEVEL has invalid level %q: %w", level, err)
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("PASSPANEL_LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	return cfg, nil
}

// NewLogger builds the process logger described by the config.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func loadEnvFile() error {
	path := os.Getenv("PASSPANEL_ENV_FILE")
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", path, err)
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}

	// ${VAR} references are expanded before parsing.
	expanded := envRef.ReplaceAllStringFunc(string(data), func(m string) string {
		return os.Getenv(envRef.FindStringSubmatch(m)[1])
	})

	if err := yaml.Unmarshal([]byte(expanded), &fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

func pick(env, fromFile, def string) string {
	if v, ok := os.LookupEnv(env); ok {
		return v
	}
	if fromFile != "" {
		return fromFile
	}
	return def
}

func pickBool(env string, fromFile *bool) (bool, error) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("%s has invalid boolean %q: %w", env, v, err)
		}
		return b, nil
	}
	if fromFile != nil {
		return *fromFile, nil
	}
	return false, nil
}

func parseSecretKey(raw string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("PASSPANEL_SECRET_KEY must be hex encoded: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("PASSPANEL_SECRET_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}
