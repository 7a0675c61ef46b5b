// Package config loads server settings with viper.
//
// Sources, lowest priority first:
//   - built-in defaults
//   - an optional config.yaml in the working directory or ./config
//   - environment variables named after the keys in upper case (PORT, LOG_LEVEL, ...)
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreFile   = "file"
)

// Config contains every server setting.
type Config struct {
	Port      string `mapstructure:"port"`
	LogLevel  string `mapstructure:"log_level"`
	LogPretty bool   `mapstructure:"log_pretty"`

	GameName        string `mapstructure:"game_name"`
	TargetWordsFile string `mapstructure:"target_words_file"` // empty uses the embedded list
	ValidWordsFile  string `mapstructure:"valid_words_file"`  // empty uses the embedded list
	DailySalt       string `mapstructure:"daily_salt"`

	StoreDriver string `mapstructure:"store_driver"` // memory | sqlite | file
	DBPath      string `mapstructure:"db_path"`
	SaveDir     string `mapstructure:"save_dir"`

	JWTSecret         string `mapstructure:"jwt_secret"`
	JWTExpiresDays    int    `mapstructure:"jwt_expires_days"`
	CookieName        string `mapstructure:"cookie_name"`
	ClientOrigin      string `mapstructure:"client_origin"`
	Production        bool   `mapstructure:"production"`
	AdminUser         string `mapstructure:"admin_user"`
	AdminPasswordHash string `mapstructure:"admin_password_hash"` // bcrypt
}

var keys = map[string]any{
	"port":                "5175",
	"log_level":           "info",
	"log_pretty":          false,
	"game_name":           "Bad Wordle",
	"target_words_file":   "",
	"valid_words_file":    "",
	"daily_salt":          "local_dev_salt",
	"store_driver":        StoreMemory,
	"db_path":             "./data/app.db",
	"save_dir":            "./data/players",
	"jwt_secret":          "dev_secret_change_me",
	"jwt_expires_days":    14,
	"cookie_name":         "wordle_token",
	"client_origin":       "http://localhost:5173",
	"production":          false,
	"admin_user":          "",
	"admin_password_hash": "",
}

// Load reads configuration. configPath adds an extra directory to search for
// config.yaml; a missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	for k, def := range keys {
		v.SetDefault(k, def)
		if err := v.BindEnv(k, strings.ToUpper(k)); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite:
		if c.DBPath == "" {
			return errors.New("db_path is required for the sqlite store")
		}
	case StoreFile:
		if c.SaveDir == "" {
			return errors.New("save_dir is required for the file store")
		}
	default:
		return fmt.Errorf("unknown store_driver %q", c.StoreDriver)
	}
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.JWTExpiresDays <= 0 {
		return fmt.Errorf("jwt_expires_days must be positive, got %d", c.JWTExpiresDays)
	}
	if c.Production && c.JWTSecret == keys["jwt_secret"] {
		return errors.New("jwt_secret must be set in production")
	}
	if (c.AdminUser == "") != (c.AdminPasswordHash == "") {
		return errors.New("admin_user and admin_password_hash must be set together")
	}
	return nil
}
