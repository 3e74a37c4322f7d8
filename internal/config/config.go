package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Cache     CacheConfig     `mapstructure:"cache"`
	Persister PersisterConfig `mapstructure:"persister"`
	History   HistoryConfig   `mapstructure:"history"`
	Remote    RemoteConfig    `mapstructure:"remote"`
	Static    StaticConfig    `mapstructure:"static"`
	Populate  PopulateConfig  `mapstructure:"populate"`
	Database  DatabaseConfig  `mapstructure:"database"`
}

type CacheConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type PersisterConfig struct {
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`
}

type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

type RemoteConfig struct {
	BaseURL           string        `mapstructure:"base_url" validate:"required,base_url"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RetryAttempts     uint          `mapstructure:"retry_attempts" validate:"min=1"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gte=0"`
	UserAgent         string        `mapstructure:"user_agent"`
}

type StaticConfig struct {
	Path string `mapstructure:"path" validate:"omitempty,file"`
}

type PopulateConfig struct {
	Concurrency        int           `mapstructure:"concurrency" validate:"min=1"`
	CheckpointInterval time.Duration `mapstructure:"checkpoint_interval" validate:"gt=0"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	Database        string            `mapstructure:"database"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime"`
}

// ConfigLoader reads the configuration file, environment variables, and defaults.
type ConfigLoader struct {
	viper *viper.Viper
}

// NewConfigLoader prepares a loader. An empty configFile searches ./config.yml and
// $HOME/.config/ydweb/config.yml.
func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/ydweb")
	}

	cacheDir := defaultCacheDirectory()
	v.SetDefault("cache.path", filepath.Join(cacheDir, "word_cache.json.sz"))
	v.SetDefault("persister.interval", 2*time.Second)
	v.SetDefault("history.path", filepath.Join(cacheDir, "word_history.txt"))
	v.SetDefault("remote.base_url", "https://www.youdao.com/w/")
	v.SetDefault("remote.timeout", 10*time.Second)
	v.SetDefault("remote.retry_attempts", 1)
	v.SetDefault("remote.requests_per_second", 0)
	v.SetDefault("remote.user_agent", "ydweb")
	v.SetDefault("populate.concurrency", 8)
	v.SetDefault("populate.checkpoint_interval", 60*time.Second)
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "ydweb")

	// Database credentials come from environment variables only
	envBindings := map[string]string{
		"database.host":     "YDWEB_DB_HOST",
		"database.port":     "YDWEB_DB_PORT",
		"database.username": "YDWEB_DB_USERNAME",
		"database.password": "YDWEB_DB_PASSWORD",
		"database.database": "YDWEB_DB_DATABASE",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	return &ConfigLoader{viper: v}, nil
}

// Load reads and validates the configuration.
func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}
	cfg.Cache.Path = expandHome(cfg.Cache.Path)
	cfg.History.Path = expandHome(cfg.History.Path)
	cfg.Static.Path = expandHome(cfg.Static.Path)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load is a shorthand for NewConfigLoader(configFile) followed by Load.
func Load(configFile string) (*Config, error) {
	loader, err := NewConfigLoader(configFile)
	if err != nil {
		return nil, err
	}
	return loader.Load()
}

func validate(cfg *Config) error {
	validate, trans, err := newValidator()
	if err != nil {
		return fmt.Errorf("newValidator() > %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return fmt.Errorf("validate.Struct() > %w", err)
		}
		messages := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			messages = append(messages, fmt.Sprintf("%s: %s", fieldPath(fieldErr), fieldErr.Translate(trans)))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
	}
	return nil
}

func defaultCacheDirectory() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".cache", "ydweb")
	}
	return filepath.Join(dir, "ydweb")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
