package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the application configuration for the training client: where
// it listens, which backend it talks to, and where local state lives.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Backend BackendConfig `mapstructure:"backend"`
	Store   StoreConfig   `mapstructure:"store"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	BasePath string `mapstructure:"base_path"`
	Locale   string `mapstructure:"locale"`
}

// Addr is the host:port the HTTP server binds to.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type BackendConfig struct {
	// Mock swaps the hosted backend for the in-process roster. The client
	// is fully usable offline in this mode.
	Mock    bool   `mapstructure:"mock"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	// WebhookURL receives best-effort signup notifications. Empty disables
	// the notifier.
	WebhookURL string `mapstructure:"webhook_url"`
	WebhookKey string `mapstructure:"webhook_key"`
}

type StoreConfig struct {
	// Path is the sqlite file holding persisted client state. ":memory:"
	// keeps everything in-process.
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	BootstrapTimeout time.Duration `mapstructure:"bootstrap_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional .env file, environment
// variables prefixed TRAINING_, and an optional config file, in rising
// precedence. Missing sources are not errors; defaults cover everything.
func Load(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TRAINING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("training")
	v.SetConfigType("yaml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_path", "/training")
	v.SetDefault("server.locale", "es")
	v.SetDefault("backend.mock", true)
	v.SetDefault("backend.base_url", "")
	v.SetDefault("backend.api_key", "")
	v.SetDefault("backend.webhook_url", "")
	v.SetDefault("backend.webhook_key", "")
	v.SetDefault("store.path", defaultStorePath())
	v.SetDefault("auth.bootstrap_timeout", 8*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func defaultStorePath() string {
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return dir + "/training/state.db"
	}
	return "./training-state.db"
}

// Validate rejects configurations that cannot possibly start.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server port %d out of range", c.Server.Port)
	}
	if !c.Backend.Mock && c.Backend.BaseURL == "" {
		return fmt.Errorf("config: backend base_url is required unless mock mode is on")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("config: store path is required")
	}
	if c.Auth.BootstrapTimeout <= 0 {
		return fmt.Errorf("config: auth bootstrap_timeout must be positive")
	}
	return nil
}
