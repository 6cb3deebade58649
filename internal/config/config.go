// Package config loads the run configuration from .env files and the
// process environment.
//
// Files are read in the order .env.<env>.local, .env.local, .env.<env>, .env;
// a variable set by an earlier file, or already present in the environment,
// is never overwritten. Missing files are ignored.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds credentials and environment switches for one run.
type Config struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`

	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	TelegramBotToken string `mapstructure:"tg_bot_token"`
	TelegramChatID   string `mapstructure:"tg_chat_id"`

	TwitterAPIKey       string `mapstructure:"twitter_api_key"`
	TwitterAPISecret    string `mapstructure:"twitter_api_secret"`
	TwitterAccessToken  string `mapstructure:"twitter_access_token"`
	TwitterAccessSecret string `mapstructure:"twitter_access_secret"`
}

// ErrMissingCredentials is returned by Validate when the SmartPLAY account
// is not configured.
var ErrMissingCredentials = errors.New("USERNAME and PASSWORD must be set in environment variables")

// envBindings maps config keys to the variables they are read from, in
// priority order.
var envBindings = map[string][]string{
	"env":                   {"ENV", "APP_ENV", "NODE_ENV"},
	"log_level":             {"LOG_LEVEL"},
	"username":              {"SMARTPLAY_USERNAME", "USERNAME"},
	"password":              {"SMARTPLAY_PASSWORD", "PASSWORD"},
	"tg_bot_token":          {"TG_BOT_TOKEN", "TELEGRAM_BOT_TOKEN"},
	"tg_chat_id":            {"TG_CHAT_ID", "TELEGRAM_CHAT_ID"},
	"twitter_api_key":       {"TWITTER_API_KEY"},
	"twitter_api_secret":    {"TWITTER_API_SECRET"},
	"twitter_access_token":  {"TWITTER_ACCESS_TOKEN"},
	"twitter_access_secret": {"TWITTER_ACCESS_SECRET"},
}

// Load reads .env files from dir into the environment and returns the
// resulting configuration.
func Load(dir string) (*Config, error) {
	env := EnvDevelopment
	for _, name := range envBindings["env"] {
		if val := strings.ToLower(strings.TrimSpace(os.Getenv(name))); val != "" {
			env = val
			break
		}
	}

	if err := loadDotEnv(dir, env); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("log_level", "info")
	for key, vars := range envBindings {
		args := append([]string{key}, vars...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))

	return &cfg, nil
}

// DotEnvFiles lists the .env files for an environment, highest priority first.
func DotEnvFiles(dir, env string) []string {
	return []string{
		filepath.Join(dir, fmt.Sprintf(".env.%s.local", env)),
		filepath.Join(dir, ".env.local"),
		filepath.Join(dir, fmt.Sprintf(".env.%s", env)),
		filepath.Join(dir, ".env"),
	}
}

func loadDotEnv(dir, env string) error {
	for _, path := range DotEnvFiles(dir, env) {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("checking %s: %w", path, err)
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

// IsProduction reports whether the run targets production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Headless reports whether the browser should run without a window.
func (c *Config) Headless() bool {
	return c.IsProduction()
}

// Validate checks that the SmartPLAY account is configured.
func (c *Config) Validate() error {
	if c.Username == "" || c.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}
