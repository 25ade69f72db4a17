package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string
	LogLevel logrus.Level
	DB       DBConfig
	GitHub   *GitHubConfig
	Sync     *SyncConfig
	OpenAI   OpenAIConfig
}

// DBConfig selects the commit store backend
type DBConfig struct {
	Driver           string
	ConnectionString string
}

// OpenAIConfig configures the optional diagnosis analyst
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Enabled reports whether an API key was configured
func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != ""
}

const (
	DefaultPort        = "8080"
	DefaultDBDriver    = "sqlite"
	DefaultSQLitePath  = "data/commit_health.db"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// Load reads an optional .env file, then the optional config file, then the
// environment. Environment variables win over the config file.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper builds a Config from v after registering defaults and the
// environment binding
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	level, err := logrus.ParseLevel(v.GetString("log_level"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		Port:     v.GetString("port"),
		LogLevel: level,
		DB: DBConfig{
			Driver:           strings.ToLower(v.GetString("db_driver")),
			ConnectionString: v.GetString("db_connection_string"),
		},
		GitHub: githubConfigFrom(v),
		Sync:   syncConfigFrom(v),
		OpenAI: OpenAIConfig{
			APIKey:  v.GetString("openai_api_key"),
			BaseURL: v.GetString("openai_base_url"),
			Model:   v.GetString("openai_model"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: expected sqlite or postgres", c.DB.Driver)
	}
	if c.DB.Driver == "postgres" && c.DB.ConnectionString == "" {
		return fmt.Errorf("DB_CONNECTION_STRING is required for postgres")
	}
	if c.DB.ConnectionString == "" {
		c.DB.ConnectionString = DefaultSQLitePath
	}
	if c.Sync.BatchLimit <= 0 {
		return fmt.Errorf("SYNC_BATCH_LIMIT must be positive, got %d", c.Sync.BatchLimit)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", DefaultPort)
	v.SetDefault("log_level", "info")
	v.SetDefault("db_driver", DefaultDBDriver)
	v.SetDefault("db_connection_string", "")
	v.SetDefault("github_token", "")
	v.SetDefault("github_api_url", DefaultGitHubAPIURL)
	v.SetDefault("github_fetch_stats", false)
	v.SetDefault("github_max_retries", 3)
	v.SetDefault("sync_batch_limit", DefaultBatchLimit)
	v.SetDefault("sync_schedule", DefaultSchedule)
	v.SetDefault("default_sync_repo", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_base_url", "")
	v.SetDefault("openai_model", DefaultOpenAIModel)
}
