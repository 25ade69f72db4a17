package config

import (
	"time"

	"github.com/spf13/viper"
)

const DefaultGitHubAPIURL = "https://api.github.com"

// GitHubConfig holds GitHub-specific configuration
type GitHubConfig struct {
	Token      string
	APIBaseURL string
	// FetchStats enables one extra request per commit to read line counts
	FetchStats bool
	RateLimit  RateLimitConfig
}

// RateLimitConfig holds retry configuration for transient API failures
type RateLimitConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultGitHubConfig returns the default GitHub configuration
func DefaultGitHubConfig() *GitHubConfig {
	return &GitHubConfig{
		APIBaseURL: DefaultGitHubAPIURL,
		RateLimit: RateLimitConfig{
			MaxRetries:     3,
			InitialBackoff: time.Second,
			MaxBackoff:     time.Minute,
		},
	}
}

func githubConfigFrom(v *viper.Viper) *GitHubConfig {
	cfg := DefaultGitHubConfig()
	cfg.Token = v.GetString("github_token")
	if url := v.GetString("github_api_url"); url != "" {
		cfg.APIBaseURL = url
	}
	cfg.FetchStats = v.GetBool("github_fetch_stats")
	if retries := v.GetInt("github_max_retries"); retries > 0 {
		cfg.RateLimit.MaxRetries = retries
	}
	return cfg
}
