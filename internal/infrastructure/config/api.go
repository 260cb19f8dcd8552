package config

import "time"

// APIConfig holds SpaceTraders API client configuration
type APIConfig struct {
	// Base URL for SpaceTraders API
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// Agent bearer token. Also read from API_TOKEN and ST_API_TOKEN.
	Token string `mapstructure:"token"`

	// Rate limiting settings
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Request timeout
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`

	// Retry configuration
	Retry RetryConfig `mapstructure:"retry"`
}

// RateLimitConfig holds the token bucket: Requests per Period, with Burst
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests" validate:"min=1"`
	Period   time.Duration `mapstructure:"period" validate:"required"`
	Burst    int           `mapstructure:"burst" validate:"min=1"`
}

// RetryConfig holds retry configuration for failed requests
type RetryConfig struct {
	// Maximum number of retry attempts
	MaxAttempts int `mapstructure:"max_attempts" validate:"min=0"`

	// Base duration for exponential backoff
	BackoffBase time.Duration `mapstructure:"backoff_base"`
}
