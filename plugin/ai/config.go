package ai

import (
	"errors"
	"time"
)

// Config represents completion service configuration.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxTokens  int           // default: 2048
	MaxRetries int           // default: 3
	Timeout    time.Duration // default: 30s
}

// applyDefaults fills unset values.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 2048
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("completion API key is required")
	}
	if c.Model == "" {
		return errors.New("completion model is required")
	}
	return nil
}
