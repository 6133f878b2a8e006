// Package profile holds the runtime configuration for the ingestion
// server.
package profile

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for the server
	Addr string
	// Port is the binding port for the server
	Port int
	// Data is the data directory for the local ingestion log
	Data string
	// Version is the current version of the server
	Version string

	// DefaultUser is the user the pipeline runs as when the request
	// carries no identity. Auth is out of scope; a static user is assumed.
	DefaultUser string

	// Completion service configuration
	AIBaseURL       string // INGEST_AI_BASE_URL (default: https://api.openai.com/v1)
	AIAPIKey        string // INGEST_AI_API_KEY
	AIChatModel     string // INGEST_AI_CHAT_MODEL (default: gpt-4.1)
	AIAutofillModel string // INGEST_AI_AUTOFILL_MODEL (default: gpt-4.1-nano)

	// Knowledge store configuration
	MemoryBaseURL string // INGEST_MEMORY_BASE_URL (default: https://api.supermemory.ai)
	MemoryAPIKey  string // INGEST_MEMORY_API_KEY
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv layers INGEST_* environment variables over the profile. A set
// variable wins over whatever the profile already carries; an unset one
// leaves the existing value (or the documented default) in place.
func (p *Profile) FromEnv() {
	if p.Mode == "" {
		p.Mode = "dev"
	}
	p.Mode = getEnvOrDefault("INGEST_MODE", p.Mode)
	p.Addr = getEnvOrDefault("INGEST_ADDR", p.Addr)
	if port, err := strconv.Atoi(os.Getenv("INGEST_PORT")); err == nil {
		p.Port = port
	}
	p.Data = getEnvOrDefault("INGEST_DATA", p.Data)
	if p.DefaultUser == "" {
		p.DefaultUser = "demo"
	}
	p.DefaultUser = getEnvOrDefault("INGEST_DEFAULT_USER", p.DefaultUser)

	p.AIBaseURL = getEnvOrDefault("INGEST_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIAPIKey = os.Getenv("INGEST_AI_API_KEY")
	p.AIChatModel = getEnvOrDefault("INGEST_AI_CHAT_MODEL", "gpt-4.1")
	p.AIAutofillModel = getEnvOrDefault("INGEST_AI_AUTOFILL_MODEL", "gpt-4.1-nano")

	p.MemoryBaseURL = getEnvOrDefault("INGEST_MEMORY_BASE_URL", "https://api.supermemory.ai")
	p.MemoryAPIKey = os.Getenv("INGEST_MEMORY_API_KEY")
}

// Validate checks the profile and fills derived defaults.
func (p *Profile) Validate() error {
	if p.Mode != "prod" && p.Mode != "dev" {
		p.Mode = "dev"
	}
	if p.Port == 0 {
		p.Port = 8230
	}
	if p.Data == "" {
		dir, err := os.Getwd()
		if err != nil {
			return errors.Wrap(err, "failed to resolve working directory")
		}
		p.Data = filepath.Join(dir, "data")
	}
	if err := os.MkdirAll(p.Data, 0o750); err != nil {
		return errors.Wrapf(err, "failed to create data directory %q", p.Data)
	}
	if p.AIAPIKey == "" {
		return errors.New("INGEST_AI_API_KEY is required")
	}
	if p.MemoryAPIKey == "" {
		return errors.New("INGEST_MEMORY_API_KEY is required")
	}
	return nil
}

// DSN returns the sqlite DSN for the local ingestion log.
func (p *Profile) DSN() string {
	return filepath.Join(p.Data, "ingest.db")
}
