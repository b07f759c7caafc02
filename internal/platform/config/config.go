package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when the environment leaves a setting empty.
const (
	DefaultBaseURL = "http://localhost:1411/api"
	DefaultTimeout = 30 * time.Second
	DefaultEnvFile = ".env"
)

// Client captures how to reach and authenticate against the identity provider.
type Client struct {
	BaseURL     string
	APIKey      string
	BearerToken string
	Timeout     time.Duration
	LogLevel    string
	LogFormat   string
}

// LoadEnv loads a .env file into the process environment. The path comes from
// ENV_FILE_PATH, falling back to .env in the working directory. A missing file
// is not an error; variables already set are never overwritten.
func LoadEnv() error {
	path := os.Getenv("ENV_FILE_PATH")
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// FromEnv builds a Client config from environment variables so main stays lean.
func FromEnv() Client {
	baseURL := strings.TrimSpace(os.Getenv("IDP_BASE_URL"))
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		APIKey:      os.Getenv("IDP_API_KEY"),
		BearerToken: os.Getenv("IDP_BEARER_TOKEN"),
		Timeout:     parseDurationEnv("IDP_TIMEOUT", DefaultTimeout),
		LogLevel:    envOr("IDP_LOG_LEVEL", "info"),
		LogFormat:   envOr("IDP_LOG_FORMAT", "text"),
	}
}

// Validate rejects settings the transport cannot work with.
func (c Client) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", c.BaseURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("base URL %q must be absolute", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

func envOr(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func parseDurationEnv(key string, fallback time.Duration) time.Duration {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		if dur, err := time.ParseDuration(val); err == nil {
			return dur
		}
	}
	return fallback
}
