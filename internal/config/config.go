// Package config resolves runtime settings for pwncheck. Precedence, lowest
// to highest: built-in defaults, a .env file in the working directory,
// PWNCHECK_* environment variables, then command-line flags applied by the
// caller.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/breachwatch/pwncheck/internal/hibp"
	"github.com/breachwatch/pwncheck/internal/utils"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const envPrefix = "PWNCHECK_"

// Config holds the resolved runtime settings.
type Config struct {
	APIURL    string        // range endpoint base URL
	Timeout   time.Duration // per-request timeout
	UserAgent string        // User-Agent header sent to the API
	Padding   bool          // request padded responses
	CachePath string        // SQLite cache location; empty selects the default
	CacheTTL  time.Duration // cache entry lifetime; zero never expires
	LogLevel  string
	LogFormat string
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		APIURL:    hibp.DefaultBaseURL,
		Timeout:   hibp.DefaultTimeout,
		UserAgent: "pwncheck",
		CacheTTL:  24 * time.Hour,
		LogLevel:  "info",
		LogFormat: "auto",
	}
}

// Load builds the configuration from defaults, an optional .env file, and
// environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	// Best-effort .env; absence is the normal case.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded .env file")
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if val := utils.GetenvTrim(envPrefix + "API_URL"); val != "" {
		c.APIURL = val
	}
	if val := utils.GetenvTrim(envPrefix + "TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.Timeout = d
		} else {
			log.Warn().Str("value", val).Msg("Ignoring invalid " + envPrefix + "TIMEOUT")
		}
	}
	if val := utils.GetenvTrim(envPrefix + "USER_AGENT"); val != "" {
		c.UserAgent = val
	}
	if val := utils.GetenvTrim(envPrefix + "PADDING"); val != "" {
		c.Padding = utils.ParseBool(val)
	}
	if val := utils.GetenvTrim(envPrefix + "CACHE_PATH"); val != "" {
		c.CachePath = val
	}
	if val := utils.GetenvTrim(envPrefix + "CACHE_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.CacheTTL = d
		} else {
			log.Warn().Str("value", val).Msg("Ignoring invalid " + envPrefix + "CACHE_TTL")
		}
	}
	if val := utils.GetenvTrim(envPrefix + "LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := utils.GetenvTrim(envPrefix + "LOG_FORMAT"); val != "" {
		c.LogFormat = val
	}
}

// Validate checks the final configuration.
func (c *Config) Validate() error {
	parsed, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid API URL %q: %w", c.APIURL, err)
	}
	switch parsed.Scheme {
	case "https":
	case "http":
		// Plain HTTP would leak the hash prefix on the wire; only allow it
		// for local test servers.
		if !isLoopbackHost(parsed.Hostname()) {
			return fmt.Errorf("API URL %q must use https (http is allowed for loopback only)", c.APIURL)
		}
	default:
		return fmt.Errorf("API URL %q must use http or https", c.APIURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("API URL %q has no host", c.APIURL)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache TTL must not be negative, got %s", c.CacheTTL)
	}
	return nil
}

// ResolveCachePath returns the configured cache location, falling back to
// the user cache directory.
func (c *Config) ResolveCachePath() (string, error) {
	if c.CachePath != "" {
		return c.CachePath, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve user cache directory: %w", err)
	}
	dir := filepath.Join(base, "pwncheck")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create cache directory: %w", err)
	}
	return filepath.Join(dir, "ranges.db"), nil
}

func isLoopbackHost(host string) bool {
	host = strings.ToLower(host)
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
