package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Path pattern: exact, "{name}" wildcard segments, or a "/"-terminated prefix
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTTL is how long an unused bucket is kept
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// DefaultConfig returns the limits used when no configuration is given
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// LoadConfig loads rate limiting configuration from environment variables
func LoadConfig() *Config {
	if !envOr("RATE_LIMIT_ENABLED", true, strconv.ParseBool) {
		return &Config{Enabled: false}
	}

	cfg := DefaultConfig()
	cfg.DefaultLimit = envOr("RATE_LIMIT_DEFAULT_LIMIT", cfg.DefaultLimit, strconv.Atoi)
	cfg.DefaultWindow = envOr("RATE_LIMIT_DEFAULT_WINDOW", cfg.DefaultWindow, time.ParseDuration)
	cfg.CleanupInterval = envOr("RATE_LIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval, time.ParseDuration)
	cfg.IdleTTL = envOr("RATE_LIMIT_IDLE_TTL", cfg.IdleTTL, time.ParseDuration)
	cfg.Whitelist = parseIPList(os.Getenv("RATE_LIMIT_WHITELIST"))
	cfg.Blacklist = parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST"))
	cfg.EndpointConfigs = endpointConfigs(
		envOr("RATE_LIMIT_GENERATE_LIMIT", defaultGenerateLimit, strconv.Atoi),
		envOr("RATE_LIMIT_UPDATE_LIMIT", defaultUpdateLimit, strconv.Atoi),
	)
	return cfg
}

// Hourly limits of the routes that call the completion service
const (
	defaultGenerateLimit = 30
	defaultUpdateLimit   = 60
)

// DefaultEndpointConfigs returns the default endpoint-specific configurations
func DefaultEndpointConfigs() []EndpointConfig {
	return endpointConfigs(defaultGenerateLimit, defaultUpdateLimit)
}

// endpointConfigs builds the endpoint table. Every generation route shares the
// generate tier.
func endpointConfigs(generate, update int) []EndpointConfig {
	return []EndpointConfig{
		// Completion calls
		{Path: "/resumes", Method: "POST", Limit: generate, Window: time.Hour, Burst: 5},
		{Path: "/resumes/stream", Method: "POST", Limit: generate, Window: time.Hour, Burst: 5},
		{Path: "/resumes/jobs", Method: "POST", Limit: generate, Window: time.Hour, Burst: 5},
		{Path: "/resumes/{id}/update", Method: "POST", Limit: update, Window: time.Hour, Burst: 10},

		// Browser rendering and uploads
		{Path: "/resumes/{id}/resume.pdf", Method: "GET", Limit: 60, Window: time.Minute, Burst: 5},
		{Path: "/resumes/{id}/exports/{format}", Method: "POST", Limit: 60, Window: time.Minute, Burst: 5},

		// Validation only
		{Path: "/validate", Method: "POST", Limit: 600, Window: time.Minute, Burst: 60},
	}
}

// envOr parses the environment variable key, falling back to def when it is unset
// or does not parse
func envOr[T any](key string, def T, parse func(string) (T, error)) T {
	value := os.Getenv(key)
	if value == "" {
		return def
	}
	parsed, err := parse(value)
	if err != nil {
		return def
	}
	return parsed
}

// parseIPList parses a comma-separated list of client addresses into a set
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
