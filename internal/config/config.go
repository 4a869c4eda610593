package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/apibridge/apibridge/internal/common"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig         `toml:"server"`
	Upstream UpstreamConfig       `toml:"upstream"`
	Cache    CacheConfig          `toml:"cache"`
	Tools    ToolsConfig          `toml:"tools"`
	Proxy    ProxyConfig          `toml:"proxy"`
	Logging  common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Name string `toml:"name"`
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// UpstreamConfig describes the wrapped HTTP API.
type UpstreamConfig struct {
	BaseURL        string `toml:"base_url"`
	SpecURL        string `toml:"spec_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// CacheConfig contains TTL cache settings shared by all cache instances.
type CacheConfig struct {
	Enabled                bool `toml:"enabled"`
	DefaultTTLSeconds      int  `toml:"default_ttl_seconds"`
	ReferenceTTLSeconds    int  `toml:"reference_ttl_seconds"`
	ReportTTLSeconds       int  `toml:"report_ttl_seconds"`
	MaxEntries             int  `toml:"max_entries"`
	CleanupIntervalSeconds int  `toml:"cleanup_interval_seconds"`
}

// ToolsConfig controls tool generation.
type ToolsConfig struct {
	// StrictNames makes duplicate derived tool names a startup error
	// instead of last-write-wins with a warning.
	StrictNames bool `toml:"strict_names"`
}

// ProxyConfig describes the single pinned passthrough route.
type ProxyConfig struct {
	// ResourcePath is the upstream collection path the pinned
	// GET /api/resource/{id} route forwards to, e.g. "/widgets".
	ResourcePath string `toml:"resource_path"`
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies APIBRIDGE_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("APIBRIDGE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("APIBRIDGE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if base := os.Getenv("APIBRIDGE_UPSTREAM_URL"); base != "" {
		config.Upstream.BaseURL = base
	}
	if spec := os.Getenv("APIBRIDGE_SPEC_URL"); spec != "" {
		config.Upstream.SpecURL = spec
	}
	if level := os.Getenv("APIBRIDGE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate returns a list of human-readable issues with mandatory settings.
func (c *Config) Validate() []string {
	var issues []string
	if c.Upstream.BaseURL == "" {
		issues = append(issues, "upstream.base_url is required (APIBRIDGE_UPSTREAM_URL)")
	}
	if c.Upstream.SpecURL == "" {
		issues = append(issues, "upstream.spec_url is required (APIBRIDGE_SPEC_URL)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	return issues
}
