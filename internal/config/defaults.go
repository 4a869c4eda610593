package config

import "github.com/apibridge/apibridge/internal/common"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "apibridge",
			Port: 4310,
			Host: "localhost",
		},
		Upstream: UpstreamConfig{
			TimeoutSeconds: 30,
		},
		Cache: CacheConfig{
			Enabled:                true,
			DefaultTTLSeconds:      60,
			ReferenceTTLSeconds:    3600,
			ReportTTLSeconds:       300,
			MaxEntries:             500,
			CleanupIntervalSeconds: 120,
		},
		Proxy: ProxyConfig{
			ResourcePath: "/resources",
		},
		Logging: common.LoggingConfig{
			Level: "info",
		},
	}
}
