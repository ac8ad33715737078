package model

import "time"

// Config holds the full runtime configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http" mapstructure:"http"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Overpass OverpassConfig `yaml:"overpass" mapstructure:"overpass"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// HTTPConfig configures the outbound fetch client. There is no process-wide
// session: every client is built from one of these.
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxRetries    int           `yaml:"max_retries" mapstructure:"max_retries"`
	RetryBaseWait time.Duration `yaml:"retry_base_wait" mapstructure:"retry_base_wait"`
	RatePerHost   float64       `yaml:"rate_per_host" mapstructure:"rate_per_host"`
	RateBurst     int           `yaml:"rate_burst" mapstructure:"rate_burst"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	CacheTTL      time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// OverpassConfig configures the geodata spatial query.
type OverpassConfig struct {
	URL          string        `yaml:"url" mapstructure:"url"`
	RadiusMeters int           `yaml:"radius_meters" mapstructure:"radius_meters"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       20 * time.Second,
			UserAgent:     "cityfeed/0.3 (+https://github.com/cityfeed/cityfeed)",
			MaxBodyBytes:  2_000_000,
			MaxRetries:    3,
			RetryBaseWait: 500 * time.Millisecond,
			RatePerHost:   2,
			RateBurst:     4,
			RespectRobots: false,
			CacheTTL:      5 * time.Minute,
		},
		Database: DatabaseConfig{
			Path: "cityfeed.db",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Overpass: OverpassConfig{
			URL:          "https://overpass-api.de/api/interpreter",
			RadiusMeters: 8000,
			Timeout:      90 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
