package types

import "time"

// EngineKind selects the resolution engine adapter.
type EngineKind string

const (
	// EngineHTTP talks to a resolution service over HTTP with structured replies.
	EngineHTTP EngineKind = "http"

	// EngineExec runs the legacy command-line resolver, which only reports
	// flat string errors without suggestions.
	EngineExec EngineKind = "exec"
)

// HTTPConfig holds shared HTTP settings used by the engine client.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "scripture-links/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// EngineConfig holds settings for the engine gateway and its adapter.
type EngineConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Kind is "http" or "exec".
	Kind EngineKind `json:"kind" yaml:"kind" mapstructure:"kind"`

	// URL is the base URL of the HTTP engine (e.g. "http://localhost:8790").
	URL string `json:"url" yaml:"url" mapstructure:"url"`

	// Binary is the path or name of the legacy resolver executable.
	Binary string `json:"binary" yaml:"binary" mapstructure:"binary"`

	// APIKey authenticates against the HTTP engine. Loaded from
	// .secrets/engine-api-key when not configured.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries bounds HTTP 429 retries (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// CacheSize is the number of resolved citations kept in memory
	// (0 disables the cache).
	CacheSize int `json:"cache_size" yaml:"cache_size" mapstructure:"cache_size"`
}

// StatsConfig holds settings for the persisted usage counters.
type StatsConfig struct {
	// DBPath is the SQLite file holding the counters record.
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`

	// Persist disables durable storage when false; counters then live only
	// for the current process.
	Persist bool `json:"persist" yaml:"persist" mapstructure:"persist"`
}

// ShareConfig holds settings for shareable links.
type ShareConfig struct {
	// BaseURL is the page address that share links are built on
	// (e.g. "http://localhost:8080/").
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
}

// NotifyConfig holds settings for the notification channel.
type NotifyConfig struct {
	// ViewportWidth is the width of the client surface in pixels. Widths at
	// or below 768 count as narrow.
	ViewportWidth int `json:"viewport_width" yaml:"viewport_width" mapstructure:"viewport_width"`

	// NarrowDuration is how long a notification stays visible on narrow viewports (default 4s).
	NarrowDuration time.Duration `json:"narrow_duration" yaml:"narrow_duration" mapstructure:"narrow_duration"`

	// WideDuration is how long a notification stays visible otherwise (default 5s).
	WideDuration time.Duration `json:"wide_duration" yaml:"wide_duration" mapstructure:"wide_duration"`
}

// ReadinessConfig bounds the wait for the engine before an auto-resolve.
type ReadinessConfig struct {
	// PollInterval is the delay between availability checks (default 100ms).
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval" mapstructure:"poll_interval"`

	// MaxWait is the longest the auto-resolve waits for readiness (default 10s).
	MaxWait time.Duration `json:"max_wait" yaml:"max_wait" mapstructure:"max_wait"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// Config groups every setting of the application.
type Config struct {
	Engine    EngineConfig    `json:"engine" yaml:"engine" mapstructure:"engine"`
	Stats     StatsConfig     `json:"stats" yaml:"stats" mapstructure:"stats"`
	Share     ShareConfig     `json:"share" yaml:"share" mapstructure:"share"`
	Notify    NotifyConfig    `json:"notify" yaml:"notify" mapstructure:"notify"`
	Readiness ReadinessConfig `json:"readiness" yaml:"readiness" mapstructure:"readiness"`
	Server    ServerConfig    `json:"server" yaml:"server" mapstructure:"server"`
}
