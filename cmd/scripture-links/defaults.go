// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/scripture-links/internal/engine"
	"github.com/pdiddy/scripture-links/internal/notify"
	"github.com/pdiddy/scripture-links/pkg/types"
)

const (
	defaultEngineURL = "http://localhost:8790"
	defaultUserAgent = "scripture-links/0.1"
	defaultBaseURL   = "http://localhost:8080/"
	defaultAddr      = ":8080"
	defaultDBFile    = "stats.db"
)

// setDefaults registers every config key so viper can unmarshal
// environment overrides for keys absent from the config file.
func setDefaults() {
	viper.SetDefault("log.level", "warn")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("engine.kind", string(types.EngineHTTP))
	viper.SetDefault("engine.url", defaultEngineURL)
	viper.SetDefault("engine.binary", engine.DefaultBinary)
	viper.SetDefault("engine.api_key", "")
	viper.SetDefault("engine.timeout", 10*time.Second)
	viper.SetDefault("engine.user_agent", defaultUserAgent)
	viper.SetDefault("engine.max_retries", 5)
	viper.SetDefault("engine.cache_size", 256)

	viper.SetDefault("stats.db_path", defaultDBPath())
	viper.SetDefault("stats.persist", true)

	viper.SetDefault("share.base_url", defaultBaseURL)

	viper.SetDefault("notify.viewport_width", 1024)
	viper.SetDefault("notify.narrow_duration", notify.DefaultNarrowDuration)
	viper.SetDefault("notify.wide_duration", notify.DefaultWideDuration)

	viper.SetDefault("readiness.poll_interval", engine.DefaultPollInterval)
	viper.SetDefault("readiness.max_wait", engine.DefaultMaxWait)

	viper.SetDefault("server.addr", defaultAddr)
}

// defaultDBPath places the stats database under the user's data directory,
// falling back to the working directory.
func defaultDBPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "scripture-links", defaultDBFile)
	}
	return defaultDBFile
}
