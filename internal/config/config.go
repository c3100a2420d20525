// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/chessopenings/video-indexer/internal/xerrors"
)

// Config holds all configuration for a run (spec §6, SPEC_FULL.md AMBIENT
// STACK).
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	YouTube   YouTubeConfig
	Quota     QuotaConfig
	RateLimit RateLimitConfig
	Batch     BatchConfig
	Paths     PathsConfig
	Logging   LoggingConfig
}

// YouTubeConfig holds upstream API credentials (spec §6: apiKey, also
// resolvable from env YOUTUBE_API_KEY).
type YouTubeConfig struct {
	APIKey string
}

// QuotaConfig holds the daily quota ceiling (spec §6: quotaLimit).
type QuotaConfig struct {
	Limit int
}

// RateLimitConfig holds the shared token-bucket settings (spec §5, §6).
type RateLimitConfig struct {
	RequestsPerSecond float64
	Enabled           bool
}

// BatchConfig holds enrichment batching and per-opening selection settings
// (spec §4.5, §4.6, §6).
type BatchConfig struct {
	Size       int
	MaxResults int
}

// PathsConfig holds every file-system location the pipeline reads or writes
// (spec §6).
type PathsConfig struct {
	ChannelConfig     string
	IndexSnapshot     string
	Cache             string
	VideosDir         string
	Checkpoint        string
	Summary           string
	ConsolidatedIndex string
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// Load loads configuration from file and environment variables
// (SPEC_FULL.md AMBIENT STACK: viper, env prefix VIDEOIDX).
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("VIDEOIDX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("%w: read config: %v", xerrors.ErrConfigInvalid, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal config: %v", xerrors.ErrConfigInvalid, err)
	}

	if cfg.YouTube.APIKey == "" {
		cfg.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if cfg.YouTube.APIKey == "" {
		return nil, fmt.Errorf("%w: youtube API key is required (set youtube.apikey or YOUTUBE_API_KEY)", xerrors.ErrConfigInvalid)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("quota.limit", 10000)

	viper.SetDefault("ratelimit.requestspersecond", 1.0)
	viper.SetDefault("ratelimit.enabled", true)

	viper.SetDefault("batch.size", 50)
	viper.SetDefault("batch.maxresults", 10)

	viper.SetDefault("paths.channelconfig", "config/channels.yaml")
	viper.SetDefault("paths.indexsnapshot", "data/index.json")
	viper.SetDefault("paths.cache", "data/enrichment_cache.json")
	viper.SetDefault("paths.videosdir", "data/videos")
	viper.SetDefault("paths.checkpoint", "data/matches_checkpoint.json")
	viper.SetDefault("paths.summary", "data/results_summary.json")
	viper.SetDefault("paths.consolidatedindex", "")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}
