package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pydigger/pkg/errors"
	"github.com/matzehuels/pydigger/pkg/integrations/pypi"
	"github.com/matzehuels/pydigger/pkg/vcs"
)

// Cache backends selectable in the config file.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendNone  = "none"
)

// Config is the optional config.toml.
//
//	data_dir = "data"
//
//	[feed]
//	url = "https://pypi.org/rss/updates.xml"
//	index_url = "https://pypi.org/pypi"
//
//	[cache]
//	backend = "redis"
//	ttl = "168h"
//	redis_url = "redis://localhost:6379/0"
//
//	[probe]
//	enabled = true
//	depth = 1
//
//	[server]
//	addr = "127.0.0.1:8080"
type Config struct {
	DataDir string       `toml:"data_dir"`
	Feed    FeedConfig   `toml:"feed"`
	Cache   CacheConfig  `toml:"cache"`
	Probe   ProbeConfig  `toml:"probe"`
	Server  ServerConfig `toml:"server"`
}

type FeedConfig struct {
	URL      string `toml:"url"`
	IndexURL string `toml:"index_url"`
}

type CacheConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	TTL      Duration `toml:"ttl"`
	RedisURL string   `toml:"redis_url"`
}

type ProbeConfig struct {
	Enabled bool   `toml:"enabled"`
	Depth   int    `toml:"depth"`
	TempDir string `toml:"temp_dir"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration reads Go duration strings ("24h", "90m") from TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "data",
		Feed: FeedConfig{
			URL:      pypi.DefaultFeedURL,
			IndexURL: pypi.DefaultIndexURL,
		},
		Cache: CacheConfig{
			Backend: backendFile,
			TTL:     Duration{7 * 24 * time.Hour},
		},
		Probe: ProbeConfig{
			Enabled: true,
			Depth:   vcs.DefaultDepth,
		},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
	}
}

// LoadConfig reads path over the defaults. A missing file is only an error
// when the path was given explicitly.
func LoadConfig(path string, explicit bool) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the commands cannot recover from.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "data_dir must not be empty")
	}
	switch c.Cache.Backend {
	case backendFile, backendNone:
	case backendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if c.Probe.Depth < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "probe.depth must be at least 1")
	}
	for _, u := range []string{c.Feed.URL, c.Feed.IndexURL} {
		if err := errors.ValidateURL(u); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "feed url %q", u)
		}
	}
	return nil
}

// RecordsDir is where package records are stored.
func (c *Config) RecordsDir() string { return filepath.Join(c.DataDir, "pypi") }

// StatsPath is the run statistics file.
func (c *Config) StatsPath() string { return filepath.Join(c.DataDir, "pypi.json") }

// ReportPath is the aggregated report file.
func (c *Config) ReportPath() string { return filepath.Join(c.DataDir, "report.json") }

// configPath returns the default config file (~/.config/pydigger/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
