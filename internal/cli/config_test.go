package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/pydigger/pkg/errors"
	"github.com/matzehuels/pydigger/pkg/integrations/pypi"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Feed.URL != pypi.DefaultFeedURL || cfg.Feed.IndexURL != pypi.DefaultIndexURL {
		t.Errorf("feed = %+v", cfg.Feed)
	}
	if cfg.RecordsDir() != filepath.Join("data", "pypi") {
		t.Errorf("RecordsDir() = %q", cfg.RecordsDir())
	}
	if cfg.StatsPath() != filepath.Join("data", "pypi.json") || cfg.ReportPath() != filepath.Join("data", "report.json") {
		t.Errorf("paths = %q, %q", cfg.StatsPath(), cfg.ReportPath())
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
data_dir = "/srv/pydigger"

[cache]
backend = "redis"
ttl = "36h"
redis_url = "redis://localhost:6379/2"

[probe]
enabled = false
depth = 3
`)
	cfg, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DataDir != "/srv/pydigger" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Cache.Backend != backendRedis || cfg.Cache.TTL.Duration != 36*time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Probe.Enabled || cfg.Probe.Depth != 3 {
		t.Errorf("probe = %+v", cfg.Probe)
	}
	// Sections absent from the file keep their defaults.
	if cfg.Feed.URL != pypi.DefaultFeedURL || cfg.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("defaults lost: %+v %+v", cfg.Feed, cfg.Server)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	cfg, err := LoadConfig(missing, false)
	if err != nil || cfg.DataDir != "data" {
		t.Errorf("implicit missing config = %+v, %v; want defaults", cfg, err)
	}
	if _, err := LoadConfig(missing, true); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("explicit missing config error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", `data_dir = `},
		{"backend", "[cache]\nbackend = \"memcached\""},
		{"redis without url", "[cache]\nbackend = \"redis\""},
		{"ttl", "[cache]\nttl = \"a week\""},
		{"depth", "[probe]\ndepth = 0"},
		{"feed scheme", "[feed]\nurl = \"ftp://pypi.org/rss\""},
		{"empty data dir", `data_dir = ""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content), true)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("LoadConfig() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestConfigPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")
	path, err := configPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/custom-config", appName, "config.toml"); path != want {
		t.Errorf("configPath() = %q, want %q", path, want)
	}
}

func TestConfigPathHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)
	path, err := configPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".config", appName, "config.toml"); path != want {
		t.Errorf("configPath() = %q, want %q", path, want)
	}
}
