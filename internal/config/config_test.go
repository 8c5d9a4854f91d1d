package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileJSON5OverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	data := `{
  // comments and trailing commas are fine
  store: "sqlite",
  liveness_interval_ms: 0,
  poll_interval_s: 30,
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Store != "sqlite" {
		t.Fatalf("Store = %q, want sqlite", cfg.Store)
	}
	if cfg.LivenessInterval() != 0 {
		t.Fatalf("LivenessInterval() = %v, want disabled", cfg.LivenessInterval())
	}
	if cfg.PollInterval() != 30*time.Second {
		t.Fatalf("PollInterval() = %v, want 30s", cfg.PollInterval())
	}
	if cfg.RetryInterval() != 500*time.Millisecond {
		t.Fatalf("RetryInterval() = %v, want default 500ms", cfg.RetryInterval())
	}
	if cfg.GeoID != "90000070" {
		t.Fatalf("GeoID = %q, want default", cfg.GeoID)
	}
	if got := cfg.ResolveStorePath("/cfg"); got != filepath.Join("/cfg", SQLiteFileName) {
		t.Fatalf("ResolveStorePath() = %q", got)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Store != "file" || cfg.Area != "local" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CLOCKEDIN_STORE", "memory")
	t.Setenv("CLOCKEDIN_RETRY_INTERVAL_MS", "250")
	t.Setenv("CLOCKEDIN_REQUESTS_PER_MINUTE", "not a number")

	cfg := DefaultConfig()
	if cfg.Store != "memory" {
		t.Fatalf("Store = %q, want memory", cfg.Store)
	}
	if cfg.RetryIntervalMS != 250 {
		t.Fatalf("RetryIntervalMS = %d, want 250", cfg.RetryIntervalMS)
	}
	if cfg.RequestsPerMinute != 20 {
		t.Fatalf("RequestsPerMinute = %d, want fallback 20", cfg.RequestsPerMinute)
	}
}

func TestInitAndLoadProxies(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CLOCKEDIN_CONFIG_DIR", dir)
	t.Setenv("CLOCKEDIN_PROXIES", "")

	created, err := Init()
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 created files, got %v", created)
	}
	again, err := Init()
	if err != nil || len(again) != 0 {
		t.Fatalf("second Init() = %v, %v; want nothing created", again, err)
	}

	proxies := "# comment\nhttp://a:1\n\nhttp://b:2\n"
	if err := os.WriteFile(filepath.Join(dir, ProxiesFileName), []byte(proxies), 0o644); err != nil {
		t.Fatalf("write proxies: %v", err)
	}
	got, err := LoadProxies("")
	if err != nil {
		t.Fatalf("LoadProxies() error = %v", err)
	}
	if len(got) != 2 || got[0] != "http://a:1" {
		t.Fatalf("unexpected proxies: %v", got)
	}

	got, _ = LoadProxies(" http://c:3 , ")
	if len(got) != 1 || got[0] != "http://c:3" {
		t.Fatalf("unexpected flag proxies: %v", got)
	}
}
