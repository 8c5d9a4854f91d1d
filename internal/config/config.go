package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const (
	DirName         = "clockedin"
	ConfigFileName  = "config.json"
	ProxiesFileName = "proxies.txt"
	StoreFileName   = "prefs.json"
	SQLiteFileName  = "prefs.db"

	envPrefix = "CLOCKEDIN_"
)

// Config holds the settings shared by every command.
type Config struct {
	Store              string `json:"store"`
	StorePath          string `json:"store_path"`
	Area               string `json:"area"`
	RetryIntervalMS    int    `json:"retry_interval_ms"`
	LivenessIntervalMS int    `json:"liveness_interval_ms"`
	PollIntervalS      int    `json:"poll_interval_s"`
	GeoID              string `json:"geo_id"`
	RequestsPerMinute  int    `json:"requests_per_minute"`
}

func DefaultConfig() Config {
	return Config{
		Store:              envString(envPrefix+"STORE", "file"),
		StorePath:          envString(envPrefix+"STORE_PATH", ""),
		Area:               envString(envPrefix+"AREA", "local"),
		RetryIntervalMS:    envInt(envPrefix+"RETRY_INTERVAL_MS", 500),
		LivenessIntervalMS: envInt(envPrefix+"LIVENESS_INTERVAL_MS", 2000),
		PollIntervalS:      envInt(envPrefix+"POLL_INTERVAL_S", 60),
		GeoID:              envString(envPrefix+"GEO_ID", "90000070"),
		RequestsPerMinute:  envInt(envPrefix+"REQUESTS_PER_MINUTE", 20),
	}
}

func (c Config) RetryInterval() time.Duration {
	return time.Duration(c.RetryIntervalMS) * time.Millisecond
}

// LivenessInterval is zero when the check is disabled.
func (c Config) LivenessInterval() time.Duration {
	if c.LivenessIntervalMS <= 0 {
		return 0
	}
	return time.Duration(c.LivenessIntervalMS) * time.Millisecond
}

func (c Config) PollInterval() time.Duration {
	if c.PollIntervalS <= 0 {
		return time.Minute
	}
	return time.Duration(c.PollIntervalS) * time.Second
}

// ResolveStorePath returns StorePath, or the default file for the
// configured backend inside dir.
func (c Config) ResolveStorePath(dir string) string {
	if strings.TrimSpace(c.StorePath) != "" {
		return c.StorePath
	}
	if strings.EqualFold(strings.TrimSpace(c.Store), "sqlite") {
		return filepath.Join(dir, SQLiteFileName)
	}
	return filepath.Join(dir, StoreFileName)
}

func ConfigDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(envPrefix + "CONFIG_DIR")); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

func ProxiesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ProxiesFileName), nil
}

func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadFile(path)
}

// LoadFile reads a JSON5 config over the defaults. A missing or empty file
// yields the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	if err := json5.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Init writes default config.json and proxies.txt if they don't already exist.
func Init() ([]string, error) {
	var created []string

	dir, err := ConfigDir()
	if err != nil {
		return created, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return created, err
	}

	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := writeConfig(configPath, DefaultConfig()); err != nil {
			return created, err
		}
		created = append(created, configPath)
	}

	proxiesPath := filepath.Join(dir, ProxiesFileName)
	if _, err := os.Stat(proxiesPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(proxiesPath, []byte(""), 0o644); err != nil {
			return created, err
		}
		created = append(created, proxiesPath)
	}

	return created, nil
}

func writeConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// LoadProxies returns proxies from the flag, then CLOCKEDIN_PROXIES, then
// proxies.txt.
func LoadProxies(flagValue string) ([]string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return splitCSV(flagValue), nil
	}

	if env := strings.TrimSpace(os.Getenv(envPrefix + "PROXIES")); env != "" {
		return splitCSV(env), nil
	}

	path, err := ProxiesPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var proxies []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxies = append(proxies, line)
	}
	return proxies, nil
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
