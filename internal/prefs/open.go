package prefs

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Backends accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Options selects and configures a store.
type Options struct {
	Backend      string
	Path         string
	Area         Area
	PollInterval time.Duration
	Logger       zerolog.Logger
}

// Open builds the store named by opts.Backend. Callers should check the
// result for Watcher and io.Closer.
func Open(opts Options) (Store, error) {
	area := opts.Area
	if area == "" {
		area = AreaLocal
	}
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case BackendMemory:
		return NewMemoryStore(area), nil
	case BackendFile, "":
		return NewFileStore(opts.Path, area, opts.Logger)
	case BackendSQLite:
		return NewSQLiteStore(opts.Path, area, opts.PollInterval, opts.Logger)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, opts.Backend)
	}
}

// ParseArea maps a config value to an Area, defaulting to local.
func ParseArea(value string) Area {
	if strings.EqualFold(strings.TrimSpace(value), string(AreaSync)) {
		return AreaSync
	}
	return AreaLocal
}
