package prefs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const lockRetryDelay = 25 * time.Millisecond

// FileStore keeps all keys of one area in a single JSON object on disk.
// Writers from several processes are serialized with a lock file; the file
// itself is replaced atomically.
type FileStore struct {
	path   string
	area   Area
	lock   *flock.Flock
	logger zerolog.Logger

	mu    sync.Mutex
	cache map[string]json.RawMessage

	notifier
}

func NewFileStore(path string, area Area, logger zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	s := &FileStore{
		path:   path,
		area:   area,
		lock:   flock.New(path + ".lock"),
		logger: logger.With().Str("component", "prefs").Str("path", path).Logger(),
	}
	snapshot, err := s.read()
	if err != nil {
		return nil, err
	}
	s.cache = snapshot
	return s, nil
}

func (s *FileStore) Area() Area {
	return s.area
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snapshot, err := s.read()
	if err != nil {
		return nil, err
	}
	return snapshot[key], nil
}

func (s *FileStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	if key == "" {
		return ErrEmptyKey
	}
	value, err := canonical(value)
	if err != nil {
		return err
	}

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock %s: %w", s.lock.Path(), err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", s.lock.Path())
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn().Err(err).Msg("unlock failed")
		}
	}()

	s.mu.Lock()
	current, err := s.read()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	next := copySnapshot(current)
	if value == nil {
		delete(next, key)
	} else {
		next[key] = value
	}
	if err := s.write(next); err != nil {
		s.mu.Unlock()
		return err
	}
	before := s.cache
	s.cache = next
	s.mu.Unlock()

	s.notify(diff(s.area, before, next))
	return nil
}

// Watch reloads the file whenever it changes on disk and notifies
// listeners of every key that differs from the last known state.
func (s *FileStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return err
	}

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			s.Reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn().Err(err).Msg("watch error")
		}
	}
}

// Reload rereads the file and notifies listeners of any differences.
// Read failures are logged and leave the last known state in place.
func (s *FileStore) Reload() {
	s.mu.Lock()
	next, err := s.read()
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn().Err(err).Msg("reload failed")
		return
	}
	before := s.cache
	s.cache = next
	s.mu.Unlock()

	s.notify(diff(s.area, before, next))
}

// read parses the file leniently: JSON5 is accepted so the file can be
// edited by hand. A missing or blank file is an empty area.
func (s *FileStore) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	var decoded map[string]any
	if err := json5.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	snapshot := make(map[string]json.RawMessage, len(decoded))
	for key, value := range decoded {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("parse %s: key %q: %w", s.path, key, err)
		}
		snapshot[key] = raw
	}
	return snapshot, nil
}

func (s *FileStore) write(snapshot map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
