package prefs

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore keeps values in process memory.
type MemoryStore struct {
	area Area

	mu   sync.Mutex
	data map[string]json.RawMessage

	notifier
}

func NewMemoryStore(area Area) *MemoryStore {
	return &MemoryStore{area: area, data: map[string]json.RawMessage{}}
}

func (s *MemoryStore) Area() Area {
	return s.area
}

func (s *MemoryStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return append(json.RawMessage(nil), value...), nil
}

// Set stores value and notifies listeners when it differs from the
// previous one. A nil value deletes the key.
func (s *MemoryStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := canonical(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	old, existed := s.data[key]
	if value == nil {
		delete(s.data, key)
	} else {
		s.data[key] = value
	}
	s.mu.Unlock()

	if existed == (value != nil) && bytes.Equal(old, value) {
		return nil
	}
	s.notify([]Change{{Key: key, OldValue: old, NewValue: value, Area: s.area}})
	return nil
}
