// Package prefs is the persisted key/value area holding the user's
// preferences, with change notifications.
package prefs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
)

// Area tags the storage area a store keeps its values in.
type Area string

const (
	AreaLocal Area = "local"
	AreaSync  Area = "sync"
)

// Well-known keys.
const (
	KeyCompanyTags = "companyTags"
	KeySearches    = "searches"
	KeySettings    = "settings"
)

var (
	ErrUnknownBackend = errors.New("unknown preference store backend")
	ErrEmptyKey       = errors.New("preference key is required")
)

// Change describes one key whose value changed. OldValue is nil when the
// key did not exist, NewValue is nil when it was deleted.
type Change struct {
	Key      string
	OldValue json.RawMessage
	NewValue json.RawMessage
	Area     Area
}

// Listener receives changes on whichever goroutine produced them.
type Listener func(Change)

// Store is a key/value preference area. Values are JSON documents.
type Store interface {
	Area() Area
	// Get returns nil, nil for a missing key.
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
	Subscribe(fn Listener) (cancel func())
}

// Watcher is implemented by stores that can notice writes made by other
// processes. Watch blocks until ctx is done.
type Watcher interface {
	Watch(ctx context.Context) error
}

type notifier struct {
	mu        sync.Mutex
	next      int
	listeners map[int]Listener
}

func (n *notifier) Subscribe(fn Listener) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.listeners == nil {
		n.listeners = map[int]Listener{}
	}
	id := n.next
	n.next++
	n.listeners[id] = fn
	return func() {
		n.mu.Lock()
		delete(n.listeners, id)
		n.mu.Unlock()
	}
}

func (n *notifier) notify(changes []Change) {
	if len(changes) == 0 {
		return
	}
	n.mu.Lock()
	ids := make([]int, 0, len(n.listeners))
	for id := range n.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, n.listeners[id])
	}
	n.mu.Unlock()

	for _, change := range changes {
		for _, fn := range listeners {
			fn(change)
		}
	}
}

// canonical re-encodes raw so equal documents compare equal byte for byte.
func canonical(raw json.RawMessage) (json.RawMessage, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	return json.Marshal(value)
}

// diff lists the keys that differ between two snapshots, sorted by key.
func diff(area Area, before, after map[string]json.RawMessage) []Change {
	keys := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var changes []Change
	for _, k := range sorted {
		old, hadOld := before[k]
		cur, hasCur := after[k]
		if hadOld == hasCur && bytes.Equal(old, cur) {
			continue
		}
		changes = append(changes, Change{Key: k, OldValue: old, NewValue: cur, Area: area})
	}
	return changes
}

func copySnapshot(in map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
