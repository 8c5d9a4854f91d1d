// Package loop provides the single-threaded scheduler every document
// operation runs on.
package loop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler runs callbacks one at a time on its owner. Post and AfterFunc
// may be called from any goroutine.
type Scheduler interface {
	Post(fn func())
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

// Loop is a Scheduler backed by one goroutine, the one calling Run.
type Loop struct {
	logger zerolog.Logger

	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
}

func New(logger zerolog.Logger) *Loop {
	return &Loop{
		logger: logger.With().Str("component", "loop").Logger(),
		wake:   make(chan struct{}, 1),
	}
}

// Post queues fn. Callbacks posted after Run returned are dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// AfterFunc posts fn once d has elapsed. The returned stop reports whether
// the timer was stopped before it fired.
func (l *Loop) AfterFunc(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, func() { l.Post(fn) })
	return t.Stop
}

// Run executes posted callbacks until ctx is done. It returns nil on
// cancellation so it can sit in an errgroup next to other workers.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		l.mu.Lock()
		l.closed = true
		l.queue = nil
		l.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.wake:
		}

		for {
			batch := l.take()
			if len(batch) == 0 {
				break
			}
			for _, fn := range batch {
				if ctx.Err() != nil {
					return nil
				}
				l.run(fn)
			}
		}
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) take() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.queue
	l.queue = nil
	return batch
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error().Str("panic", fmt.Sprint(r)).Msg("callback panicked")
		}
	}()
	fn()
}
