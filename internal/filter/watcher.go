package filter

import (
	"time"

	"github.com/jimezsa/clockedin/internal/dom"
	"github.com/jimezsa/clockedin/internal/linkedin"
	"github.com/jimezsa/clockedin/internal/loop"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// State is the watcher's position in its lifecycle.
type State int

const (
	StateSearching State = iota
	StateObserving
)

func (s State) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateObserving:
		return "observing"
	default:
		return "unknown"
	}
}

// Locator finds the listing container in doc, or returns nil.
type Locator func(doc *dom.Document) *html.Node

// LocateContainer picks the first match of linkedin.ContainerSelectors.
func LocateContainer(doc *dom.Document) *html.Node {
	return doc.First(linkedin.ContainerSelectors...)
}

// Watcher finds the listing container, retrying until it shows up, and
// then rescans it on every batch of changes underneath it.
//
// All methods run on the scheduler.
type Watcher struct {
	doc      *dom.Document
	sched    loop.Scheduler
	locate   Locator
	scan     func(root *html.Node) int
	retry    time.Duration
	liveness time.Duration
	logger   zerolog.Logger

	state     State
	container *html.Node
	unobserve func()
	stopTimer func() bool
	attempts  int
	stopped   bool
}

func newWatcher(doc *dom.Document, sched loop.Scheduler, opts Options, scan func(root *html.Node) int, logger zerolog.Logger) *Watcher {
	locate := opts.Locator
	if locate == nil {
		locate = LocateContainer
	}
	return &Watcher{
		doc:      doc,
		sched:    sched,
		locate:   locate,
		scan:     scan,
		retry:    opts.RetryInterval,
		liveness: opts.LivenessInterval,
		logger:   logger.With().Str("component", "watcher").Logger(),
	}
}

// Start enters Searching and makes the first lookup.
func (w *Watcher) Start() {
	w.state = StateSearching
	w.attempt()
}

func (w *Watcher) State() State {
	return w.state
}

// Container returns the observed container, nil while searching.
func (w *Watcher) Container() *html.Node {
	return w.container
}

// Attempts counts container lookups made while searching.
func (w *Watcher) Attempts() int {
	return w.attempts
}

// Locate returns the observed container while it is attached, otherwise
// the result of a fresh lookup.
func (w *Watcher) Locate() *html.Node {
	if w.container != nil && w.doc.Attached(w.container) {
		return w.container
	}
	return w.locate(w.doc)
}

// Stop drops the subscription and any armed timer.
func (w *Watcher) Stop() {
	w.stopped = true
	w.disarm()
	if w.unobserve != nil {
		w.unobserve()
		w.unobserve = nil
	}
}

func (w *Watcher) attempt() {
	w.stopTimer = nil
	if w.stopped {
		return
	}
	w.attempts++
	container := w.locate(w.doc)
	if container == nil {
		w.logger.Debug().Int("attempt", w.attempts).Msg("listing container not found")
		w.stopTimer = w.sched.AfterFunc(w.retry, w.attempt)
		return
	}
	w.observe(container)
}

func (w *Watcher) observe(container *html.Node) {
	w.state = StateObserving
	w.container = container
	w.logger.Info().Int("attempts", w.attempts).Msg("observing listing container")

	w.scan(container)
	w.unobserve = w.doc.Observe(container, func([]dom.Mutation) {
		if w.stopped || w.container != container {
			return
		}
		w.scan(container)
	})
	w.armLiveness()
}

func (w *Watcher) armLiveness() {
	if w.liveness <= 0 {
		return
	}
	w.stopTimer = w.sched.AfterFunc(w.liveness, w.checkLiveness)
}

func (w *Watcher) checkLiveness() {
	w.stopTimer = nil
	if w.stopped || w.state != StateObserving {
		return
	}
	if w.doc.Attached(w.container) {
		w.armLiveness()
		return
	}

	w.logger.Info().Msg("listing container detached, searching again")
	if w.unobserve != nil {
		w.unobserve()
		w.unobserve = nil
	}
	w.container = nil
	w.state = StateSearching
	w.attempt()
}

func (w *Watcher) disarm() {
	if w.stopTimer != nil {
		w.stopTimer()
		w.stopTimer = nil
	}
}
