// Package filter hides job listings from blocked companies in a live
// document and keeps doing so as listings arrive and the block list
// changes.
package filter

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jimezsa/clockedin/internal/dom"
	"github.com/jimezsa/clockedin/internal/loop"
	"github.com/jimezsa/clockedin/internal/models"
	"github.com/jimezsa/clockedin/internal/prefs"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

const (
	DefaultRetryInterval    = 500 * time.Millisecond
	DefaultLivenessInterval = 2 * time.Second

	storeReadTimeout = 5 * time.Second
)

// Options tunes a Filter.
type Options struct {
	RetryInterval time.Duration
	// LivenessInterval is how often the observed container is checked for
	// detachment. Zero disables the check.
	LivenessInterval time.Duration
	Locator          Locator
	// Area is where the block list lives. Empty means the store's area.
	Area prefs.Area
	// OnScan runs after every scan pass with the scanned root.
	OnScan func(root *html.Node, removed int)
}

type Option func(*Options)

func WithRetryInterval(d time.Duration) Option {
	return func(o *Options) { o.RetryInterval = d }
}

func WithLivenessInterval(d time.Duration) Option {
	return func(o *Options) { o.LivenessInterval = d }
}

func WithLocator(fn Locator) Option {
	return func(o *Options) { o.Locator = fn }
}

func WithArea(area prefs.Area) Option {
	return func(o *Options) { o.Area = area }
}

func WithScanHook(fn func(root *html.Node, removed int)) Option {
	return func(o *Options) { o.OnScan = fn }
}

// Stats are running totals, safe to read from any goroutine.
type Stats struct {
	Scans   int64
	Removed int64
}

// Filter wires the scanner, watcher and bridge over one document.
type Filter struct {
	doc     *dom.Document
	store   prefs.Store
	sched   loop.Scheduler
	opts    Options
	logger  zerolog.Logger
	scanner *Scanner
	watcher *Watcher
	bridge  *Bridge

	ctx         context.Context
	unsubscribe func()
	scans       atomic.Int64
	removed     atomic.Int64
}

func New(doc *dom.Document, store prefs.Store, sched loop.Scheduler, logger zerolog.Logger, opts ...Option) *Filter {
	o := Options{
		RetryInterval:    DefaultRetryInterval,
		LivenessInterval: DefaultLivenessInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = DefaultRetryInterval
	}
	if o.Area == "" {
		o.Area = store.Area()
	}

	logger = logger.With().Str("area", string(o.Area)).Logger()
	f := &Filter{
		doc:     doc,
		store:   store,
		sched:   sched,
		opts:    o,
		logger:  logger.With().Str("component", "filter").Logger(),
		scanner: NewScanner(logger),
		ctx:     context.Background(),
	}
	f.watcher = newWatcher(doc, sched, o, f.scanFromStore, logger)
	f.bridge = NewBridge(o.Area, sched, f.scanWith)
	return f
}

// Start subscribes to the store and posts the watcher's first lookup.
// Everything is torn down once ctx is done.
func (f *Filter) Start(ctx context.Context) {
	f.ctx = ctx
	f.unsubscribe = f.bridge.Attach(f.store)
	f.sched.Post(f.watcher.Start)
	context.AfterFunc(ctx, func() { f.sched.Post(f.stop) })
}

// Watcher exposes the state machine, for callers running on the loop.
func (f *Filter) Watcher() *Watcher {
	return f.watcher
}

func (f *Filter) Stats() Stats {
	return Stats{Scans: f.scans.Load(), Removed: f.removed.Load()}
}

// Rescan reads the block list and scans the current container now.
func (f *Filter) Rescan() int {
	root := f.watcher.Locate()
	if root == nil {
		return 0
	}
	return f.scanFromStore(root)
}

func (f *Filter) scanFromStore(root *html.Node) int {
	ctx, cancel := context.WithTimeout(f.ctx, storeReadTimeout)
	defer cancel()

	list, err := prefs.LoadBlockList(ctx, f.store)
	if err != nil {
		f.logger.Warn().Err(err).Msg("read block list")
		return 0
	}
	return f.run(root, list)
}

func (f *Filter) scanWith(list models.BlockList) {
	root := f.watcher.Locate()
	if root == nil {
		f.logger.Debug().Msg("block list changed before any container was found")
		return
	}
	f.run(root, list)
}

func (f *Filter) run(root *html.Node, list models.BlockList) int {
	removed := f.scanner.Scan(f.doc, root, list.Names())
	f.scans.Add(1)
	f.removed.Add(int64(removed))
	if f.opts.OnScan != nil {
		f.opts.OnScan(root, removed)
	}
	return removed
}

func (f *Filter) stop() {
	if f.unsubscribe != nil {
		f.unsubscribe()
		f.unsubscribe = nil
	}
	f.watcher.Stop()
	f.logger.Debug().Msg("filter stopped")
}
