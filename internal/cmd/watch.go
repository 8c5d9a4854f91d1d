package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/clockedin/internal/dom"
	"github.com/jimezsa/clockedin/internal/export"
	"github.com/jimezsa/clockedin/internal/filter"
	"github.com/jimezsa/clockedin/internal/linkedin"
	"github.com/jimezsa/clockedin/internal/loop"
	"github.com/jimezsa/clockedin/internal/models"
	"github.com/jimezsa/clockedin/internal/prefs"
	"github.com/jimezsa/clockedin/internal/seen"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

const guestPageSize = 25

// watchShell is the page the fetched result cards are appended to.
const watchShell = `<!DOCTYPE html><html><head><title>clockedin</title></head><body><main id="main-content"><ul class="jobs-search__results-list"></ul></main></body></html>`

var errNoSavedSearch = errors.New("no saved LinkedIn search; pass a search ID or URL")

type WatchCmd struct {
	Target   string `arg:"" optional:"" help:"Saved search ID or linkedin.com/jobs/ URL. Defaults to the newest saved LinkedIn search."`
	Interval int    `help:"Seconds between polls (default from config)."`
	Pages    int    `help:"Result pages fetched per poll." default:"1"`
	Once     bool   `help:"Poll once, print and exit."`
	Proxies  string `help:"Comma-separated proxy URLs." env:"CLOCKEDIN_PROXIES"`
	SeenOptions
	OutputOptions
}

func (w *WatchCmd) Run(ctx *Context) error {
	if err := w.SeenOptions.validate(); err != nil {
		return err
	}
	if w.Pages <= 0 {
		return fmt.Errorf("--pages must be positive")
	}
	format, err := resolveFormat(ctx, w.OutputOptions)
	if err != nil {
		return err
	}

	store, release, err := ctx.OpenStore()
	if err != nil {
		return err
	}
	defer release()

	searchURL, err := resolveWatchTarget(context.Background(), store, w.Target)
	if err != nil {
		return err
	}
	fetcher, err := ctx.newFetcher(w.Proxies)
	if err != nil {
		return err
	}

	history, err := w.SeenOptions.history()
	if err != nil {
		return err
	}
	if !w.NewOnly {
		history = nil
	}

	out, closeOut, err := openOutput(ctx, w.OutputOptions)
	if err != nil {
		return err
	}
	defer closeOut()

	interval := ctx.Config.PollInterval()
	if w.Interval > 0 {
		interval = time.Duration(w.Interval) * time.Second
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	runCtx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	lp := loop.New(ctx.Logger)
	doc, err := dom.ParseString(watchShell, lp)
	if err != nil {
		return err
	}
	feed, err := newPageFeed(doc, ctx.Logger)
	if err != nil {
		return err
	}
	printer := &jobPrinter{
		out:     out,
		format:  format,
		opts:    writeOptions(ctx, out, w.OutputOptions),
		tracker: seen.NewTracker(history),
		record:  func(jobs []models.Job) error { return w.SeenOptions.record(ctx, jobs) },
		logger:  ctx.Logger,
	}

	g, gctx := errgroup.WithContext(runCtx)
	flt := filter.New(doc, store, lp, ctx.Logger,
		filter.WithRetryInterval(ctx.Config.RetryInterval()),
		filter.WithLivenessInterval(ctx.Config.LivenessInterval()),
		filter.WithScanHook(printer.report),
	)
	flt.Start(gctx)

	g.Go(func() error { return lp.Run(gctx) })
	if watcher, ok := store.(prefs.Watcher); ok {
		g.Go(func() error { return watcher.Watch(gctx) })
	}
	g.Go(func() error {
		p := &poller{
			fetcher:   fetcher,
			loop:      lp,
			feed:      feed,
			searchURL: searchURL,
			pages:     w.Pages,
			logger:    ctx.Logger,
		}
		if w.Once {
			defer cancel()
			return p.poll(gctx)
		}
		return p.run(gctx, interval)
	})

	ctx.Logger.Info().Str("url", searchURL).Dur("interval", interval).Msg("watching")
	if err := g.Wait(); err != nil {
		return err
	}
	stats := flt.Stats()
	fmt.Fprintf(ctx.Err, "removed=%d reported=%d\n", stats.Removed, printer.reported)
	return nil
}

// resolveWatchTarget turns the positional argument into a jobs search URL.
func resolveWatchTarget(ctx context.Context, store prefs.Store, target string) (string, error) {
	target = strings.TrimSpace(target)
	if linkedin.IsJobsURL(target) {
		return target, nil
	}
	searches, err := prefs.LoadSearches(ctx, store)
	if err != nil {
		return "", err
	}
	for _, search := range searches {
		if target == "" && search.Kind != models.KindLinkedIn {
			continue
		}
		if target != "" && search.ID != target {
			continue
		}
		if !linkedin.IsJobsURL(search.URL) {
			return "", fmt.Errorf("saved search %s: %w", search.ID, linkedin.ErrNotJobsURL)
		}
		return search.URL, nil
	}
	if target == "" {
		return "", errNoSavedSearch
	}
	return "", fmt.Errorf("no saved search with id %q", target)
}

type poller struct {
	fetcher   *linkedin.Fetcher
	loop      *loop.Loop
	feed      *pageFeed
	searchURL string
	pages     int
	logger    zerolog.Logger
}

func (p *poller) run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := p.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Warn().Err(err).Msg("poll failed")
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// poll fetches up to p.pages result pages and feeds them to the document.
// It returns once every fed card has been through a filter pass.
func (p *poller) poll(ctx context.Context) error {
	for page := 0; page < p.pages; page++ {
		body, err := p.fetcher.FetchPage(ctx, p.searchURL, page*guestPageSize)
		if err != nil {
			return err
		}
		var cards, added int
		var feedErr error
		if err := p.loop.Call(ctx, func() { cards, added, feedErr = p.feed.add(body) }); err != nil {
			return nil
		}
		if feedErr != nil {
			return feedErr
		}
		p.logger.Debug().Int("page", page).Int("cards", cards).Int("added", added).Msg("page fed")
		if cards == 0 {
			break
		}
	}
	// Mutation records queued by the feed are delivered before this runs.
	_ = p.loop.Call(ctx, func() {})
	return nil
}

// pageFeed appends freshly fetched cards to the watched list the way the
// site appends them while scrolling. Cards it already appended once are
// skipped, including ones the filter has since removed.
type pageFeed struct {
	doc       *dom.Document
	container *html.Node
	keys      map[string]struct{}
	logger    zerolog.Logger
}

func newPageFeed(doc *dom.Document, logger zerolog.Logger) (*pageFeed, error) {
	container := doc.First(linkedin.ContainerSelectors...)
	if container == nil {
		return nil, errors.New("watch page has no job list")
	}
	return &pageFeed{
		doc:       doc,
		container: container,
		keys:      map[string]struct{}{},
		logger:    logger.With().Str("component", "feed").Logger(),
	}, nil
}

// add appends the unseen cards of fragment. It returns how many cards the
// fragment held and how many were appended. Runs on the loop.
func (p *pageFeed) add(fragment string) (int, int, error) {
	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return 0, 0, err
	}

	var markup strings.Builder
	cards := linkedin.Cards(parsed.Selection)
	added := 0
	cards.Each(func(_ int, card *goquery.Selection) {
		job, ok := linkedin.JobFromCard(card)
		if !ok {
			return
		}
		key, ok := seen.Key(job)
		if !ok {
			return
		}
		if _, dup := p.keys[key]; dup {
			return
		}
		item := card
		if li := card.Closest("li"); li.Length() > 0 {
			item = li
		}
		outer, err := goquery.OuterHtml(item)
		if err != nil {
			p.logger.Debug().Err(err).Msg("render card")
			return
		}
		p.keys[key] = struct{}{}
		markup.WriteString(outer)
		added++
	})
	if added == 0 {
		return cards.Length(), 0, nil
	}
	if _, err := p.doc.Append(p.container, markup.String()); err != nil {
		return cards.Length(), 0, err
	}
	return cards.Length(), added, nil
}

// jobPrinter reports the listings still visible after each filter pass,
// once each.
type jobPrinter struct {
	out      io.Writer
	format   export.Format
	opts     export.WriteOptions
	tracker  *seen.Tracker
	record   func([]models.Job) error
	logger   zerolog.Logger
	reported int
}

func (p *jobPrinter) report(root *html.Node, _ int) {
	jobs := linkedin.ParseJobs(goquery.NewDocumentFromNode(root).Selection)
	fresh := p.tracker.Fresh(jobs)
	if len(fresh) == 0 {
		return
	}
	p.reported += len(fresh)
	if err := export.WriteJobs(p.out, fresh, p.format, p.opts); err != nil {
		p.logger.Warn().Err(err).Msg("write jobs")
	}
	if err := p.record(fresh); err != nil {
		p.logger.Warn().Err(err).Msg("update seen history")
	}
}
