package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jimezsa/clockedin/internal/dom"
	"github.com/jimezsa/clockedin/internal/export"
	"github.com/jimezsa/clockedin/internal/filter"
	"github.com/jimezsa/clockedin/internal/linkedin"
	"github.com/jimezsa/clockedin/internal/loop"
	"github.com/jimezsa/clockedin/internal/models"
	"github.com/jimezsa/clockedin/internal/seen"
	"github.com/yosssi/gohtml"
)

type FilterCmd struct {
	Source  string `arg:"" help:"Saved jobs page (HTML file) or a linkedin.com/jobs/ URL."`
	Proxies string `help:"Comma-separated proxy URLs." env:"CLOCKEDIN_PROXIES"`
	HTMLOut string `name:"html-out" help:"Write the filtered page to this file."`
	SeenOptions
	OutputOptions
}

func (f *FilterCmd) Run(ctx *Context) error {
	if err := f.SeenOptions.validate(); err != nil {
		return err
	}
	format, err := resolveFormat(ctx, f.OutputOptions)
	if err != nil {
		return err
	}

	page, err := f.load(ctx)
	if err != nil {
		return err
	}

	store, release, err := ctx.OpenStore()
	if err != nil {
		return err
	}
	defer release()

	sched := loop.NewManual(time.Now())
	doc, err := dom.ParseString(page, sched)
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	flt := filter.New(doc, store, sched, ctx.Logger,
		filter.WithRetryInterval(ctx.Config.RetryInterval()),
		filter.WithLivenessInterval(0),
	)
	flt.Start(runCtx)
	sched.Drain()

	if flt.Watcher().State() != filter.StateObserving {
		ctx.UI.Warnf("No job list found in %s", f.Source)
	}

	jobs := linkedin.ParseJobs(doc.Selection())
	history, err := f.SeenOptions.history()
	if err != nil {
		return err
	}
	fresh := seen.Diff(jobs, history)
	if f.NewOnly {
		jobs = fresh
	}
	if jobs == nil {
		jobs = []models.Job{}
	}

	if strings.TrimSpace(f.HTMLOut) != "" {
		if err := writeFilteredPage(doc, f.HTMLOut); err != nil {
			return err
		}
	}

	out, closeOut, err := openOutput(ctx, f.OutputOptions)
	if err != nil {
		return err
	}
	defer closeOut()
	if err := export.WriteJobs(out, jobs, format, writeOptions(ctx, out, f.OutputOptions)); err != nil {
		return err
	}
	if err := f.SeenOptions.record(ctx, fresh); err != nil {
		return err
	}

	stats := flt.Stats()
	ctx.Logger.Debug().Int64("scans", stats.Scans).Int64("removed", stats.Removed).Msg("filter finished")
	fmt.Fprintf(ctx.Err, "removed=%d visible=%d\n", stats.Removed, len(jobs))
	return nil
}

func (f *FilterCmd) load(ctx *Context) (string, error) {
	source := strings.TrimSpace(f.Source)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		if !linkedin.IsJobsURL(source) {
			return "", linkedin.ErrNotJobsURL
		}
		fetcher, err := ctx.newFetcher(f.Proxies)
		if err != nil {
			return "", err
		}
		return fetcher.Fetch(context.Background(), source)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeFilteredPage(doc *dom.Document, path string) error {
	page, err := doc.HTML()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(gohtml.Format(page)), 0o644)
}
