package linkedin

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

type fakeDoer struct {
	status int
	body   string
	calls  int
	last   *fhttp.Request
}

func (d *fakeDoer) Do(req *fhttp.Request) (*fhttp.Response, error) {
	d.calls++
	d.last = req
	return &fhttp.Response{
		StatusCode: d.status,
		Body:       io.NopCloser(strings.NewReader(d.body)),
	}, nil
}

func newTestFetcher(doer *fakeDoer) *Fetcher {
	return NewFetcher(doer, FetcherOptions{RequestsPerMinute: -1, Logger: zerolog.Nop()})
}

func TestFetchPage(t *testing.T) {
	doer := &fakeDoer{status: 200, body: "<li>card</li>"}
	f := newTestFetcher(doer)

	body, err := f.FetchPage(context.Background(), "https://www.linkedin.com/jobs/search/?keywords=go", 0)
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if body != "<li>card</li>" {
		t.Fatalf("unexpected body: %q", body)
	}
	if got := doer.last.URL.Path; got != guestAPIPath {
		t.Fatalf("unexpected request path: %q", got)
	}
	if got := doer.last.Header.Get("accept-language"); got != "en-US,en;q=0.9" {
		t.Fatalf("unexpected accept-language: %q", got)
	}
}

func TestFetchPageRejectsForeignURL(t *testing.T) {
	doer := &fakeDoer{status: 200}
	f := newTestFetcher(doer)
	if _, err := f.FetchPage(context.Background(), "https://example.com/jobs/", 0); !errors.Is(err, ErrNotJobsURL) {
		t.Fatalf("expected ErrNotJobsURL, got %v", err)
	}
	if doer.calls != 0 {
		t.Fatalf("expected no request, got %d", doer.calls)
	}
}

func TestFetchRateLimited(t *testing.T) {
	doer := &fakeDoer{status: 999}
	f := newTestFetcher(doer)
	if _, err := f.Fetch(context.Background(), "https://www.linkedin.com/jobs/search/"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestFetchBreakerOpensAfterFailures(t *testing.T) {
	doer := &fakeDoer{status: 500}
	f := newTestFetcher(doer)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.Fetch(ctx, "https://www.linkedin.com/jobs/search/"); err == nil {
			t.Fatalf("expected error on attempt %d", i)
		}
	}
	if _, err := f.Fetch(ctx, "https://www.linkedin.com/jobs/search/"); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if doer.calls != 3 {
		t.Fatalf("expected 3 upstream calls, got %d", doer.calls)
	}
}

func TestFetchHonorsCanceledContext(t *testing.T) {
	doer := &fakeDoer{status: 200}
	f := NewFetcher(doer, FetcherOptions{RequestsPerMinute: 1, Logger: zerolog.Nop()})
	ctx := context.Background()
	if _, err := f.Fetch(ctx, "https://www.linkedin.com/jobs/search/"); err != nil {
		t.Fatalf("first Fetch() error = %v", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := f.Fetch(canceled, "https://www.linkedin.com/jobs/search/"); err == nil {
		t.Fatalf("expected error from canceled context")
	}
	if doer.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", doer.calls)
	}
}
