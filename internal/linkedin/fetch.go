package linkedin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/jimezsa/clockedin/internal/network"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when LinkedIn throttles the client.
var ErrRateLimited = errors.New("linkedin: rate limited")

const (
	defaultRequestsPerMinute = 20
	breakerTimeout           = 2 * time.Minute
	maxBodyBytes             = 8 << 20
)

// FetcherOptions tunes a Fetcher.
type FetcherOptions struct {
	// RequestsPerMinute caps outgoing requests. Zero uses the default,
	// negative disables the limit.
	RequestsPerMinute int
	Headers           map[string]string
	Logger            zerolog.Logger
}

// Fetcher downloads LinkedIn pages through a rate limiter and a circuit
// breaker that opens after repeated failures.
type Fetcher struct {
	client  network.Doer
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	headers map[string]string
	logger  zerolog.Logger
}

func NewFetcher(client network.Doer, opts FetcherOptions) *Fetcher {
	rpm := opts.RequestsPerMinute
	if rpm == 0 {
		rpm = defaultRequestsPerMinute
	}
	limit := rate.Inf
	if rpm > 0 {
		limit = rate.Every(time.Minute / time.Duration(rpm))
	}

	logger := opts.Logger.With().Str("component", "fetcher").Logger()
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "linkedin",
		MaxRequests: 1,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit state changed")
		},
	})

	return &Fetcher{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		breaker: breaker,
		headers: opts.Headers,
		logger:  logger,
	}
}

// Fetch returns the body of target.
func (f *Fetcher) Fetch(ctx context.Context, target string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}
	body, err := f.breaker.Execute(func() (interface{}, error) {
		return f.get(ctx, target)
	})
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", target, err)
	}
	return body.(string), nil
}

// FetchPage returns the guest result cards of searchURL starting at start.
func (f *Fetcher) FetchPage(ctx context.Context, searchURL string, start int) (string, error) {
	target, err := GuestPageURL(searchURL, start)
	if err != nil {
		return "", err
	}
	return f.Fetch(ctx, target)
}

func (f *Fetcher) get(ctx context.Context, target string) (string, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	applyHeaders(req, f.headers)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	f.logger.Debug().Str("url", target).Int("status", resp.StatusCode).Msg("fetched")
	if resp.StatusCode == 429 || resp.StatusCode == network.StatusRateLimited {
		return "", ErrRateLimited
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("http %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func applyHeaders(req *fhttp.Request, headers map[string]string) {
	defaults := map[string]string{
		"accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"accept-language": "en-US,en;q=0.9",
	}
	for key, value := range defaults {
		req.Header.Set(key, value)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
}
