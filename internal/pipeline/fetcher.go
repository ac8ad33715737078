package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cityfeed/cityfeed/internal/cache"
	"github.com/cityfeed/cityfeed/internal/logger"
	"github.com/cityfeed/cityfeed/internal/metrics"
	"github.com/cityfeed/cityfeed/internal/model"
	"github.com/cityfeed/cityfeed/internal/util"
	"github.com/cityfeed/cityfeed/internal/worker"
)

// FetchError classifies a fetch failure. Transient failures are retried
// within the attempt budget; once the budget is spent the error escalates
// to permanent.
type FetchError struct {
	URL       string
	Status    int
	Transient bool
	Err       error
}

func (e *FetchError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: %s failure, status %d: %v", e.URL, kind, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s failure: %v", e.URL, kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Status codes retried with backoff; everything else in 4xx/5xx fails
// permanently on the first attempt.
var retryableStatus = map[int]struct{}{
	http.StatusTooManyRequests:     {},
	http.StatusInternalServerError: {},
	http.StatusBadGateway:          {},
	http.StatusServiceUnavailable:  {},
	http.StatusGatewayTimeout:      {},
}

// fetchSleep is swapped out in tests.
var fetchSleep = time.Sleep

// Fetcher is the retrying HTTP client shared by one pipeline. It is built
// from configuration, never a process-wide session, and is safe for reuse
// across runs.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	maxRetries int
	baseWait   time.Duration
	limiter    *worker.Limiter
	robots     *util.RobotsChecker
	respCache  cache.Cache
	cacheTTL   time.Duration
}

// NewFetcher builds a fetcher from the HTTP configuration.
func NewFetcher(cfg model.HTTPConfig) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("stopped after 5 redirects")
				}
				return nil
			},
		},
		userAgent:  cfg.UserAgent,
		maxBytes:   cfg.MaxBodyBytes,
		maxRetries: cfg.MaxRetries,
		baseWait:   cfg.RetryBaseWait,
	}
	if f.maxRetries <= 0 {
		f.maxRetries = 3
	}
	if f.baseWait <= 0 {
		f.baseWait = 500 * time.Millisecond
	}
	if f.maxBytes <= 0 {
		f.maxBytes = 2_000_000
	}
	if cfg.RatePerHost > 0 {
		f.limiter = worker.NewLimiter(cfg.RatePerHost, cfg.RateBurst)
	}
	if cfg.RespectRobots {
		f.robots = util.NewRobotsChecker(cfg.UserAgent, cfg.Timeout)
	}
	if cfg.CacheTTL > 0 {
		f.respCache = cache.NewMemory(cfg.CacheTTL)
		f.cacheTTL = cfg.CacheTTL
	}
	return f
}

// FetchPage retrieves an HTML page with retry and backoff. extraHeaders lets
// an adapter add source-specific headers (referer, language) on top of the
// defaults.
func (f *Fetcher) FetchPage(ctx context.Context, rawURL string, extraHeaders map[string]string) (string, error) {
	if f.respCache != nil {
		if body, ok := f.respCache.Get(cache.Key(rawURL)); ok {
			return string(body), nil
		}
	}

	if f.robots != nil && !f.robots.Allowed(ctx, rawURL) {
		return "", &FetchError{URL: rawURL, Transient: false, Err: fmt.Errorf("disallowed by robots.txt")}
	}

	body, err := f.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", f.userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9,it;q=0.8")
		for k, v := range extraHeaders {
			req.Header.Set(k, v)
		}
		return req, nil
	}, rawURL)
	if err != nil {
		return "", err
	}

	if f.respCache != nil {
		f.respCache.Set(cache.Key(rawURL), body, f.cacheTTL)
	}
	return string(body), nil
}

// Post sends a form body (the Overpass query) with the same retry policy.
// Responses are never cached.
func (f *Fetcher) Post(ctx context.Context, rawURL, body string) ([]byte, error) {
	return f.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", f.userAgent)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}, rawURL)
}

func (f *Fetcher) do(ctx context.Context, build func() (*http.Request, error), rawURL string) ([]byte, error) {
	var lastErr *FetchError
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx, rawURL); err != nil {
				return nil, &FetchError{URL: rawURL, Transient: false, Err: err}
			}
		}

		req, err := build()
		if err != nil {
			return nil, &FetchError{URL: rawURL, Transient: false, Err: err}
		}

		body, ferr := f.attempt(req, rawURL)
		if ferr == nil {
			return body, nil
		}
		lastErr = ferr
		if !ferr.Transient {
			return nil, ferr
		}
		if attempt < f.maxRetries {
			metrics.FetchRetries.Inc()
			wait := f.baseWait << (attempt - 1)
			logger.Debug("retrying fetch",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(ferr))
			fetchSleep(wait)
		}
	}

	// Retry budget spent: the failure escalates to permanent.
	return nil, &FetchError{
		URL:       rawURL,
		Status:    lastErr.Status,
		Transient: false,
		Err:       fmt.Errorf("retry budget exhausted: %w", lastErr.Err),
	}
}

func (f *Fetcher) attempt(req *http.Request, rawURL string) ([]byte, *FetchError) {
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Transient: isTransientNetErr(err), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, transient := retryableStatus[resp.StatusCode]
		return nil, &FetchError{
			URL:       rawURL,
			Status:    resp.StatusCode,
			Transient: transient,
			Err:       fmt.Errorf("unexpected status: %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Transient: false, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// isTransientNetErr treats connection-level failures as retryable. Request
// construction and TLS trust problems are not.
func isTransientNetErr(err error) bool {
	msg := err.Error()
	for _, marker := range []string{
		"connection reset",
		"connection refused",
		"broken pipe",
		"EOF",
		"timeout",
		"deadline exceeded",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
