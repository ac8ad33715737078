package worker

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter applies per-host rate limits so one run cannot hammer a source.
type Limiter struct {
	mu       sync.Mutex
	byHost   map[string]*rate.Limiter
	perHost  rate.Limit
	burst    int
}

// NewLimiter creates a limiter allowing requestsPerSecond per host.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		byHost:  make(map[string]*rate.Limiter),
		perHost: rate.Limit(requestsPerSecond),
		burst:   burst,
	}
}

// Wait blocks until the host of rawURL has clearance, or ctx is done.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	return l.hostLimiter(parsed.Host).Wait(ctx)
}

func (l *Limiter) hostLimiter(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.byHost[host]
	if !ok {
		lim = rate.NewLimiter(l.perHost, l.burst)
		l.byHost[host] = lim
	}
	return lim
}
