// Package pipeline orchestrates one ingestion run: resolve the source and
// city, fetch, extract candidates, deduplicate, and persist draft
// submissions under a tracked run record.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cityfeed/cityfeed/internal/extract/adapters"
	"github.com/cityfeed/cityfeed/internal/logger"
	"github.com/cityfeed/cityfeed/internal/metrics"
	"github.com/cityfeed/cityfeed/internal/model"
	"github.com/cityfeed/cityfeed/internal/store"
	"github.com/cityfeed/cityfeed/internal/taxonomy"
)

// ErrUnknownSource is returned when no adapter is registered under the
// requested source name.
var ErrUnknownSource = errors.New("unknown source")

// headerProvider is implemented by adapters whose pages need extra request
// headers beyond the defaults.
type headerProvider interface {
	ExtraHeaders() map[string]string
}

// Summary reports the outcome of one completed run.
type Summary struct {
	RunID    string `json:"run_id"`
	Source   string `json:"source"`
	City     string `json:"city"`
	URL      string `json:"url,omitempty"`
	Found    int    `json:"found"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
	Errors   int    `json:"errors"`
}

// Pipeline is the ingestion orchestrator. One pipeline serves the whole
// process; runs for distinct (source, city) pairs may execute concurrently,
// runs for the same pair are rejected while one is in flight.
type Pipeline struct {
	store    *store.Store
	fetcher  *Fetcher
	overpass *OverpassClient
	registry *adapters.Registry
	taxonomy *taxonomy.Resolver
	leases   *leaseTable
	radius   int

	// now is replaced in tests that pin date arithmetic.
	now func() time.Time
}

// New wires a pipeline from configuration.
func New(cfg *model.Config, s *store.Store) *Pipeline {
	fetcher := NewFetcher(cfg.HTTP)
	return &Pipeline{
		store:    s,
		fetcher:  fetcher,
		overpass: NewOverpassClient(fetcher, cfg.Overpass),
		registry: adapters.NewRegistry(),
		taxonomy: taxonomy.NewResolver(s),
		leases:   newLeaseTable(),
		radius:   cfg.Overpass.RadiusMeters,
		now:      time.Now,
	}
}

// Sources lists the registered source names.
func (p *Pipeline) Sources() []string { return p.registry.Names() }

// Ingest executes one run for (source, city). rawURL is the page to scrape
// and is ignored for geodata sources. Pre-run failures (unknown source,
// unknown city, invalid URL, concurrent run) return before any run record
// is written; failures after the run opens close it as failed.
func (p *Pipeline) Ingest(ctx context.Context, sourceName, citySlug, rawURL string) (*Summary, error) {
	kind, ok := p.registry.Kind(sourceName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, sourceName)
	}

	city, err := p.store.ResolveCityBySlug(citySlug)
	if err != nil {
		return nil, err
	}

	switch kind {
	case model.SourceKindScrape:
		return p.ingestScrape(ctx, sourceName, city, rawURL)
	case model.SourceKindGeodata:
		return p.ingestGeodata(ctx, sourceName, city)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, sourceName)
	}
}

func (p *Pipeline) ingestScrape(ctx context.Context, sourceName string, city model.City, rawURL string) (*Summary, error) {
	adapter, _ := p.registry.Page(sourceName)

	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("source %q requires a URL", sourceName)
	}
	if err := adapter.ValidateURL(rawURL); err != nil {
		return nil, err
	}

	// Scrape sources must be configured ahead of time; only geodata sources
	// self-register.
	source, err := p.store.GetSourceByName(sourceName)
	if err != nil {
		return nil, err
	}

	if err := p.leases.acquire(sourceName, city.Slug); err != nil {
		return nil, err
	}
	defer p.leases.release(sourceName, city.Slug)

	tracker := NewRunTracker(p.store, sourceName)
	run, err := tracker.Start(source.ID, city.ID)
	if err != nil {
		return nil, err
	}

	summary, err := p.runScrape(ctx, adapter, source, city, rawURL, run.ID)
	if err != nil {
		tracker.Fail(run.ID, err)
		return nil, err
	}
	if err := tracker.Succeed(run.ID); err != nil {
		return nil, err
	}
	summary.RunID = run.ID.String()
	return summary, nil
}

func (p *Pipeline) runScrape(ctx context.Context, adapter adapters.PageAdapter, source model.Source, city model.City, rawURL string, runID uuid.UUID) (*Summary, error) {
	var headers map[string]string
	if hp, ok := adapter.(headerProvider); ok {
		headers = hp.ExtraHeaders()
	}

	body, err := p.fetcher.FetchPage(ctx, rawURL, headers)
	if err != nil {
		return nil, err
	}
	doc, err := adapters.ParseHTML(body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	now := p.now()
	candidates := adapter.Extract(doc, rawURL, city, now)

	var categoryID *uuid.UUID
	if hinter, ok := adapter.(adapters.EventCategoryHinter); ok {
		slug := hinter.EventCategorySlug(rawURL)
		id, err := p.taxonomy.ResolveEvent(slug)
		if err != nil {
			return nil, err
		}
		categoryID = id
	}

	deduper, err := LoadDeduper(p.store, source.Name, city.ID)
	if err != nil {
		return nil, err
	}

	writer := NewWriter(p.store, source, city, runID)
	enricher, _ := adapter.(adapters.DetailEnricher)

	summary := &Summary{Source: source.Name, City: city.Slug, URL: rawURL, Found: len(candidates)}
	for i := range candidates {
		cand := candidates[i]
		if cand.Title == "" {
			summary.Skipped++
			metrics.CandidatesTotal.WithLabelValues(source.Name, "skipped").Inc()
			continue
		}
		if deduper.Seen(cand.SourceURL) {
			summary.Skipped++
			metrics.CandidatesTotal.WithLabelValues(source.Name, "skipped").Inc()
			continue
		}

		if enricher != nil && cand.SourceURL != rawURL {
			p.enrich(ctx, enricher, &cand, city, now, headers)
		}

		if err := writer.WriteEvent(cand, categoryID, adapter.Confidence()); err != nil {
			logger.Error("persisting candidate",
				zap.String("source", source.Name),
				zap.String("url", cand.SourceURL),
				zap.Error(err))
			summary.Errors++
			metrics.CandidatesTotal.WithLabelValues(source.Name, "error").Inc()
			continue
		}
		deduper.Add(cand.SourceURL)
		summary.Inserted++
		metrics.CandidatesTotal.WithLabelValues(source.Name, "inserted").Inc()
	}
	return summary, nil
}

// enrich fetches the candidate's own detail page and lets the adapter fill
// gaps. Enrichment failure never fails the candidate.
func (p *Pipeline) enrich(ctx context.Context, enricher adapters.DetailEnricher, cand *model.CandidateEvent, city model.City, now time.Time, headers map[string]string) {
	body, err := p.fetcher.FetchPage(ctx, cand.SourceURL, headers)
	if err != nil {
		logger.Debug("detail fetch failed",
			zap.String("url", cand.SourceURL),
			zap.Error(err))
		return
	}
	doc, err := adapters.ParseHTML(body)
	if err != nil {
		return
	}
	enricher.Enrich(doc, cand, city, now)
}

func (p *Pipeline) ingestGeodata(ctx context.Context, sourceName string, city model.City) (*Summary, error) {
	adapter, _ := p.registry.Geo(sourceName)

	source, err := p.store.ResolveOrCreateSource(sourceName, model.SourceKindGeodata)
	if err != nil {
		return nil, err
	}

	if err := p.leases.acquire(sourceName, city.Slug); err != nil {
		return nil, err
	}
	defer p.leases.release(sourceName, city.Slug)

	tracker := NewRunTracker(p.store, sourceName)
	run, err := tracker.Start(source.ID, city.ID)
	if err != nil {
		return nil, err
	}

	summary, err := p.runGeodata(ctx, adapter, source, city, run.ID)
	if err != nil {
		tracker.Fail(run.ID, err)
		return nil, err
	}
	if err := tracker.Succeed(run.ID); err != nil {
		return nil, err
	}
	summary.RunID = run.ID.String()
	return summary, nil
}

func (p *Pipeline) runGeodata(ctx context.Context, adapter adapters.GeoAdapter, source model.Source, city model.City, runID uuid.UUID) (*Summary, error) {
	if !city.HasCentroid() {
		return nil, fmt.Errorf("city %q has no coordinates", city.Slug)
	}

	query := adapter.Query(*city.Lat, *city.Lng, p.radius)
	elements, err := p.overpass.Elements(ctx, query)
	if err != nil {
		return nil, err
	}

	deduper, err := LoadDeduper(p.store, source.Name, city.ID)
	if err != nil {
		return nil, err
	}
	writer := NewWriter(p.store, source, city, runID)

	summary := &Summary{Source: source.Name, City: city.Slug, Found: len(elements)}
	for _, el := range elements {
		cand, ok := adapter.ExtractElement(el)
		if !ok {
			summary.Skipped++
			metrics.CandidatesTotal.WithLabelValues(source.Name, "skipped").Inc()
			continue
		}
		if deduper.Seen(cand.SyntheticURL) {
			summary.Skipped++
			metrics.CandidatesTotal.WithLabelValues(source.Name, "skipped").Inc()
			continue
		}

		categoryID, err := p.taxonomy.ResolveOrCreatePlace(cand.CategorySlug, cand.CategoryName)
		if err != nil {
			logger.Error("resolving place category",
				zap.String("slug", cand.CategorySlug),
				zap.Error(err))
			summary.Errors++
			metrics.CandidatesTotal.WithLabelValues(source.Name, "error").Inc()
			continue
		}
		if err := writer.WritePlace(cand, categoryID, adapter.Confidence()); err != nil {
			logger.Error("persisting candidate",
				zap.String("source", source.Name),
				zap.String("url", cand.SyntheticURL),
				zap.Error(err))
			summary.Errors++
			metrics.CandidatesTotal.WithLabelValues(source.Name, "error").Inc()
			continue
		}
		deduper.Add(cand.SyntheticURL)
		summary.Inserted++
		metrics.CandidatesTotal.WithLabelValues(source.Name, "inserted").Inc()
	}
	return summary, nil
}
