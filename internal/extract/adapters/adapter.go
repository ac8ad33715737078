package adapters

import (
	"time"

	"golang.org/x/net/html"

	"github.com/cityfeed/cityfeed/internal/model"
)

// PageAdapter extracts candidate events from a fetched HTML page. Extraction
// is best-effort: a missing optional field is nil on the candidate, and a
// candidate that cannot be identified at all is simply absent from the
// result. Adapters never return errors for markup drift.
type PageAdapter interface {
	// Name is the source name as configured in the sources table.
	Name() string

	// Confidence is the static per-source trust weight stamped on every
	// submission from this source.
	Confidence() int

	// ValidateURL rejects URLs that do not belong to this source.
	ValidateURL(rawURL string) error

	// Extract parses the page into zero or more candidates.
	Extract(doc *html.Node, pageURL string, city model.City, now time.Time) []model.CandidateEvent
}

// DetailEnricher is implemented by list adapters whose candidates gain
// fields from a second fetch of their own detail page. Enrich must only
// fill fields the list extraction left empty.
type DetailEnricher interface {
	Enrich(doc *html.Node, cand *model.CandidateEvent, city model.City, now time.Time)
}

// EventCategoryHinter is implemented by adapters whose page URL encodes an
// event-taxonomy hint.
type EventCategoryHinter interface {
	EventCategorySlug(pageURL string) string
}

// GeoAdapter maps spatial-query elements to candidate places.
type GeoAdapter interface {
	Name() string
	Confidence() int

	// Query renders the spatial query for a bounding radius around the
	// city centroid.
	Query(lat, lng float64, radiusMeters int) string

	// ExtractElement maps one tagged element. ok is false when the element
	// has no name or no recognized tag and must be skipped.
	ExtractElement(el model.GeoElement) (model.CandidatePlace, bool)
}

// Registry holds the closed set of source adapters.
type Registry struct {
	pages map[string]PageAdapter
	geo   map[string]GeoAdapter
}

// NewRegistry registers the built-in adapters.
func NewRegistry() *Registry {
	r := &Registry{
		pages: make(map[string]PageAdapter),
		geo:   make(map[string]GeoAdapter),
	}
	for _, a := range []PageAdapter{
		NewDiceAdapter(),
		NewResidentAdvisorAdapter(),
		NewXceedAdapter(),
		NewPartifulAdapter(),
		NewEventbriteAdapter(),
	} {
		r.RegisterPage(a)
	}
	r.RegisterGeo(NewOSMAdapter())
	return r
}

// RegisterPage adds a page adapter under its name, replacing any existing
// registration.
func (r *Registry) RegisterPage(a PageAdapter) { r.pages[a.Name()] = a }

// RegisterGeo adds a geodata adapter under its name.
func (r *Registry) RegisterGeo(a GeoAdapter) { r.geo[a.Name()] = a }

// Page returns the page adapter registered under name.
func (r *Registry) Page(name string) (PageAdapter, bool) {
	a, ok := r.pages[name]
	return a, ok
}

// Geo returns the geodata adapter registered under name.
func (r *Registry) Geo(name string) (GeoAdapter, bool) {
	a, ok := r.geo[name]
	return a, ok
}

// Kind reports how the named source is fetched.
func (r *Registry) Kind(name string) (model.SourceKind, bool) {
	if _, ok := r.pages[name]; ok {
		return model.SourceKindScrape, true
	}
	if _, ok := r.geo[name]; ok {
		return model.SourceKindGeodata, true
	}
	return "", false
}

// Names lists every registered source name.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.pages)+len(r.geo))
	for n := range r.pages {
		names = append(names, n)
	}
	for n := range r.geo {
		names = append(names, n)
	}
	return names
}
