package adapters

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/cityfeed/cityfeed/internal/extract"
	"github.com/cityfeed/cityfeed/internal/model"
)

var euroAmount = regexp.MustCompile(`€\s?([\d.,]+)`)

// EventbriteAdapter extracts a single event from an eventbrite event page.
// Eventbrite markup churns frequently, so every field runs a selector chain
// ending in the og: meta tags.
type EventbriteAdapter struct{}

func NewEventbriteAdapter() *EventbriteAdapter { return &EventbriteAdapter{} }

func (a *EventbriteAdapter) Name() string    { return "eventbrite" }
func (a *EventbriteAdapter) Confidence() int { return 80 }

// ValidateURL checks the host: eventbrite runs one country-code domain per
// market (eventbrite.com, eventbrite.it, …).
func (a *EventbriteAdapter) ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("not an eventbrite URL: %s", rawURL)
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if !strings.HasPrefix(host, "eventbrite.") {
		return fmt.Errorf("not an eventbrite URL: %s", rawURL)
	}
	return nil
}

func (a *EventbriteAdapter) Extract(doc *html.Node, pageURL string, city model.City, now time.Time) []model.CandidateEvent {
	loc := cityLocation(city)

	title := a.extractTitle(doc)
	description := a.extractDescription(doc)
	image := a.extractImage(doc)
	startAt := a.extractStart(doc, loc)
	priceMin, priceMax := a.extractPrice(doc)
	venue, address := a.extractVenue(doc)

	cand := model.CandidateEvent{
		SourceURL:    pageURL,
		Title:        title,
		Description:  optional(description),
		StartAt:      startAt,
		PriceMin:     priceMin,
		PriceMax:     priceMax,
		VenueName:    optional(venue),
		VenueAddress: optional(address),
		Image:        optional(image),
		Extras:       map[string]any{},
	}
	return []model.CandidateEvent{cand}
}

func (a *EventbriteAdapter) extractTitle(doc *html.Node) string {
	chain := []func(*html.Node) bool{
		func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "h1" && HasClass(n, "event-title")
		},
		ElementWithAttr("h1", "data-testid", "event-title"),
		Element("h1"),
	}
	for _, pred := range chain {
		if t := Text(FindFirst(doc, pred)); t != "" {
			return t
		}
	}
	return MetaProperty(doc, "og:title")
}

func (a *EventbriteAdapter) extractDescription(doc *html.Node) string {
	if el := FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && Attr(n, "id") == "event-description"
	}); el != nil {
		return Text(el)
	}
	return MetaProperty(doc, "og:description")
}

func (a *EventbriteAdapter) extractImage(doc *html.Node) string {
	if og := MetaProperty(doc, "og:image"); og != "" {
		return og
	}
	if img := FindFirst(doc, ElementWithAttr("img", "data-testid", "hero-img")); img != nil {
		if src := Attr(img, "src"); src != "" {
			return src
		}
		if srcset := Attr(img, "srcset"); srcset != "" {
			entries := strings.Split(srcset, ",")
			fields := strings.Fields(entries[len(entries)-1])
			if len(fields) > 0 {
				return fields[0]
			}
		}
	}
	return ""
}

func (a *EventbriteAdapter) extractStart(doc *html.Node, loc *time.Location) *time.Time {
	timeEl := FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "time" &&
			HasClass(n, "start-date-and-location__date")
	})
	if timeEl == nil {
		timeEl = FindFirst(doc, Element("time"))
	}
	if timeEl == nil {
		return nil
	}
	return extract.ParseISOTime(Attr(timeEl, "datetime"), loc)
}

// extractPrice reads the single advertised price; eventbrite pages expose
// one "from" amount, so min and max collapse.
func (a *EventbriteAdapter) extractPrice(doc *html.Node) (*float64, *float64) {
	bar := FindFirst(doc, func(n *html.Node) bool {
		return Attr(n, "data-testid") == "condensed-conversion-bar"
	})
	if bar == nil {
		return nil, nil
	}
	span := FindFirst(bar, Element("span"))
	m := euroAmount.FindStringSubmatch(Text(span))
	if m == nil {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return nil, nil
	}
	v2 := v
	return &v, &v2
}

func (a *EventbriteAdapter) extractVenue(doc *html.Node) (string, string) {
	venue := Text(FindFirst(doc, func(n *html.Node) bool {
		return HasClass(n, "start-date-and-location__location")
	}))

	var lines []string
	for _, n := range FindAll(doc, func(n *html.Node) bool {
		return HasClassPrefix(n, "Location-module__addressText") ||
			HasClassPrefix(n, "Location-module__addressAdditionalLine")
	}) {
		if t := Text(n); t != "" {
			lines = append(lines, t)
		}
	}
	return venue, strings.Join(lines, ", ")
}
