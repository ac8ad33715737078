package adapters

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/cityfeed/cityfeed/internal/extract"
	"github.com/cityfeed/cityfeed/internal/model"
)

// XceedAdapter extracts a single event from an xceed.me event page.
type XceedAdapter struct{}

func NewXceedAdapter() *XceedAdapter { return &XceedAdapter{} }

func (a *XceedAdapter) Name() string    { return "xceed" }
func (a *XceedAdapter) Confidence() int { return 70 }

func (a *XceedAdapter) ValidateURL(rawURL string) error {
	if !strings.HasPrefix(rawURL, "https://xceed.me/") {
		return fmt.Errorf("not an xceed.me URL: %s", rawURL)
	}
	return nil
}

func (a *XceedAdapter) Extract(doc *html.Node, pageURL string, city model.City, now time.Time) []model.CandidateEvent {
	loc := cityLocation(city)

	title := Text(FindFirst(doc, Element("h1")))

	var datetimeText string
	if header := FindFirst(doc, Element("header")); header != nil {
		datetimeText = Text(FindFirst(header, Element("p")))
	}

	var priceText string
	for _, span := range FindAll(doc, Element("span")) {
		if t := Text(span); strings.Contains(t, "€") {
			priceText = t
			break
		}
	}
	priceMin, priceMax := extract.ParsePriceRange(priceText)

	image := Attr(FindFirst(doc, ElementWithAttr("img", "data-testid", "image-custom")), "src")

	var venue, venueAddress string
	if section := FindFirst(doc, ElementWithAttr("section", "id", "venue")); section != nil {
		venue = Text(FindFirst(section, Element("h3")))
		venueAddress = Text(FindFirst(section, Element("p")))
	}

	var description string
	if about := FindFirst(doc, ElementWithAttr("section", "id", "about")); about != nil {
		description = Text(FindFirst(about, ElementWithAttr("div", "data-testid", "expandable-text-content")))
	}

	cand := model.CandidateEvent{
		SourceURL:    pageURL,
		Title:        title,
		Description:  optional(description),
		StartAt:      extract.ParseEventTime(datetimeText, loc, now),
		PriceMin:     priceMin,
		PriceMax:     priceMax,
		VenueName:    optional(venue),
		VenueAddress: optional(venueAddress),
		Image:        optional(image),
		Extras: map[string]any{
			"datetime_text": datetimeText,
			"price_text":    priceText,
		},
	}
	return []model.CandidateEvent{cand}
}
