package adapters

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/cityfeed/cityfeed/internal/extract"
	"github.com/cityfeed/cityfeed/internal/model"
)

// PartifulAdapter extracts a single event from a partiful.com event page.
// Partiful embeds an hCalendar-style <time class="dtstart" datetime="…">,
// which is the one reliable field; the rest is generated class names with
// a stable ptf- prefix.
type PartifulAdapter struct{}

func NewPartifulAdapter() *PartifulAdapter { return &PartifulAdapter{} }

func (a *PartifulAdapter) Name() string    { return "partiful" }
func (a *PartifulAdapter) Confidence() int { return 85 }

func (a *PartifulAdapter) ValidateURL(rawURL string) error {
	if !strings.HasPrefix(rawURL, "https://partiful.com/") {
		return fmt.Errorf("not a partiful.com URL: %s", rawURL)
	}
	return nil
}

func (a *PartifulAdapter) Extract(doc *html.Node, pageURL string, city model.City, now time.Time) []model.CandidateEvent {
	loc := cityLocation(city)

	title := a.extractTitle(doc)
	image := a.extractImage(doc)

	var startAt *time.Time
	if timeEl := FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "time" && HasClass(n, "dtstart")
	}); timeEl != nil {
		startAt = extract.ParseISOTime(Attr(timeEl, "datetime"), loc)
	}

	// Location renders as "City Region" text, not a venue proper.
	venue := Text(FindFirst(doc, ElementWithClassPrefix("span", "ptf-tzb")))

	var description string
	if block := FindFirst(doc, ElementWithClassPrefix("div", "ptf-l-")); block != nil {
		description = Text(block)
	}

	cand := model.CandidateEvent{
		SourceURL:   pageURL,
		Title:       title,
		Description: optional(description),
		StartAt:     startAt,
		VenueName:   optional(venue),
		Image:       optional(image),
		Extras:      map[string]any{},
	}
	return []model.CandidateEvent{cand}
}

func (a *PartifulAdapter) extractTitle(doc *html.Node) string {
	if h1 := FindFirst(doc, Element("h1")); h1 != nil {
		if span := FindFirst(h1, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "span" && HasClass(n, "summary")
		}); span != nil {
			if t := Text(span); t != "" {
				return t
			}
		}
	}
	return MetaProperty(doc, "og:title")
}

func (a *PartifulAdapter) extractImage(doc *html.Node) string {
	if img := FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "img" && Attr(n, "srcset") != ""
	}); img != nil {
		if src := Attr(img, "src"); src != "" {
			return src
		}
	}
	return MetaProperty(doc, "og:image")
}
