package adapters

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/cityfeed/cityfeed/internal/extract"
	"github.com/cityfeed/cityfeed/internal/model"
)

var clockText = regexp.MustCompile(`^\d{2}:\d{2}`)

// ResidentAdvisorAdapter extracts a single event from an ra.co event page.
// RA renders dates as localized text ("mer, 25 feb 2026") with separate
// start/end time spans ("23:59 - 05:00").
type ResidentAdvisorAdapter struct{}

func NewResidentAdvisorAdapter() *ResidentAdvisorAdapter { return &ResidentAdvisorAdapter{} }

func (a *ResidentAdvisorAdapter) Name() string    { return "resident_advisor" }
func (a *ResidentAdvisorAdapter) Confidence() int { return 90 }

func (a *ResidentAdvisorAdapter) ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("not a resident advisor event URL: %s", rawURL)
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if host != "ra.co" || !strings.HasPrefix(u.Path, "/events/") {
		return fmt.Errorf("not a resident advisor event URL: %s", rawURL)
	}
	return nil
}

// ExtraHeaders adds a referer; ra.co serves a bot interstitial to requests
// arriving without one.
func (a *ResidentAdvisorAdapter) ExtraHeaders() map[string]string {
	return map[string]string{"Referer": "https://ra.co/"}
}

func (a *ResidentAdvisorAdapter) Extract(doc *html.Node, pageURL string, city model.City, now time.Time) []model.CandidateEvent {
	loc := cityLocation(city)

	title := a.extractTitle(doc)
	dateText := a.extractDateText(doc)
	startTime := a.extractStartTime(doc)
	venue := Text(FindFirst(doc, func(n *html.Node) bool {
		return Attr(n, "data-pw-test-id") == "event-venue-link"
	}))
	description := a.extractDescription(doc)
	lineup := a.extractLineup(doc)
	genres := a.extractGenres(doc)
	image := a.extractImage(doc)

	startText := dateText
	if startTime != "" {
		startText = dateText + " " + startTime
	}

	cand := model.CandidateEvent{
		SourceURL:   pageURL,
		Title:       title,
		Description: optional(description),
		StartAt:     extract.ParseEventTime(startText, loc, now),
		VenueName:   optional(venue),
		Image:       optional(image),
		Extras: map[string]any{
			"date_text": dateText,
			"lineup":    lineup,
			"genres":    genres,
		},
	}
	return []model.CandidateEvent{cand}
}

func (a *ResidentAdvisorAdapter) extractTitle(doc *html.Node) string {
	header := FindFirst(doc, Element("header"))
	if header != nil {
		if h1 := FindFirst(header, Element("h1")); h1 != nil {
			if span := FindFirst(h1, Element("span")); span != nil {
				if t := Text(span); t != "" {
					return t
				}
			}
			if t := Text(h1); t != "" {
				return t
			}
		}
	}
	return MetaProperty(doc, "og:title")
}

func (a *ResidentAdvisorAdapter) extractImage(doc *html.Node) string {
	if picture := FindFirst(doc, Element("picture")); picture != nil {
		if src := Attr(FindFirst(picture, Element("img")), "src"); src != "" {
			return src
		}
	}
	return MetaProperty(doc, "og:image")
}

func (a *ResidentAdvisorAdapter) extractDateText(doc *html.Node) string {
	links := FindAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "a" &&
			strings.Contains(Attr(n, "href"), "startDate")
	})
	text := ""
	for _, l := range links {
		if t := Text(l); t != "" {
			text = t
		}
	}
	return text
}

func (a *ResidentAdvisorAdapter) extractStartTime(doc *html.Node) string {
	for _, span := range FindAll(doc, Element("span")) {
		if t := Text(span); clockText.MatchString(t) {
			return t[:5]
		}
	}
	return ""
}

func (a *ResidentAdvisorAdapter) extractDescription(doc *html.Node) string {
	return Text(FindFirst(doc, func(n *html.Node) bool {
		return Attr(n, "data-tracking-id") == "event-detail-description"
	}))
}

func (a *ResidentAdvisorAdapter) extractLineup(doc *html.Node) string {
	block := FindFirst(doc, func(n *html.Node) bool {
		return Attr(n, "data-tracking-id") == "event-detail-lineup"
	})
	if block == nil {
		return ""
	}
	var names []string
	for _, span := range FindAll(block, Element("span")) {
		if t := Text(span); t != "" {
			names = append(names, t)
		}
	}
	return strings.Join(names, ", ")
}

func (a *ResidentAdvisorAdapter) extractGenres(doc *html.Node) []string {
	var genres []string
	for _, tag := range FindAll(doc, ElementWithClassPrefix("", "Tag__TagStyled")) {
		if t := Text(tag); t != "" {
			genres = append(genres, t)
		}
	}
	return genres
}
