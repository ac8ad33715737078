package adapters

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/cityfeed/cityfeed/internal/extract"
	"github.com/cityfeed/cityfeed/internal/model"
)

// DiceAdapter extracts events from a dice.fm browse page. The browse page
// is a list source: each card yields one candidate carrying list-level
// fields, later enriched from its own detail page.
type DiceAdapter struct{}

func NewDiceAdapter() *DiceAdapter { return &DiceAdapter{} }

func (a *DiceAdapter) Name() string    { return "dice" }
func (a *DiceAdapter) Confidence() int { return 55 }

func (a *DiceAdapter) ValidateURL(rawURL string) error {
	if !strings.HasPrefix(rawURL, "https://dice.fm/") {
		return fmt.Errorf("not a dice.fm URL: %s", rawURL)
	}
	return nil
}

func (a *DiceAdapter) Extract(doc *html.Node, pageURL string, city model.City, now time.Time) []model.CandidateEvent {
	loc := cityLocation(city)
	cards := FindAll(doc, ElementWithClassPrefix("div", "EventCard__Event"))

	var out []model.CandidateEvent
	for _, card := range cards {
		link := FindFirst(card, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "a" &&
				strings.HasPrefix(Attr(n, "href"), "/event/")
		})
		if link == nil {
			continue
		}

		title := Text(FindFirst(card, ElementWithClassPrefix("", "styles__Title")))
		dateText := Text(FindFirst(card, ElementWithClassPrefix("", "styles__DateText")))
		venueName := Text(FindFirst(card, ElementWithClassPrefix("", "styles__Venue")))
		priceText := Text(FindFirst(card, ElementWithClassPrefix("", "styles__Price")))

		var image *string
		if wrapper := FindFirst(card, ElementWithClassPrefix("div", "styles__ImageWrapper")); wrapper != nil {
			image = optional(Attr(FindFirst(wrapper, Element("img")), "src"))
		}

		priceMin, priceMax := extract.ParsePriceRange(priceText)

		cand := model.CandidateEvent{
			SourceURL:   "https://dice.fm" + Attr(link, "href"),
			Title:       title,
			StartAt:     extract.ParseEventTime(dateText, loc, now),
			PriceMin:    priceMin,
			PriceMax:    priceMax,
			VenueName:   optional(venueName),
			Image:       image,
			Description: diceListDescription(venueName, dateText, priceText),
			Extras: map[string]any{
				"date_text":  dateText,
				"price_text": priceText,
			},
		}
		out = append(out, cand)
	}
	return out
}

// Enrich fills gaps from the event's own page. The detail page is richer
// than the card; list-level values stay when the detail markup is missing.
func (a *DiceAdapter) Enrich(doc *html.Node, cand *model.CandidateEvent, city model.City, now time.Time) {
	if cand.Description == nil || isListDescription(*cand.Description) {
		if desc := MetaProperty(doc, "og:description"); desc != "" {
			cand.Description = optional(desc)
		}
	}
	if cand.Title == "" {
		if t := Text(FindFirst(doc, Element("h1"))); t != "" {
			cand.Title = t
		} else if og := MetaProperty(doc, "og:title"); og != "" {
			cand.Title = og
		}
	}
	if cand.Image == nil {
		cand.Image = optional(MetaProperty(doc, "og:image"))
	}
	if timeEl := FindFirst(doc, Element("time")); timeEl != nil {
		if dt := extract.ParseISOTime(Attr(timeEl, "datetime"), cityLocation(city)); dt != nil {
			cand.StartAt = dt
		}
	}
}

// EventCategorySlug infers the event taxonomy slug from the browse URL path.
// The returned slug must already exist in the curated event taxonomy; an
// unknown slug resolves to a null category, never a new row.
func (a *DiceAdapter) EventCategorySlug(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "event"
	}
	parts := strings.Split(strings.Trim(strings.ToLower(parsed.Path), "/"), "/")
	has := func(names ...string) bool {
		for _, p := range parts {
			for _, n := range names {
				if p == n {
					return true
				}
			}
		}
		return false
	}

	switch {
	case has("music"):
		if has("dj", "party", "afrohouse", "house", "techno") {
			return "club-night"
		}
		if has("gig", "live", "band") {
			return "concert"
		}
		return "live-music"
	case has("culture"):
		switch {
		case has("film", "cinema"):
			return "cinema"
		case has("comedy"):
			return "comedy"
		case has("theatre"):
			return "theatre"
		case has("art"):
			return "art"
		case has("foodanddrink"):
			return "food-drink"
		case has("sport"):
			return "sport"
		case has("social"):
			return "social"
		}
		return "event"
	case has("festival"):
		return "festival"
	}
	return "event"
}

func diceListDescription(parts ...string) *string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	joined := strings.Join(kept, " · ")
	return &joined
}

func isListDescription(s string) bool {
	return strings.Contains(s, " · ")
}

// cityLocation loads the city's timezone, defaulting to UTC when the city
// record has none or the name is unknown.
func cityLocation(city model.City) *time.Location {
	if city.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(city.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
