package adapters

import (
	"testing"
	"time"

	"github.com/cityfeed/cityfeed/internal/model"
)

const diceBrowsePage = `<html><body>
<div class="EventCard__Event-sc-abc123">
  <a href="/event/k2o3r-warehouse-night"></a>
  <div class="styles__ImageWrapper-sc-x1"><img src="https://cdn.dice.fm/one.jpg"></div>
  <div class="styles__Title-sc-x2">Warehouse Night</div>
  <div class="styles__DateText-sc-x3">ven 20 feb</div>
  <div class="styles__Venue-sc-x4">Magazzini Generali</div>
  <div class="styles__Price-sc-x5">€15</div>
</div>
<div class="EventCard__Event-sc-abc123">
  <a href="/event/p9q8r-open-air"></a>
  <div class="styles__Title-sc-x2">Open Air</div>
  <div class="styles__DateText-sc-x3">sab 21 feb</div>
  <div class="styles__Venue-sc-x4">Parco Nord</div>
  <div class="styles__Price-sc-x5">Gratis</div>
</div>
<div class="EventCard__Event-sc-abc123">
  <a href="/event/z7y6x-untitled"></a>
  <div class="styles__DateText-sc-x3">dom 22 feb</div>
</div>
</body></html>`

func testCity() model.City {
	lat, lng := 45.4642, 9.19
	return model.City{Name: "Milan", Slug: "milan", Lat: &lat, Lng: &lng, Timezone: "Europe/Rome"}
}

func TestDiceExtract_BrowsePage(t *testing.T) {
	doc, err := ParseHTML(diceBrowsePage)
	if err != nil {
		t.Fatalf("Parse fixture: %v", err)
	}

	adapter := NewDiceAdapter()
	now := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	cands := adapter.Extract(doc, "https://dice.fm/browse/milan/music/dj", testCity(), now)

	if len(cands) != 3 {
		t.Fatalf("Expected 3 candidates, got %d", len(cands))
	}

	first := cands[0]
	if first.SourceURL != "https://dice.fm/event/k2o3r-warehouse-night" {
		t.Errorf("Unexpected source URL: %s", first.SourceURL)
	}
	if first.Title != "Warehouse Night" {
		t.Errorf("Unexpected title: %q", first.Title)
	}
	if first.VenueName == nil || *first.VenueName != "Magazzini Generali" {
		t.Errorf("Unexpected venue: %v", first.VenueName)
	}
	if first.PriceMin == nil || *first.PriceMin != 15 {
		t.Errorf("Unexpected price min: %v", first.PriceMin)
	}
	if first.Image == nil || *first.Image != "https://cdn.dice.fm/one.jpg" {
		t.Errorf("Unexpected image: %v", first.Image)
	}
	if first.StartAt == nil || first.StartAt.Day() != 20 || first.StartAt.Month() != time.February {
		t.Errorf("Unexpected start: %v", first.StartAt)
	}

	second := cands[1]
	if second.PriceMin == nil || *second.PriceMin != 0 || second.PriceMax == nil || *second.PriceMax != 0 {
		t.Errorf("Gratis must map to a 0-0 range, got %v-%v", second.PriceMin, second.PriceMax)
	}

	// The third card has no title element; the candidate survives extraction
	// and is skipped later by the orchestrator.
	if cands[2].Title != "" {
		t.Errorf("Expected empty title on third card, got %q", cands[2].Title)
	}
}

func TestDiceValidateURL(t *testing.T) {
	adapter := NewDiceAdapter()
	if err := adapter.ValidateURL("https://dice.fm/browse/milan"); err != nil {
		t.Errorf("Expected valid, got %v", err)
	}
	if err := adapter.ValidateURL("https://ra.co/events/123"); err == nil {
		t.Error("Expected error for foreign URL")
	}
}

func TestDiceEventCategorySlug(t *testing.T) {
	adapter := NewDiceAdapter()
	tests := []struct {
		url  string
		want string
	}{
		{"https://dice.fm/browse/milan/music/dj", "club-night"},
		{"https://dice.fm/browse/milan/music/techno", "club-night"},
		{"https://dice.fm/browse/milan/music/gig", "concert"},
		{"https://dice.fm/browse/milan/music", "live-music"},
		{"https://dice.fm/browse/milan/culture/comedy", "comedy"},
		{"https://dice.fm/browse/milan/culture/film", "cinema"},
		{"https://dice.fm/browse/milan/culture/foodanddrink", "food-drink"},
		{"https://dice.fm/browse/milan/festival", "festival"},
		{"https://dice.fm/browse/milan", "event"},
	}
	for _, tt := range tests {
		if got := adapter.EventCategorySlug(tt.url); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestDiceEnrich_FillsGapsOnly(t *testing.T) {
	detail := `<html><head>
<meta property="og:description" content="Full detail description">
<meta property="og:image" content="https://cdn.dice.fm/detail.jpg">
</head><body>
<h1>Detail Title</h1>
<time datetime="2026-02-20T23:00:00"></time>
</body></html>`
	doc, err := ParseHTML(detail)
	if err != nil {
		t.Fatalf("Parse fixture: %v", err)
	}

	adapter := NewDiceAdapter()
	listDesc := "Magazzini Generali · ven 20 feb · €15"
	cand := model.CandidateEvent{
		SourceURL:   "https://dice.fm/event/k2o3r",
		Title:       "Warehouse Night",
		Description: &listDesc,
	}
	adapter.Enrich(doc, &cand, testCity(), time.Now())

	if cand.Title != "Warehouse Night" {
		t.Errorf("List title must survive enrichment, got %q", cand.Title)
	}
	// The synthetic list description is replaced by the real one
	if cand.Description == nil || *cand.Description != "Full detail description" {
		t.Errorf("Unexpected description: %v", cand.Description)
	}
	if cand.Image == nil || *cand.Image != "https://cdn.dice.fm/detail.jpg" {
		t.Errorf("Unexpected image: %v", cand.Image)
	}
	if cand.StartAt == nil || cand.StartAt.Hour() != 23 {
		t.Errorf("Unexpected start: %v", cand.StartAt)
	}
}
