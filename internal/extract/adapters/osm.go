package adapters

import (
	"fmt"

	"github.com/cityfeed/cityfeed/internal/model"
)

// osmCategory maps an OSM tag value to a place-taxonomy slug and display
// name. Place categories are auto-created on first sight, so the table can
// grow without a schema change.
type osmCategory struct {
	Slug string
	Name string
}

var osmAmenityCategories = map[string]osmCategory{
	"bar":        {"bar", "Bar"},
	"pub":        {"pub", "Pub"},
	"cafe":       {"cafe", "Caffè"},
	"restaurant": {"restaurant", "Ristorante"},
	"fast_food":  {"fast-food", "Fast Food"},
	"nightclub":  {"nightclub", "Nightclub"},
	"biergarten": {"biergarten", "Birreria"},
}

var osmLeisureCategories = map[string]osmCategory{
	"music_venue": {"live-music", "Live Music"},
}

// OSMAdapter maps Overpass elements to candidate places. One spatial query
// yields many tagged node/way elements; an element with no name or no
// recognized tag is skipped.
type OSMAdapter struct{}

func NewOSMAdapter() *OSMAdapter { return &OSMAdapter{} }

func (a *OSMAdapter) Name() string    { return "openstreetmap" }
func (a *OSMAdapter) Confidence() int { return 50 }

// Query renders the Overpass QL for a bounding radius around the centroid.
func (a *OSMAdapter) Query(lat, lng float64, radiusMeters int) string {
	return fmt.Sprintf(`[out:json][timeout:60];
(
  node["amenity"~"bar|restaurant|cafe|pub|nightclub|fast_food|biergarten"](around:%d,%f,%f);
  way["amenity"~"bar|restaurant|cafe|pub|nightclub|fast_food|biergarten"](around:%d,%f,%f);
  node["leisure"="music_venue"](around:%d,%f,%f);
  way["leisure"="music_venue"](around:%d,%f,%f);
);
out center tags;`,
		radiusMeters, lat, lng,
		radiusMeters, lat, lng,
		radiusMeters, lat, lng,
		radiusMeters, lat, lng)
}

func (a *OSMAdapter) ExtractElement(el model.GeoElement) (model.CandidatePlace, bool) {
	name := el.Tags["name"]
	if name == "" {
		return model.CandidatePlace{}, false
	}

	cat, ok := a.category(el.Tags)
	if !ok {
		return model.CandidatePlace{}, false
	}

	lat, lng := el.Coordinates()

	address := el.Tags["addr:full"]
	if address == "" {
		address = el.Tags["addr:street"]
	}

	return model.CandidatePlace{
		SyntheticURL: fmt.Sprintf("osm:%d", el.ID),
		Name:         name,
		Description:  optional(el.Tags["description"]),
		Address:      optional(address),
		Lat:          lat,
		Lng:          lng,
		CategorySlug: cat.Slug,
		CategoryName: cat.Name,
		Tags:         el.Tags,
	}, true
}

func (a *OSMAdapter) category(tags map[string]string) (osmCategory, bool) {
	if cat, ok := osmAmenityCategories[tags["amenity"]]; ok {
		return cat, true
	}
	if cat, ok := osmLeisureCategories[tags["leisure"]]; ok {
		return cat, true
	}
	return osmCategory{}, false
}
