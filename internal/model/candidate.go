package model

import "time"

// CandidateEvent is an in-memory normalized record extracted by a source
// adapter. Every field except SourceURL and Title is best-effort: extraction
// gaps yield nil, never an error.
type CandidateEvent struct {
	SourceURL    string
	Title        string
	Description  *string
	StartAt      *time.Time
	EndAt        *time.Time
	PriceMin     *float64
	PriceMax     *float64
	VenueName    *string
	VenueAddress *string
	Image        *string

	// Extras carries vendor-specific fields (lineup, genres, raw date/price
	// text) preserved in the audit payload.
	Extras map[string]any
}

// RawPayload assembles the canonical field document hashed for the audit
// checksum and stored on the raw item and submission.
func (c *CandidateEvent) RawPayload() map[string]any {
	payload := map[string]any{
		"source_url":    c.SourceURL,
		"title":         nilable(c.Title),
		"description":   strPtr(c.Description),
		"start_at":      timePtr(c.StartAt),
		"end_at":        timePtr(c.EndAt),
		"price_min":     floatPtr(c.PriceMin),
		"price_max":     floatPtr(c.PriceMax),
		"venue_name":    strPtr(c.VenueName),
		"venue_address": strPtr(c.VenueAddress),
		"image":         strPtr(c.Image),
	}
	for k, v := range c.Extras {
		payload[k] = v
	}
	return payload
}

// CandidatePlace is an in-memory place record extracted from a geodata
// element. CategorySlug/CategoryName come from the tag mapping and feed the
// place taxonomy's read-or-create resolution.
type CandidatePlace struct {
	// SyntheticURL is the dedup identity for non-URL sources, e.g. "osm:123".
	SyntheticURL string
	Name         string
	Description  *string
	Address      *string
	Lat          *float64
	Lng          *float64
	CategorySlug string
	CategoryName string
	Tags         map[string]string
}

func (c *CandidatePlace) RawPayload() map[string]any {
	tags := make(map[string]any, len(c.Tags))
	for k, v := range c.Tags {
		tags[k] = v
	}
	return map[string]any{
		"name": c.Name,
		"tags": tags,
		"lat":  floatPtr(c.Lat),
		"lng":  floatPtr(c.Lng),
	}
}

func nilable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func strPtr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func floatPtr(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func timePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
