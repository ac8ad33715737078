package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/cityfeed/cityfeed/internal/model"
)

// OverpassClient runs spatial queries against an Overpass endpoint. It
// shares the pipeline fetcher, so Overpass calls get the same retry and
// rate-limit treatment as page fetches.
type OverpassClient struct {
	fetcher *Fetcher
	url     string
}

func NewOverpassClient(f *Fetcher, cfg model.OverpassConfig) *OverpassClient {
	return &OverpassClient{fetcher: f, url: cfg.URL}
}

// Elements posts query and decodes the element list.
func (c *OverpassClient) Elements(ctx context.Context, query string) ([]model.GeoElement, error) {
	form := url.Values{"data": {query}}
	body, err := c.fetcher.Post(ctx, c.url, form.Encode())
	if err != nil {
		return nil, err
	}
	var resp model.GeoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}
	return resp.Elements, nil
}
