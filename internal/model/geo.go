package model

// GeoResponse is the decoded body of an Overpass spatial query.
type GeoResponse struct {
	Elements []GeoElement `json:"elements"`
}

// GeoElement is one tagged node or way returned by the query. Ways carry
// their coordinates in Center.
type GeoElement struct {
	ID     int64             `json:"id"`
	Type   string            `json:"type"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *GeoCenter        `json:"center"`
	Tags   map[string]string `json:"tags"`
}

// GeoCenter is the centroid of a way element.
type GeoCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Coordinates returns the element's point, preferring the node position and
// falling back to the way centroid.
func (e GeoElement) Coordinates() (*float64, *float64) {
	if e.Lat != nil && e.Lon != nil {
		return e.Lat, e.Lon
	}
	if e.Center != nil {
		lat, lon := e.Center.Lat, e.Center.Lon
		return &lat, &lon
	}
	return nil, nil
}
