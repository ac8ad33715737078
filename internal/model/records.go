package model

import (
	"time"

	"github.com/google/uuid"
)

// SourceKind distinguishes how a source is fetched.
type SourceKind string

const (
	SourceKindScrape  SourceKind = "scrape"
	SourceKindGeodata SourceKind = "geodata"
)

// RunStatus is the lifecycle state of an ingestion run.
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// SubmissionStatus is the moderation state of a submission.
type SubmissionStatus string

const (
	SubmissionDraft    SubmissionStatus = "draft"
	SubmissionVisible  SubmissionStatus = "visible"
	SubmissionPromoted SubmissionStatus = "promoted"
	SubmissionRejected SubmissionStatus = "rejected"
)

// CategoryType separates the event taxonomy from the place taxonomy.
type CategoryType string

const (
	CategoryEvent CategoryType = "event"
	CategoryPlace CategoryType = "place"
)

// Source identifies an ingestion provider.
type Source struct {
	ID      uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name    string     `gorm:"uniqueIndex;not null" json:"name"`
	Kind    SourceKind `gorm:"not null" json:"kind"`
	Enabled bool       `gorm:"not null;default:true" json:"enabled"`
}

func (Source) TableName() string { return "sources" }

// City is the geographic scope of a run. Read-only to the ingestion core.
type City struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"not null" json:"name"`
	Slug     string    `gorm:"uniqueIndex;not null" json:"slug"`
	Lat      *float64  `json:"lat"`
	Lng      *float64  `json:"lng"`
	Timezone string    `json:"timezone"`
}

func (City) TableName() string { return "cities" }

// HasCentroid reports whether the city carries coordinates for spatial queries.
func (c City) HasCentroid() bool { return c.Lat != nil && c.Lng != nil }

// Category is a taxonomy entry. Event categories are curated out-of-band;
// place categories may be created lazily from geodata tags.
type Category struct {
	ID   uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name string       `gorm:"not null" json:"name"`
	Slug string       `gorm:"index:idx_categories_slug_type,unique;not null" json:"slug"`
	Type CategoryType `gorm:"index:idx_categories_slug_type,unique;not null" json:"type"`
}

func (Category) TableName() string { return "categories" }

// IngestionRun records one bounded execution for a (source, city) pair.
// Exactly one terminal transition is written; Error is set iff the run failed.
type IngestionRun struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SourceID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"source_id"`
	CityID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"city_id"`
	Status    RunStatus  `gorm:"not null" json:"status"`
	StartedAt time.Time  `gorm:"not null" json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	Error     *string    `json:"error"`
}

func (IngestionRun) TableName() string { return "ingestions" }

// RawItem is the immutable audit snapshot written alongside a submission.
// URL is the source URL, or a synthetic key for non-URL sources (osm:<id>).
type RawItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SourceID  uuid.UUID `gorm:"type:uuid;not null;index" json:"source_id"`
	CityID    uuid.UUID `gorm:"type:uuid;not null;index" json:"city_id"`
	URL       string    `gorm:"not null" json:"url"`
	Checksum  string    `gorm:"not null" json:"checksum"`
	Payload   string    `gorm:"type:text" json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

func (RawItem) TableName() string { return "raw_items" }

// Submission is a persisted draft awaiting moderation.
type Submission struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CityID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"city_id"`
	CategoryID   *uuid.UUID       `gorm:"type:uuid" json:"category_id"`
	Source       string           `gorm:"not null;index" json:"source"`
	SourceURL    string           `gorm:"not null;index" json:"source_url"`
	Title        string           `gorm:"not null" json:"title"`
	Description  *string          `json:"description"`
	StartAt      *time.Time       `json:"start_at"`
	EndAt        *time.Time       `json:"end_at"`
	PriceMin     *float64         `json:"price_min"`
	PriceMax     *float64         `json:"price_max"`
	VenueName    *string          `json:"venue_name"`
	VenueAddress *string          `json:"venue_address"`
	Image        *string          `json:"image"`
	Lat          *float64         `json:"lat"`
	Lng          *float64         `json:"lng"`
	SourcePayload string          `gorm:"type:text" json:"source_payload"`
	IngestionID  *uuid.UUID       `gorm:"type:uuid;index" json:"ingestion_id"`
	Confidence   int              `gorm:"not null" json:"confidence"`
	Status       SubmissionStatus `gorm:"not null;default:'draft';index" json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (Submission) TableName() string { return "submissions" }

// Event is a promoted canonical event. Written only by the moderation flow.
type Event struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CityID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"city_id"`
	CategoryID  *uuid.UUID `gorm:"type:uuid" json:"category_id"`
	Title       string     `gorm:"not null" json:"title"`
	Slug        string     `gorm:"not null" json:"slug"`
	Description *string    `json:"description"`
	SourceURL   *string    `json:"source_url"`
	StartAt     *time.Time `json:"start_at"`
	CoverImage  *string    `json:"cover_image"`
	PriceMin    *float64   `json:"price_min"`
	PriceMax    *float64   `json:"price_max"`
	Lat         *float64   `json:"lat"`
	Lng         *float64   `json:"lng"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (Event) TableName() string { return "events" }

// Place is a promoted canonical place.
type Place struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CityID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"city_id"`
	CategoryID       *uuid.UUID `gorm:"type:uuid" json:"category_id"`
	Name             string     `gorm:"not null" json:"name"`
	Slug             string     `gorm:"index" json:"slug"`
	Description      *string    `json:"description"`
	Address          *string    `json:"address"`
	Lat              *float64   `json:"lat"`
	Lng              *float64   `json:"lng"`
	SourceConfidence int        `json:"source_confidence"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (Place) TableName() string { return "places" }
