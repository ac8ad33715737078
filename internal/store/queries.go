package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cityfeed/cityfeed/internal/model"
)

// ResolveCityBySlug looks up a city by its slug.
func (s *Store) ResolveCityBySlug(slug string) (model.City, error) {
	var city model.City
	err := s.db.Where("slug = ?", slug).First(&city).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.City{}, fmt.Errorf("city %q: %w", slug, ErrNotFound)
	}
	return city, err
}

// CreateCity inserts a city. Used by seeding and tests; the ingestion core
// itself treats cities as read-only.
func (s *Store) CreateCity(city *model.City) error {
	if city.ID == uuid.Nil {
		city.ID = uuid.New()
	}
	return s.db.Create(city).Error
}

// GetSourceByName returns a configured source.
func (s *Store) GetSourceByName(name string) (model.Source, error) {
	var src model.Source
	err := s.db.Where("name = ?", name).First(&src).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Source{}, fmt.Errorf("source %q: %w", name, ErrNotFound)
	}
	return src, err
}

// ResolveOrCreateSource returns the source with the given name, creating it
// on first use.
func (s *Store) ResolveOrCreateSource(name string, kind model.SourceKind) (model.Source, error) {
	src, err := s.GetSourceByName(name)
	if err == nil {
		return src, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return model.Source{}, err
	}
	src = model.Source{ID: uuid.New(), Name: name, Kind: kind, Enabled: true}
	if err := s.db.Create(&src).Error; err != nil {
		return model.Source{}, fmt.Errorf("create source %q: %w", name, err)
	}
	return src, nil
}

// FindCategoryBySlug returns the category for (slug, type), or nil when the
// taxonomy has no such entry.
func (s *Store) FindCategoryBySlug(slug string, ctype model.CategoryType) (*model.Category, error) {
	var cat model.Category
	err := s.db.Where("slug = ? AND type = ?", slug, ctype).First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// CreateCategory inserts a taxonomy entry.
func (s *Store) CreateCategory(name, slug string, ctype model.CategoryType) (model.Category, error) {
	cat := model.Category{ID: uuid.New(), Name: name, Slug: slug, Type: ctype}
	if err := s.db.Create(&cat).Error; err != nil {
		return model.Category{}, fmt.Errorf("create category %q: %w", slug, err)
	}
	return cat, nil
}

// CreateRun opens an ingestion run in the running state.
func (s *Store) CreateRun(sourceID, cityID uuid.UUID) (model.IngestionRun, error) {
	run := model.IngestionRun{
		ID:        uuid.New(),
		SourceID:  sourceID,
		CityID:    cityID,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&run).Error; err != nil {
		return model.IngestionRun{}, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

// CloseRun writes the single terminal transition for a run. errMsg must be
// non-nil iff status is failed.
func (s *Store) CloseRun(runID uuid.UUID, status model.RunStatus, errMsg *string) error {
	now := time.Now().UTC()
	return s.db.Model(&model.IngestionRun{}).
		Where("id = ?", runID).
		Updates(map[string]any{
			"status":   status,
			"ended_at": &now,
			"error":    errMsg,
		}).Error
}

// GetRun fetches a run by id.
func (s *Store) GetRun(id uuid.UUID) (model.IngestionRun, error) {
	var run model.IngestionRun
	err := s.db.First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.IngestionRun{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return run, err
}

// RunInfo is a run joined with its source and city names for introspection.
type RunInfo struct {
	ID        uuid.UUID       `json:"id"`
	Status    model.RunStatus `json:"status"`
	Source    string          `json:"source"`
	City      string          `json:"city"`
	StartedAt time.Time       `json:"started_at"`
	EndedAt   *time.Time      `json:"ended_at"`
	Error     *string         `json:"error"`
}

// ListRuns returns the most recent runs with joined source/city names.
func (s *Store) ListRuns(limit int) ([]RunInfo, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []RunInfo
	err := s.db.Table("ingestions").
		Select("ingestions.id, ingestions.status, sources.name AS source, cities.slug AS city, ingestions.started_at, ingestions.ended_at, ingestions.error").
		Joins("JOIN sources ON sources.id = ingestions.source_id").
		Joins("JOIN cities ON cities.id = ingestions.city_id").
		Order("ingestions.started_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// LastRun returns the most recent run, or nil when none exist.
func (s *Store) LastRun() (*RunInfo, error) {
	rows, err := s.ListRuns(1)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// RunSubmissions returns a run's submissions ordered by event start time.
func (s *Store) RunSubmissions(runID uuid.UUID) ([]model.Submission, error) {
	var subs []model.Submission
	err := s.db.Where("ingestion_id = ?", runID).Order("start_at").Find(&subs).Error
	return subs, err
}

// SubmissionURLs loads the set of source URLs already submitted for a
// (source, city) pair. One query per run; the dedup membership test runs
// against this set.
func (s *Store) SubmissionURLs(source string, cityID uuid.UUID) (map[string]struct{}, error) {
	var urls []string
	err := s.db.Model(&model.Submission{}).
		Where("source = ? AND city_id = ?", source, cityID).
		Pluck("source_url", &urls).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		set[u] = struct{}{}
	}
	return set, nil
}

// InsertCandidate writes a raw item and its submission atomically. The raw
// item goes first: audit precedes visibility.
func (s *Store) InsertCandidate(raw *model.RawItem, sub *model.Submission) error {
	if raw.ID == uuid.Nil {
		raw.ID = uuid.New()
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(raw).Error; err != nil {
			return fmt.Errorf("insert raw item: %w", err)
		}
		if err := tx.Create(sub).Error; err != nil {
			return fmt.Errorf("insert submission: %w", err)
		}
		return nil
	})
}

// SubmissionFilter narrows ListSubmissions.
type SubmissionFilter struct {
	CityID *uuid.UUID
	Status model.SubmissionStatus
	Source string
}

// ListSubmissions returns submissions matching the filter, newest first.
func (s *Store) ListSubmissions(f SubmissionFilter) ([]model.Submission, error) {
	q := s.db.Model(&model.Submission{}).Order("created_at DESC")
	if f.CityID != nil {
		q = q.Where("city_id = ?", *f.CityID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Source != "" {
		q = q.Where("source = ?", f.Source)
	}
	var subs []model.Submission
	err := q.Find(&subs).Error
	return subs, err
}

// GetSubmission fetches a submission by id.
func (s *Store) GetSubmission(id uuid.UUID) (model.Submission, error) {
	var sub model.Submission
	err := s.db.First(&sub, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Submission{}, fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	return sub, err
}

// UpdateSubmissionStatus transitions a submission's moderation state.
func (s *Store) UpdateSubmissionStatus(id uuid.UUID, status model.SubmissionStatus) error {
	return s.db.Model(&model.Submission{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()}).Error
}

// CreateEvent inserts a promoted event.
func (s *Store) CreateEvent(ev *model.Event) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	return s.db.Create(ev).Error
}

// GetEvent fetches an event by id.
func (s *Store) GetEvent(id uuid.UUID) (model.Event, error) {
	var ev model.Event
	err := s.db.First(&ev, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Event{}, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return ev, err
}

// CreatePlace inserts a promoted place.
func (s *Store) CreatePlace(p *model.Place) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return s.db.Create(p).Error
}

// ListPlacesByCity returns all places in a city, for venue matching.
func (s *Store) ListPlacesByCity(cityID uuid.UUID) ([]model.Place, error) {
	var places []model.Place
	err := s.db.Where("city_id = ?", cityID).Find(&places).Error
	return places, err
}
