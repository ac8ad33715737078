package taxonomy

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cityfeed/cityfeed/internal/model"
	"github.com/cityfeed/cityfeed/internal/store"
)

// Resolver attaches taxonomy to candidates. The two taxonomies follow
// asymmetric policies: event categories are curated and only looked up,
// place categories are auto-created from geodata tags.
type Resolver struct {
	store *store.Store
}

func NewResolver(s *store.Store) *Resolver {
	return &Resolver{store: s}
}

// ResolveEvent looks up a curated event category by slug. An unknown slug
// yields a nil id: event categories are never fabricated from source hints.
func (r *Resolver) ResolveEvent(slug string) (*uuid.UUID, error) {
	if slug == "" {
		return nil, nil
	}
	cat, err := r.store.FindCategoryBySlug(slug, model.CategoryEvent)
	if err != nil {
		return nil, fmt.Errorf("lookup event category %q: %w", slug, err)
	}
	if cat == nil {
		return nil, nil
	}
	return &cat.ID, nil
}

// ResolveOrCreatePlace returns the place category for slug, inserting it
// with the given display name when absent. Geodata produces long-tail
// categories that are safe to auto-create.
func (r *Resolver) ResolveOrCreatePlace(slug, name string) (uuid.UUID, error) {
	cat, err := r.store.FindCategoryBySlug(slug, model.CategoryPlace)
	if err != nil {
		return uuid.Nil, fmt.Errorf("lookup place category %q: %w", slug, err)
	}
	if cat != nil {
		return cat.ID, nil
	}
	created, err := r.store.CreateCategory(name, slug, model.CategoryPlace)
	if err != nil {
		return uuid.Nil, err
	}
	return created.ID, nil
}
