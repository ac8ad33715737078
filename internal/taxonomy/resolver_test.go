package taxonomy

import (
	"path/filepath"
	"testing"

	"github.com/cityfeed/cityfeed/internal/model"
	"github.com/cityfeed/cityfeed/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

func TestResolveEvent_LookupOnly(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)

	cat, err := s.CreateCategory("Club Night", "club-night", model.CategoryEvent)
	if err != nil {
		t.Fatalf("Seed category: %v", err)
	}

	id, err := r.ResolveEvent("club-night")
	if err != nil {
		t.Fatalf("ResolveEvent: %v", err)
	}
	if id == nil || *id != cat.ID {
		t.Errorf("Expected seeded category id, got %v", id)
	}

	// Unknown slugs resolve to nil and never create rows
	id, err = r.ResolveEvent("underwater-basket-weaving")
	if err != nil {
		t.Fatalf("ResolveEvent: %v", err)
	}
	if id != nil {
		t.Errorf("Unknown event slug must resolve to nil, got %v", id)
	}
	if created, _ := s.FindCategoryBySlug("underwater-basket-weaving", model.CategoryEvent); created != nil {
		t.Error("Event categories must never be auto-created")
	}

	if id, err := r.ResolveEvent(""); err != nil || id != nil {
		t.Errorf("Empty slug must resolve to nil, got %v, %v", id, err)
	}
}

func TestResolveOrCreatePlace(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)

	first, err := r.ResolveOrCreatePlace("bar", "Bar")
	if err != nil {
		t.Fatalf("ResolveOrCreatePlace: %v", err)
	}
	second, err := r.ResolveOrCreatePlace("bar", "Bar")
	if err != nil {
		t.Fatalf("ResolveOrCreatePlace: %v", err)
	}
	if first != second {
		t.Errorf("Same slug must resolve to the same category: %s vs %s", first, second)
	}

	cat, err := s.FindCategoryBySlug("bar", model.CategoryPlace)
	if err != nil || cat == nil {
		t.Fatalf("Expected created category, got %v, %v", cat, err)
	}
	if cat.Name != "Bar" {
		t.Errorf("Unexpected display name: %q", cat.Name)
	}
}

func TestTaxonomiesAreSeparate(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)

	// A place category named like an event slug must not satisfy an event
	// lookup.
	if _, err := r.ResolveOrCreatePlace("live-music", "Live Music"); err != nil {
		t.Fatalf("ResolveOrCreatePlace: %v", err)
	}
	id, err := r.ResolveEvent("live-music")
	if err != nil {
		t.Fatalf("ResolveEvent: %v", err)
	}
	if id != nil {
		t.Error("Event lookup must not see place categories")
	}
}
