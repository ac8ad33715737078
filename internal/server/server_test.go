package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/cityfeed/cityfeed/internal/model"
	"github.com/cityfeed/cityfeed/internal/pipeline"
	"github.com/cityfeed/cityfeed/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	cfg := model.DefaultConfig()
	srv := New(":0", s, pipeline.New(cfg, s))
	t.Cleanup(srv.runner.Shutdown)
	return srv, s
}

func seedCity(t *testing.T, s *store.Store) model.City {
	t.Helper()
	lat, lng := 45.4642, 9.19
	city := model.City{Name: "Milan", Slug: "milan", Lat: &lat, Lng: &lng, Timezone: "Europe/Rome"}
	if err := s.CreateCity(&city); err != nil {
		t.Fatalf("Seed city: %v", err)
	}
	return city
}

func seedSubmission(t *testing.T, s *store.Store, city model.City, source string, kind model.SourceKind) model.Submission {
	t.Helper()
	src, err := s.ResolveOrCreateSource(source, kind)
	if err != nil {
		t.Fatalf("Seed source: %v", err)
	}
	run, err := s.CreateRun(src.ID, city.ID)
	if err != nil {
		t.Fatalf("Seed run: %v", err)
	}

	venue := "Magazzini Generali"
	raw := model.RawItem{
		SourceID: src.ID, CityID: city.ID,
		URL: "https://dice.fm/event/abc", Checksum: "deadbeef", Payload: "{}",
	}
	sub := model.Submission{
		CityID:        city.ID,
		Source:        source,
		SourceURL:     "https://dice.fm/event/abc",
		Title:         "Warehouse Night",
		VenueName:     &venue,
		SourcePayload: "{}",
		IngestionID:   &run.ID,
		Confidence:    55,
		Status:        model.SubmissionDraft,
	}
	if kind == model.SourceKindGeodata {
		lat, lng := 45.45, 9.18
		sub.SourceURL = "osm:42"
		raw.URL = "osm:42"
		sub.Lat, sub.Lng = &lat, &lng
		sub.VenueName = nil
	}
	if err := s.InsertCandidate(&raw, &sub); err != nil {
		t.Fatalf("Seed submission: %v", err)
	}
	return sub
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
}

func TestIngest_UnknownSourceRejected(t *testing.T) {
	srv, s := newTestServer(t)
	seedCity(t, s)

	rec := doJSON(t, srv, http.MethodPost, "/ingestions/songkick",
		map[string]any{"city": "milan", "url": "https://example.com"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", rec.Code, rec.Body)
	}
}

func TestIngest_UnknownCity(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/ingestions/openstreetmap",
		map[string]any{"city": "atlantis"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d: %s", rec.Code, rec.Body)
	}
}

func TestIngest_MissingCity(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/ingestions/dice", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for missing city, got %d", rec.Code)
	}
}

func TestIngest_AsyncQueued(t *testing.T) {
	srv, s := newTestServer(t)
	seedCity(t, s)

	rec := doJSON(t, srv, http.MethodPost, "/ingestions/dice",
		map[string]any{"city": "milan", "url": "https://dice.fm/browse/milan", "async": true})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", rec.Code, rec.Body)
	}
}

func TestListSubmissionsAndFilters(t *testing.T) {
	srv, s := newTestServer(t)
	city := seedCity(t, s)
	seedSubmission(t, s, city, "dice", model.SourceKindScrape)

	rec := doJSON(t, srv, http.MethodGet, "/submissions?city=milan&status=draft", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Submissions []model.Submission `json:"submissions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(resp.Submissions) != 1 {
		t.Fatalf("Expected 1 submission, got %d", len(resp.Submissions))
	}

	rec = doJSON(t, srv, http.MethodGet, "/submissions?city=milan&status=promoted", nil)
	var empty struct {
		Submissions []model.Submission `json:"submissions"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &empty)
	if len(empty.Submissions) != 0 {
		t.Errorf("Status filter must exclude drafts, got %d", len(empty.Submissions))
	}

	rec = doJSON(t, srv, http.MethodGet, "/submissions?city=atlantis", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown city filter, got %d", rec.Code)
	}
}

func TestGetSubmission(t *testing.T) {
	srv, s := newTestServer(t)
	city := seedCity(t, s)
	sub := seedSubmission(t, s, city, "dice", model.SourceKindScrape)

	rec := doJSON(t, srv, http.MethodGet, "/submissions/"+sub.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/submissions/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/submissions/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestPromoteEvent_MatchesVenue(t *testing.T) {
	srv, s := newTestServer(t)
	city := seedCity(t, s)
	sub := seedSubmission(t, s, city, "dice", model.SourceKindScrape)

	lat, lng := 45.444, 9.205
	place := model.Place{
		CityID: city.ID, Name: "Magazzini Generali", Slug: "magazzini-generali",
		Lat: &lat, Lng: &lng,
	}
	if err := s.CreatePlace(&place); err != nil {
		t.Fatalf("Seed place: %v", err)
	}

	rec := doJSON(t, srv, http.MethodPost, "/submissions/"+sub.ID.String()+"/promote", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body)
	}

	got, err := s.GetSubmission(sub.ID)
	if err != nil {
		t.Fatalf("GetSubmission: %v", err)
	}
	if got.Status != model.SubmissionPromoted {
		t.Errorf("Expected promoted, got %s", got.Status)
	}

	var resp struct {
		EventID uuid.UUID `json:"event_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	// Coordinates inherited from the matched venue
	ev, err := s.GetEvent(resp.EventID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if ev.Lat == nil || *ev.Lat != lat || ev.Lng == nil || *ev.Lng != lng {
		t.Errorf("Expected inherited coordinates, got %v,%v", ev.Lat, ev.Lng)
	}
	if ev.Slug != "warehouse-night" {
		t.Errorf("Unexpected event slug: %q", ev.Slug)
	}

	// A second promote conflicts
	rec = doJSON(t, srv, http.MethodPost, "/submissions/"+sub.ID.String()+"/promote", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 on double promote, got %d", rec.Code)
	}
}

func TestPromotePlace_FromGeodata(t *testing.T) {
	srv, s := newTestServer(t)
	city := seedCity(t, s)
	sub := seedSubmission(t, s, city, "openstreetmap", model.SourceKindGeodata)

	rec := doJSON(t, srv, http.MethodPost, "/submissions/"+sub.ID.String()+"/promote", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body)
	}

	places, err := s.ListPlacesByCity(city.ID)
	if err != nil {
		t.Fatalf("ListPlacesByCity: %v", err)
	}
	if len(places) != 1 {
		t.Fatalf("Expected 1 place, got %d", len(places))
	}
	if places[0].Name != "Warehouse Night" {
		t.Errorf("Unexpected place name: %q", places[0].Name)
	}
	if places[0].Lat == nil || places[0].Lng == nil {
		t.Error("Place must inherit submission coordinates")
	}
}

func TestRejectSubmission(t *testing.T) {
	srv, s := newTestServer(t)
	city := seedCity(t, s)
	sub := seedSubmission(t, s, city, "dice", model.SourceKindScrape)

	rec := doJSON(t, srv, http.MethodPost, "/submissions/"+sub.ID.String()+"/reject", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
	}
	got, _ := s.GetSubmission(sub.ID)
	if got.Status != model.SubmissionRejected {
		t.Errorf("Expected rejected, got %s", got.Status)
	}

	// Rejected submissions cannot be promoted
	rec = doJSON(t, srv, http.MethodPost, "/submissions/"+sub.ID.String()+"/promote", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 promoting a rejected submission, got %d", rec.Code)
	}
}

func TestAdminIngestions(t *testing.T) {
	srv, s := newTestServer(t)
	city := seedCity(t, s)
	sub := seedSubmission(t, s, city, "dice", model.SourceKindScrape)

	rec := doJSON(t, srv, http.MethodGet, "/admin/ingestions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/admin/ingestions/last", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var last store.RunInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &last); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if last.Source != "dice" || last.City != "milan" {
		t.Errorf("Unexpected last run: %+v", last)
	}

	rec = doJSON(t, srv, http.MethodGet, "/admin/ingestions/"+sub.IngestionID.String()+"/events", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Submissions []model.Submission `json:"submissions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(resp.Submissions) != 1 {
		t.Errorf("Expected 1 submission for run, got %d", len(resp.Submissions))
	}

	rec = doJSON(t, srv, http.MethodGet, "/admin/ingestions/"+uuid.NewString()+"/events", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown run, got %d", rec.Code)
	}
}

func TestAdminIngestionsLast_Empty(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/admin/ingestions/last", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 with no runs, got %d", rec.Code)
	}
}
