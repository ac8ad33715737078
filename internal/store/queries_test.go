package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/cityfeed/cityfeed/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

func seed(t *testing.T, s *Store) (model.Source, model.City) {
	t.Helper()
	src, err := s.ResolveOrCreateSource("dice", model.SourceKindScrape)
	if err != nil {
		t.Fatalf("Seed source: %v", err)
	}
	city := model.City{Name: "Milan", Slug: "milan", Timezone: "Europe/Rome"}
	if err := s.CreateCity(&city); err != nil {
		t.Fatalf("Seed city: %v", err)
	}
	return src, city
}

func TestRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	src, city := seed(t, s)

	run, err := s.CreateRun(src.ID, city.ID)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if run.Status != model.RunStatusRunning {
		t.Errorf("New run must be running, got %s", run.Status)
	}
	if run.EndedAt != nil || run.Error != nil {
		t.Error("New run must have no terminal fields")
	}

	if err := s.CloseRun(run.ID, model.RunStatusSuccess, nil); err != nil {
		t.Fatalf("CloseRun: %v", err)
	}
	got, err := s.GetRun(run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != model.RunStatusSuccess {
		t.Errorf("Expected success, got %s", got.Status)
	}
	if got.EndedAt == nil {
		t.Error("Closed run must have ended_at")
	}
	if got.Error != nil {
		t.Errorf("Successful run must have nil error, got %q", *got.Error)
	}
}

func TestRunLifecycle_Failed(t *testing.T) {
	s := newTestStore(t)
	src, city := seed(t, s)

	run, err := s.CreateRun(src.ID, city.ID)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	msg := "fetch https://dice.fm/browse: permanent failure, status 403"
	if err := s.CloseRun(run.ID, model.RunStatusFailed, &msg); err != nil {
		t.Fatalf("CloseRun: %v", err)
	}

	got, _ := s.GetRun(run.ID)
	if got.Status != model.RunStatusFailed {
		t.Errorf("Expected failed, got %s", got.Status)
	}
	if got.Error == nil || *got.Error != msg {
		t.Errorf("Failed run must record its error, got %v", got.Error)
	}
	if got.EndedAt == nil {
		t.Error("Failed run must have ended_at")
	}
}

func TestInsertCandidateAndURLSet(t *testing.T) {
	s := newTestStore(t)
	src, city := seed(t, s)
	run, _ := s.CreateRun(src.ID, city.ID)

	raw := model.RawItem{
		SourceID: src.ID,
		CityID:   city.ID,
		URL:      "https://dice.fm/event/abc",
		Checksum: "deadbeef",
		Payload:  `{"title":"x"}`,
	}
	sub := model.Submission{
		CityID:        city.ID,
		Source:        src.Name,
		SourceURL:     "https://dice.fm/event/abc",
		Title:         "x",
		SourcePayload: `{"title":"x"}`,
		IngestionID:   &run.ID,
		Confidence:    55,
		Status:        model.SubmissionDraft,
	}
	if err := s.InsertCandidate(&raw, &sub); err != nil {
		t.Fatalf("InsertCandidate: %v", err)
	}

	urls, err := s.SubmissionURLs("dice", city.ID)
	if err != nil {
		t.Fatalf("SubmissionURLs: %v", err)
	}
	if _, ok := urls["https://dice.fm/event/abc"]; !ok {
		t.Error("Inserted URL must be in the dedup set")
	}

	// The set is scoped: same URL under another source is not seen
	other, err := s.SubmissionURLs("eventbrite", city.ID)
	if err != nil {
		t.Fatalf("SubmissionURLs: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("Dedup set must be scoped by source, got %v", other)
	}

	subs, err := s.RunSubmissions(run.ID)
	if err != nil {
		t.Fatalf("RunSubmissions: %v", err)
	}
	if len(subs) != 1 {
		t.Errorf("Expected 1 run submission, got %d", len(subs))
	}
}

func TestListRunsJoinsAndOrder(t *testing.T) {
	s := newTestStore(t)
	src, city := seed(t, s)

	first, _ := s.CreateRun(src.ID, city.ID)
	second, _ := s.CreateRun(src.ID, city.ID)
	_ = s.CloseRun(first.ID, model.RunStatusSuccess, nil)

	runs, err := s.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].Source != "dice" || runs[0].City != "milan" {
		t.Errorf("Expected joined names, got %+v", runs[0])
	}

	last, err := s.LastRun()
	if err != nil {
		t.Fatalf("LastRun: %v", err)
	}
	if last == nil {
		t.Fatal("Expected a last run")
	}
	_ = second
}

func TestGetSubmission_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetSubmission(uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	_, err = s.ResolveCityBySlug("atlantis")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	_, err = s.GetSourceByName("songkick")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}
