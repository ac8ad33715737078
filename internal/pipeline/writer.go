package pipeline

import (
	"github.com/google/uuid"

	"github.com/cityfeed/cityfeed/internal/model"
	"github.com/cityfeed/cityfeed/internal/store"
)

// Writer persists accepted candidates for one run: the raw audit snapshot
// and the draft submission, in one transaction.
type Writer struct {
	store  *store.Store
	source model.Source
	city   model.City
	runID  uuid.UUID
}

func NewWriter(s *store.Store, source model.Source, city model.City, runID uuid.UUID) *Writer {
	return &Writer{store: s, source: source, city: city, runID: runID}
}

// WriteEvent persists an event candidate as a draft submission.
func (w *Writer) WriteEvent(cand model.CandidateEvent, categoryID *uuid.UUID, confidence int) error {
	checksum, encoded, err := Checksum(cand.RawPayload())
	if err != nil {
		return err
	}

	raw := model.RawItem{
		SourceID: w.source.ID,
		CityID:   w.city.ID,
		URL:      cand.SourceURL,
		Checksum: checksum,
		Payload:  encoded,
	}
	sub := model.Submission{
		CityID:        w.city.ID,
		CategoryID:    categoryID,
		Source:        w.source.Name,
		SourceURL:     cand.SourceURL,
		Title:         cand.Title,
		Description:   cand.Description,
		StartAt:       cand.StartAt,
		EndAt:         cand.EndAt,
		PriceMin:      cand.PriceMin,
		PriceMax:      cand.PriceMax,
		VenueName:     cand.VenueName,
		VenueAddress:  cand.VenueAddress,
		Image:         cand.Image,
		SourcePayload: encoded,
		IngestionID:   &w.runID,
		Confidence:    confidence,
		Status:        model.SubmissionDraft,
	}
	return w.store.InsertCandidate(&raw, &sub)
}

// WritePlace persists a place candidate as a draft submission keyed by its
// synthetic URL.
func (w *Writer) WritePlace(cand model.CandidatePlace, categoryID uuid.UUID, confidence int) error {
	checksum, encoded, err := Checksum(cand.RawPayload())
	if err != nil {
		return err
	}

	raw := model.RawItem{
		SourceID: w.source.ID,
		CityID:   w.city.ID,
		URL:      cand.SyntheticURL,
		Checksum: checksum,
		Payload:  encoded,
	}
	sub := model.Submission{
		CityID:        w.city.ID,
		CategoryID:    &categoryID,
		Source:        w.source.Name,
		SourceURL:     cand.SyntheticURL,
		Title:         cand.Name,
		Description:   cand.Description,
		VenueAddress:  cand.Address,
		Lat:           cand.Lat,
		Lng:           cand.Lng,
		SourcePayload: encoded,
		IngestionID:   &w.runID,
		Confidence:    confidence,
		Status:        model.SubmissionDraft,
	}
	return w.store.InsertCandidate(&raw, &sub)
}
