package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cityfeed/cityfeed/internal/match"
	"github.com/cityfeed/cityfeed/internal/model"
	"github.com/cityfeed/cityfeed/internal/util"
)

// handlePromote turns a draft submission into a canonical record. Geodata
// submissions become places; everything else becomes an event, with the
// venue matched against the city's places to inherit coordinates.
func (s *Server) handlePromote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission id"})
		return
	}
	sub, err := s.store.GetSubmission(id)
	if err != nil {
		s.lookupError(c, err)
		return
	}
	if sub.Status == model.SubmissionPromoted {
		c.JSON(http.StatusConflict, gin.H{"error": "submission already promoted"})
		return
	}
	if sub.Status == model.SubmissionRejected {
		c.JSON(http.StatusConflict, gin.H{"error": "submission was rejected"})
		return
	}

	source, err := s.store.GetSourceByName(sub.Source)
	if err != nil {
		s.lookupError(c, err)
		return
	}

	if source.Kind == model.SourceKindGeodata {
		s.promotePlace(c, sub)
		return
	}
	s.promoteEvent(c, sub)
}

func (s *Server) promoteEvent(c *gin.Context, sub model.Submission) {
	ev := model.Event{
		CityID:      sub.CityID,
		CategoryID:  sub.CategoryID,
		Title:       sub.Title,
		Slug:        util.Slugify(sub.Title),
		Description: sub.Description,
		SourceURL:   &sub.SourceURL,
		StartAt:     sub.StartAt,
		CoverImage:  sub.Image,
		PriceMin:    sub.PriceMin,
		PriceMax:    sub.PriceMax,
	}

	if sub.VenueName != nil {
		places, err := s.store.ListPlacesByCity(sub.CityID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if place := match.Place(*sub.VenueName, places); place != nil {
			ev.Lat = place.Lat
			ev.Lng = place.Lng
		}
	}

	if err := s.store.CreateEvent(&ev); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.UpdateSubmissionStatus(sub.ID, model.SubmissionPromoted); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event_id": ev.ID, "status": string(model.SubmissionPromoted)})
}

func (s *Server) promotePlace(c *gin.Context, sub model.Submission) {
	place := model.Place{
		CityID:           sub.CityID,
		CategoryID:       sub.CategoryID,
		Name:             sub.Title,
		Slug:             util.Slugify(sub.Title),
		Description:      sub.Description,
		Address:          sub.VenueAddress,
		Lat:              sub.Lat,
		Lng:              sub.Lng,
		SourceConfidence: sub.Confidence,
	}
	if err := s.store.CreatePlace(&place); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.UpdateSubmissionStatus(sub.ID, model.SubmissionPromoted); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"place_id": place.ID, "status": string(model.SubmissionPromoted)})
}
