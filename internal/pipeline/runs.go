package pipeline

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cityfeed/cityfeed/internal/logger"
	"github.com/cityfeed/cityfeed/internal/metrics"
	"github.com/cityfeed/cityfeed/internal/model"
	"github.com/cityfeed/cityfeed/internal/store"
)

// RunTracker owns the ingestion run lifecycle. A run is opened in the
// running state before any fetch and closed exactly once: success, or
// failed with the error message recorded.
type RunTracker struct {
	store  *store.Store
	source string
}

func NewRunTracker(s *store.Store, source string) *RunTracker {
	return &RunTracker{store: s, source: source}
}

// Start opens a run for (source, city).
func (t *RunTracker) Start(sourceID, cityID uuid.UUID) (model.IngestionRun, error) {
	return t.store.CreateRun(sourceID, cityID)
}

// Succeed writes the terminal success transition.
func (t *RunTracker) Succeed(runID uuid.UUID) error {
	if err := t.store.CloseRun(runID, model.RunStatusSuccess, nil); err != nil {
		return err
	}
	metrics.RunsTotal.WithLabelValues(t.source, string(model.RunStatusSuccess)).Inc()
	return nil
}

// Fail writes the terminal failure transition with the cause recorded.
func (t *RunTracker) Fail(runID uuid.UUID, cause error) {
	msg := cause.Error()
	if err := t.store.CloseRun(runID, model.RunStatusFailed, &msg); err != nil {
		logger.Error("closing failed run",
			zap.String("run_id", runID.String()),
			zap.Error(err))
	}
	metrics.RunsTotal.WithLabelValues(t.source, string(model.RunStatusFailed)).Inc()
}
