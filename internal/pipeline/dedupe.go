package pipeline

import (
	"github.com/google/uuid"

	"github.com/cityfeed/cityfeed/internal/store"
)

// Deduper answers "have we already submitted this URL for this source and
// city". The membership set is loaded with one query at run start; URLs
// inserted during the run are added so a page listing the same event twice
// yields one submission.
type Deduper struct {
	seen map[string]struct{}
}

// LoadDeduper snapshots the existing submission URLs for (source, city).
func LoadDeduper(s *store.Store, source string, cityID uuid.UUID) (*Deduper, error) {
	seen, err := s.SubmissionURLs(source, cityID)
	if err != nil {
		return nil, err
	}
	return &Deduper{seen: seen}, nil
}

// Seen reports whether url was already submitted.
func (d *Deduper) Seen(url string) bool {
	_, ok := d.seen[url]
	return ok
}

// Add records url as submitted for the remainder of the run.
func (d *Deduper) Add(url string) {
	d.seen[url] = struct{}{}
}
