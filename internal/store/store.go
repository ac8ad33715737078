package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cityfeed/cityfeed/internal/model"
)

// ErrNotFound is returned for point lookups that matched nothing.
var ErrNotFound = errors.New("not found")

// Store wraps the gorm handle. All persistence the ingestion core needs goes
// through this type; callers never touch gorm directly.
type Store struct {
	db *gorm.DB
}

// Open opens (and creates, if missing) the sqlite database at path.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Store{db: db}, nil
}

// Migrate creates or updates the schema.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(
		&model.City{},
		&model.Source{},
		&model.Category{},
		&model.IngestionRun{},
		&model.RawItem{},
		&model.Submission{},
		&model.Event{},
		&model.Place{},
	)
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
