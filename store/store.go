// Package store provides the local ingestion log: one row per completed
// pipeline run, recording which knowledge-store memory the run created.
package store

import (
	"context"
	"database/sql"
)

// Store provides database access to the ingestion log.
type Store struct {
	driver Driver
}

// New creates a new instance of Store.
func New(driver Driver) *Store {
	return &Store{driver: driver}
}

// GetDriver returns the underlying driver.
func (s *Store) GetDriver() Driver {
	return s.driver
}

// Close closes the underlying driver.
func (s *Store) Close() error {
	return s.driver.Close()
}

// CreateIngestion appends an ingestion log entry.
func (s *Store) CreateIngestion(ctx context.Context, create *Ingestion) (*Ingestion, error) {
	return s.driver.CreateIngestion(ctx, create)
}

// ListIngestions lists ingestion log entries, newest first.
func (s *Store) ListIngestions(ctx context.Context, find *FindIngestion) ([]*Ingestion, error) {
	return s.driver.ListIngestions(ctx, find)
}

// Ingestion is one completed pipeline run.
type Ingestion struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	RecordType  string `json:"recordType"`
	MemoryID    string `json:"memoryId"`
	ActionCount int    `json:"actionCount"`
	CreatedTs   int64  `json:"createdTs"`
}

// FindIngestion filters ingestion log queries.
type FindIngestion struct {
	UserID *string
	Limit  *int
}

// Driver is the interface a store database driver implements.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Migrate applies the schema.
	Migrate(ctx context.Context) error

	CreateIngestion(ctx context.Context, create *Ingestion) (*Ingestion, error)
	ListIngestions(ctx context.Context, find *FindIngestion) ([]*Ingestion, error)
}
