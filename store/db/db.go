// Package db creates the store driver from a profile.
package db

import (
	"context"

	"github.com/alexf37/ingest-demo/internal/profile"
	"github.com/alexf37/ingest-demo/store"
	"github.com/alexf37/ingest-demo/store/db/sqlite"
)

// NewDBDriver creates and migrates the ingestion log driver.
func NewDBDriver(ctx context.Context, profile *profile.Profile) (store.Driver, error) {
	driver, err := sqlite.NewDB(profile.DSN())
	if err != nil {
		return nil, err
	}
	if err := driver.Migrate(ctx); err != nil {
		driver.Close()
		return nil, err
	}
	return driver, nil
}
