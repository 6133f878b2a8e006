// Package sqlite implements the ingestion log driver on sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/alexf37/ingest-demo/store"
)

// DB is the sqlite implementation of store.Driver.
type DB struct {
	db *sql.DB
}

// NewDB opens the sqlite database at dsn.
func NewDB(dsn string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite db %q", dsn)
	}
	return &DB{db: sqlDB}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS ingestion_log (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	record_type TEXT NOT NULL,
	memory_id TEXT NOT NULL,
	action_count INTEGER NOT NULL DEFAULT 0,
	created_ts BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ingestion_log_user_id ON ingestion_log (user_id);
`

// Migrate applies the schema.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to apply ingestion log schema")
	}
	return nil
}

func (d *DB) CreateIngestion(ctx context.Context, create *store.Ingestion) (*store.Ingestion, error) {
	if create.ID == "" {
		create.ID = shortuuid.New()
	}
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}

	stmt := `
		INSERT INTO ingestion_log (id, user_id, record_type, memory_id, action_count, created_ts)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := d.db.ExecContext(ctx, stmt,
		create.ID,
		create.UserID,
		create.RecordType,
		create.MemoryID,
		create.ActionCount,
		create.CreatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to insert ingestion log entry")
	}
	return create, nil
}

func (d *DB) ListIngestions(ctx context.Context, find *store.FindIngestion) ([]*store.Ingestion, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.UserID != nil {
		where = append(where, "user_id = ?")
		args = append(args, *find.UserID)
	}

	query := `
		SELECT id, user_id, record_type, memory_id, action_count, created_ts
		FROM ingestion_log
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC
	`
	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query ingestion log")
	}
	defer rows.Close()

	list := []*store.Ingestion{}
	for rows.Next() {
		var ingestion store.Ingestion
		if err := rows.Scan(
			&ingestion.ID,
			&ingestion.UserID,
			&ingestion.RecordType,
			&ingestion.MemoryID,
			&ingestion.ActionCount,
			&ingestion.CreatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan ingestion log row")
		}
		list = append(list, &ingestion)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
