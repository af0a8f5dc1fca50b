package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tanglenotes/tangle/internal/profile"
	"github.com/tanglenotes/tangle/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	db, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", profile.DSN)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &DB{db: db, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Migrate creates the schema. The embedding column uses pgvector; the
// extension must already exist (CREATE EXTENSION requires superuser on
// most managed instances, so it is not attempted here).
func (d *DB) Migrate(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS note (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'FLEETING',
			embed_status TEXT NOT NULL DEFAULT 'PENDING',
			embedding vector(1536),
			created_ts BIGINT NOT NULL,
			updated_ts BIGINT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS note_version (
			id SERIAL PRIMARY KEY,
			note_id TEXT NOT NULL REFERENCES note (id),
			title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			created_ts BIGINT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS seed_usage (
			note_id TEXT PRIMARY KEY REFERENCES note (id),
			used_ts BIGINT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_note_status ON note (status);
		CREATE INDEX IF NOT EXISTS idx_note_version_note_id ON note_version (note_id);
	`
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to migrate schema")
	}
	return nil
}

// placeholder returns a placeholder for PostgreSQL (uses $1, $2, ...).
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// placeholders returns n placeholders for PostgreSQL.
func placeholders(n int) string {
	list := []string{}
	for i := 0; i < n; i++ {
		list = append(list, placeholder(i+1))
	}
	return strings.Join(list, ", ")
}
