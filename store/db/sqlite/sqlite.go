package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	// Import the SQLite driver.
	_ "modernc.org/sqlite"

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

	// WAL mode plus a busy timeout keeps concurrent readers happy with the
	// occasional writer.
	db, err := sql.Open("sqlite", profile.DSN+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", profile.DSN)
	}

	return &DB{db: db, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Migrate creates the schema. The embedding is stored as a JSON array so
// notes survive a move to postgres, but this driver cannot search it.
func (d *DB) Migrate(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS note (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'FLEETING',
			embed_status TEXT NOT NULL DEFAULT 'PENDING',
			embedding TEXT,
			created_ts INTEGER NOT NULL,
			updated_ts INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS note_version (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			note_id TEXT NOT NULL REFERENCES note (id),
			title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			created_ts INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS seed_usage (
			note_id TEXT PRIMARY KEY REFERENCES note (id),
			used_ts INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_note_status ON note (status);
		CREATE INDEX IF NOT EXISTS idx_note_version_note_id ON note_version (note_id);
	`
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to migrate schema")
	}
	return nil
}
