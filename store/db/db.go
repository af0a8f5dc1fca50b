package db

import (
	"github.com/pkg/errors"

	"github.com/tanglenotes/tangle/internal/profile"
	"github.com/tanglenotes/tangle/store"
	"github.com/tanglenotes/tangle/store/db/postgres"
	"github.com/tanglenotes/tangle/store/db/sqlite"
)

// PostgreSQL is the production driver: pgvector nearest-neighbor search and
// ts_rank full-text search are both available.
// SQLite is for development and small installs: full-text search works, the
// vector search reports itself unsupported and the services degrade to
// wikilink-only / full-text-only behavior.

// NewDBDriver creates new db driver based on profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'postgres' and 'sqlite' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
