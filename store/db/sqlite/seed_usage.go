package sqlite

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/tanglenotes/tangle/store"
)

// ListSeedUsage lists seed-usage markers. The research-orchestration
// collaborator writes this table; tangle only reads it.
func (d *DB) ListSeedUsage(ctx context.Context, find *store.FindSeedUsage) ([]*store.SeedUsage, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.NoteID != nil {
		where, args = append(where, "note_id = ?"), append(args, *find.NoteID)
	}

	query := `
		SELECT note_id, used_ts
		FROM seed_usage
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY used_ts DESC
	`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list seed usage")
	}
	defer rows.Close()

	list := []*store.SeedUsage{}
	for rows.Next() {
		var usage store.SeedUsage
		if err := rows.Scan(&usage.NoteID, &usage.UsedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan seed usage")
		}
		list = append(list, &usage)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
