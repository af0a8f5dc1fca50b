package sqlite

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/tanglenotes/tangle/store"
)

// CreateNoteVersion appends a version record for a note.
func (d *DB) CreateNoteVersion(ctx context.Context, create *store.NoteVersion) (*store.NoteVersion, error) {
	stmt := `
		INSERT INTO note_version (note_id, title, content, created_ts)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.NoteID,
		create.Title,
		create.Content,
		create.CreatedTs,
	).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create note version")
	}
	return create, nil
}

// ListNoteVersions lists version records, newest first.
func (d *DB) ListNoteVersions(ctx context.Context, find *store.FindNoteVersion) ([]*store.NoteVersion, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.NoteID != nil {
		where, args = append(where, "note_id = ?"), append(args, *find.NoteID)
	}

	query := `
		SELECT id, note_id, title, content, created_ts
		FROM note_version
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY id DESC
	`
	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list note versions")
	}
	defer rows.Close()

	list := []*store.NoteVersion{}
	for rows.Next() {
		var version store.NoteVersion
		if err := rows.Scan(
			&version.ID,
			&version.NoteID,
			&version.Title,
			&version.Content,
			&version.CreatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan note version")
		}
		list = append(list, &version)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
