package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/tanglenotes/tangle/store"
)

// CreateNote inserts a note. The embedding is optional.
func (d *DB) CreateNote(ctx context.Context, create *store.Note) (*store.Note, error) {
	stmt := `
		INSERT INTO note (id, title, content, status, embed_status, embedding, created_ts, updated_ts)
		VALUES (` + placeholders(8) + `)
	`

	var vector any
	if len(create.Embedding) > 0 {
		vector = pgvector.NewVector(create.Embedding)
	}
	if _, err := d.db.ExecContext(ctx, stmt,
		create.ID,
		create.Title,
		create.Content,
		create.Status,
		create.EmbedStatus,
		vector,
		create.CreatedTs,
		create.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create note")
	}
	return create, nil
}

func noteFields(find *store.FindNote) string {
	fields := []string{"id", "title", "status", "embed_status", "created_ts", "updated_ts"}
	if !find.ExcludeContent {
		fields = append(fields, "content")
	}
	if !find.ExcludeEmbedding {
		fields = append(fields, "embedding")
	}
	return strings.Join(fields, ", ")
}

func scanNote(rows interface{ Scan(...any) error }, find *store.FindNote) (*store.Note, error) {
	var note store.Note
	dests := []any{&note.ID, &note.Title, &note.Status, &note.EmbedStatus, &note.CreatedTs, &note.UpdatedTs}
	if !find.ExcludeContent {
		dests = append(dests, &note.Content)
	}
	var vector *pgvector.Vector
	if !find.ExcludeEmbedding {
		dests = append(dests, &vector)
	}
	if err := rows.Scan(dests...); err != nil {
		return nil, err
	}
	if vector != nil {
		note.Embedding = vector.Slice()
	}
	return &note, nil
}

// ListNotes lists notes matching the find condition, newest first.
func (d *DB) ListNotes(ctx context.Context, find *store.FindNote) ([]*store.Note, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.Status != nil {
		where, args = append(where, "status = "+placeholder(len(args)+1)), append(args, *find.Status)
	}
	if find.EmbedStatus != nil {
		where, args = append(where, "embed_status = "+placeholder(len(args)+1)), append(args, *find.EmbedStatus)
	}

	query := `SELECT ` + noteFields(find) + ` FROM note WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC, id DESC`
	if find.Limit != nil {
		query += " LIMIT " + placeholder(len(args)+1)
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list notes")
	}
	defer rows.Close()

	list := []*store.Note{}
	for rows.Next() {
		note, err := scanNote(rows, find)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan note")
		}
		list = append(list, note)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// GetNote gets a single note, or nil when no note matches.
func (d *DB) GetNote(ctx context.Context, find *store.FindNote) (*store.Note, error) {
	one := 1
	clone := *find
	clone.Limit = &one
	list, err := d.ListNotes(ctx, &clone)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// GetNoteEmbedding fetches just the embedding vector of a note.
func (d *DB) GetNoteEmbedding(ctx context.Context, id string) ([]float32, error) {
	var vector *pgvector.Vector
	err := d.db.QueryRowContext(ctx, `SELECT embedding FROM note WHERE id = $1`, id).Scan(&vector)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get note embedding")
	}
	if vector == nil {
		return nil, nil
	}
	return vector.Slice(), nil
}

// UpdateNote applies the update and returns the updated note.
func (d *DB) UpdateNote(ctx context.Context, update *store.UpdateNote) (*store.Note, error) {
	set, args := []string{}, []any{}
	if update.Content != nil {
		set, args = append(set, "content = "+placeholder(len(args)+1)), append(args, *update.Content)
	}
	if update.EmbedStatus != nil {
		set, args = append(set, "embed_status = "+placeholder(len(args)+1)), append(args, *update.EmbedStatus)
	}
	if update.UpdatedTs != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *update.UpdatedTs)
	}
	if len(set) == 0 {
		return nil, errors.New("update has no fields to set")
	}
	args = append(args, update.ID)

	stmt := `
		UPDATE note SET ` + strings.Join(set, ", ") + `
		WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, title, content, status, embed_status, created_ts, updated_ts
	`
	var note store.Note
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&note.ID,
		&note.Title,
		&note.Content,
		&note.Status,
		&note.EmbedStatus,
		&note.CreatedTs,
		&note.UpdatedTs,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to update note")
	}
	return &note, nil
}
