package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/tanglenotes/tangle/store"
)

// CreateNote inserts a note. The embedding is stored as a JSON array.
func (d *DB) CreateNote(ctx context.Context, create *store.Note) (*store.Note, error) {
	var embedding any
	if len(create.Embedding) > 0 {
		data, err := json.Marshal(create.Embedding)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal embedding")
		}
		embedding = string(data)
	}

	stmt := `
		INSERT INTO note (id, title, content, status, embed_status, embedding, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := d.db.ExecContext(ctx, stmt,
		create.ID,
		create.Title,
		create.Content,
		create.Status,
		create.EmbedStatus,
		embedding,
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
	var embedding sql.NullString
	if !find.ExcludeEmbedding {
		dests = append(dests, &embedding)
	}
	if err := rows.Scan(dests...); err != nil {
		return nil, err
	}
	if embedding.Valid && embedding.String != "" {
		if err := json.Unmarshal([]byte(embedding.String), &note.Embedding); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal embedding")
		}
	}
	return &note, nil
}

// ListNotes lists notes matching the find condition, newest first.
func (d *DB) ListNotes(ctx context.Context, find *store.FindNote) ([]*store.Note, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.Status != nil {
		where, args = append(where, "status = ?"), append(args, *find.Status)
	}
	if find.EmbedStatus != nil {
		where, args = append(where, "embed_status = ?"), append(args, *find.EmbedStatus)
	}

	query := `SELECT ` + noteFields(find) + ` FROM note WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC, id DESC`
	if find.Limit != nil {
		query += " LIMIT ?"
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
	var embedding sql.NullString
	err := d.db.QueryRowContext(ctx, `SELECT embedding FROM note WHERE id = ?`, id).Scan(&embedding)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get note embedding")
	}
	if !embedding.Valid || embedding.String == "" {
		return nil, nil
	}
	var vector []float32
	if err := json.Unmarshal([]byte(embedding.String), &vector); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal embedding")
	}
	return vector, nil
}

// UpdateNote applies the update and returns the updated note.
func (d *DB) UpdateNote(ctx context.Context, update *store.UpdateNote) (*store.Note, error) {
	set, args := []string{}, []any{}
	if update.Content != nil {
		set, args = append(set, "content = ?"), append(args, *update.Content)
	}
	if update.EmbedStatus != nil {
		set, args = append(set, "embed_status = ?"), append(args, *update.EmbedStatus)
	}
	if update.UpdatedTs != nil {
		set, args = append(set, "updated_ts = ?"), append(args, *update.UpdatedTs)
	}
	if len(set) == 0 {
		return nil, errors.New("update has no fields to set")
	}
	args = append(args, update.ID)

	stmt := `UPDATE note SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "failed to update note")
	}

	return d.GetNote(ctx, &store.FindNote{ID: &update.ID, ExcludeEmbedding: true})
}
