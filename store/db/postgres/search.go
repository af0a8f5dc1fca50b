package postgres

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/tanglenotes/tangle/store"
)

// VectorSearch performs cosine-similarity search using pgvector. Only notes
// with a completed embedding are candidates. The <=> operator computes
// cosine distance (1 - cosine_similarity), so ordering by distance ASC
// returns the most similar first.
func (d *DB) VectorSearch(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.NoteWithScore, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, title, content, status, embed_status, created_ts, updated_ts,
			1 - (embedding <=> $1) AS score
		FROM note
		WHERE embed_status = $2
			AND embedding IS NOT NULL
			AND 1 - (embedding <=> $1) >= $3
	`
	args := []any{pgvector.NewVector(opts.Vector), store.EmbedCompleted, opts.MinScore}
	if opts.Status != nil {
		query += ` AND status = $4`
		args = append(args, *opts.Status)
	}
	query += ` ORDER BY embedding <=> $1 LIMIT ` + placeholder(len(args)+1)
	args = append(args, limit)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to vector search")
	}
	defer rows.Close()

	results := []*store.NoteWithScore{}
	for rows.Next() {
		var result store.NoteWithScore
		var note store.Note
		if err := rows.Scan(
			&note.ID,
			&note.Title,
			&note.Content,
			&note.Status,
			&note.EmbedStatus,
			&note.CreatedTs,
			&note.UpdatedTs,
			&result.Score,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan vector search result")
		}
		result.Note = &note
		results = append(results, &result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// FullTextSearch performs ranked full-text search with ts_rank. The
// 'simple' configuration handles mixed-language content better than
// language-specific stemming.
func (d *DB) FullTextSearch(ctx context.Context, opts *store.FullTextSearchOptions) ([]*store.FullTextResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, title, content, status, embed_status, created_ts, updated_ts,
			ts_headline('simple', content, plainto_tsquery('simple', $1), 'MaxWords=24, MinWords=12') AS snippet,
			ts_rank(to_tsvector('simple', coalesce(title, '') || ' ' || coalesce(content, '')), plainto_tsquery('simple', $1)) AS rank
		FROM note
		WHERE to_tsvector('simple', coalesce(title, '') || ' ' || coalesce(content, '')) @@ plainto_tsquery('simple', $1)
	`
	args := []any{opts.Query}
	if opts.Status != nil {
		query += ` AND status = $2`
		args = append(args, *opts.Status)
	}
	query += ` ORDER BY rank DESC, updated_ts DESC LIMIT ` + placeholder(len(args)+1)
	args = append(args, limit)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to full-text search")
	}
	defer rows.Close()

	results := []*store.FullTextResult{}
	for rows.Next() {
		var result store.FullTextResult
		var note store.Note
		if err := rows.Scan(
			&note.ID,
			&note.Title,
			&note.Content,
			&note.Status,
			&note.EmbedStatus,
			&note.CreatedTs,
			&note.UpdatedTs,
			&result.Snippet,
			&result.Rank,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan full-text result")
		}
		result.Note = &note
		results = append(results, &result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
