package sqlite

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/tanglenotes/tangle/store"
)

// VectorSearch is not available on SQLite. Callers detect the sentinel
// with errors.Is and fall back to wikilink-only or full-text-only paths.
func (d *DB) VectorSearch(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.NoteWithScore, error) {
	return nil, store.ErrVectorSearchUnsupported
}

// FullTextSearch performs case-insensitive substring search. Rank counts
// query term occurrences with a 3x boost for title hits; crude next to
// ts_rank, but the hybrid ranker only needs a relative ordering.
func (d *DB) FullTextSearch(ctx context.Context, opts *store.FullTextSearchOptions) ([]*store.FullTextResult, error) {
	terms := strings.Fields(strings.ToLower(opts.Query))
	if len(terms) == 0 {
		return []*store.FullTextResult{}, nil
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	where, args := []string{}, []any{}
	for _, term := range terms {
		where = append(where, "(lower(title) LIKE ? OR lower(content) LIKE ?)")
		pattern := "%" + term + "%"
		args = append(args, pattern, pattern)
	}
	if opts.Status != nil {
		where = append(where, "status = ?")
		args = append(args, *opts.Status)
	}

	query := `
		SELECT id, title, content, status, embed_status, created_ts, updated_ts
		FROM note
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY updated_ts DESC
		LIMIT ?
	`
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
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan full-text result")
		}
		result.Note = &note
		result.Rank = rankOccurrences(&note, terms)
		result.Snippet = snippetAround(note.Content, terms[0])
		results = append(results, &result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// The SQL sorted by recency; re-sort by the computed rank.
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j].Rank > results[j-1].Rank; j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}
	return results, nil
}

func rankOccurrences(note *store.Note, terms []string) float64 {
	title := strings.ToLower(note.Title)
	content := strings.ToLower(note.Content)
	var rank float64
	for _, term := range terms {
		rank += 3 * float64(strings.Count(title, term))
		rank += float64(strings.Count(content, term))
	}
	return rank
}

// snippetAround returns up to 120 runes of content centered on the first
// occurrence of term, or the head of the content when absent.
func snippetAround(content, term string) string {
	const window = 120
	runes := []rune(content)
	start := 0
	if idx := strings.Index(strings.ToLower(content), term); idx > 0 {
		start = len([]rune(content[:idx]))
		if start > window/2 {
			start -= window / 2
		} else {
			start = 0
		}
	}
	end := start + window
	if end > len(runes) {
		end = len(runes)
	}
	snippet := strings.TrimSpace(string(runes[start:end]))
	return strings.ReplaceAll(snippet, "\n", " ")
}
