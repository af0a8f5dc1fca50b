package store

import (
	"context"

	"github.com/pkg/errors"
)

// ErrVectorSearchUnsupported is returned by drivers that cannot run
// nearest-neighbor queries (e.g. SQLite without a vector extension).
// Callers check it with errors.Is and fall back to wikilink-only or
// full-text-only behavior instead of failing the request.
var ErrVectorSearchUnsupported = errors.New("vector search is not supported by this driver")

// VectorSearchOptions are the options for nearest-neighbor search over
// notes with completed embeddings.
type VectorSearchOptions struct {
	Vector []float32
	Limit  int
	// MinScore is the minimum cosine similarity floor; results below it are
	// not returned.
	MinScore float64
	// Status restricts candidates to notes of that status when set.
	Status *NoteStatus
}

// NoteWithScore is a vector search hit. Score is cosine similarity in [0,1].
type NoteWithScore struct {
	Note  *Note
	Score float64
}

// FullTextSearchOptions are the options for ranked full-text search.
type FullTextSearchOptions struct {
	Query string
	Limit int
	// Status restricts candidates to notes of that status when set.
	Status *NoteStatus
}

// FullTextResult is a ranked full-text hit. Rank is the driver's raw
// relevance score; callers are expected to normalize it.
type FullTextResult struct {
	Note    *Note
	Snippet string
	Rank    float64
}

// VectorSearch performs nearest-neighbor search. Drivers without vector
// support return ErrVectorSearchUnsupported.
func (s *Store) VectorSearch(ctx context.Context, opts *VectorSearchOptions) ([]*NoteWithScore, error) {
	return s.driver.VectorSearch(ctx, opts)
}

// FullTextSearch performs ranked full-text search.
func (s *Store) FullTextSearch(ctx context.Context, opts *FullTextSearchOptions) ([]*FullTextResult, error) {
	return s.driver.FullTextSearch(ctx, opts)
}
