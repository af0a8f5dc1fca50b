package search

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/tanglenotes/tangle/plugin/embedding"
	"github.com/tanglenotes/tangle/store"
	storetest "github.com/tanglenotes/tangle/store/test"
)

// stubEmbedder returns a fixed vector for every input.
type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

func (s *stubEmbedder) IsEnabled() bool { return true }

func newTestSearcher(t *testing.T, embedder embedding.Service) (*HybridSearcher, *storetest.FakeDriver) {
	t.Helper()
	driver := storetest.NewFakeDriver()
	searcher := NewHybridSearcher(storetest.NewFakeStore(driver), embedder, DefaultConfig())
	return searcher, driver
}

func seedNote(t *testing.T, driver *storetest.FakeDriver, note *store.Note) {
	t.Helper()
	if note.Status == "" {
		note.Status = store.Permanent
	}
	if note.EmbedStatus == "" && len(note.Embedding) > 0 {
		note.EmbedStatus = store.EmbedCompleted
	}
	if note.EmbedStatus == "" {
		note.EmbedStatus = store.EmbedPending
	}
	note.CreatedTs = 1700000000
	note.UpdatedTs = 1700000000
	_, err := driver.CreateNote(context.Background(), note)
	require.NoError(t, err)
}

func TestSearchEmptyQuery(t *testing.T) {
	searcher, _ := newTestSearcher(t, embedding.Disabled())

	for _, query := range []string{"", "   ", "\t\n"} {
		results, err := searcher.Search(context.Background(), query)
		require.NoError(t, err)
		require.Empty(t, results)
	}
}

func TestSearchFullTextOnly(t *testing.T) {
	searcher, driver := newTestSearcher(t, embedding.Disabled())

	seedNote(t, driver, &store.Note{ID: "n1", Title: "Go concurrency", Content: "goroutines and channels"})
	seedNote(t, driver, &store.Note{ID: "n2", Title: "Gardening", Content: "tomatoes"})

	results, err := searcher.Search(context.Background(), "concurrency")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "n1", results[0].ID)
	// A lone full-text hit normalizes flat and carries full weight.
	require.Equal(t, 1.0, results[0].Score)
}

func TestSearchFlatRanksNormalizeToOne(t *testing.T) {
	searcher, driver := newTestSearcher(t, embedding.Disabled())

	// Identical term frequency gives every hit the same raw rank.
	seedNote(t, driver, &store.Note{ID: "n1", Title: "One", Content: "shared term"})
	seedNote(t, driver, &store.Note{ID: "n2", Title: "Two", Content: "shared term"})
	seedNote(t, driver, &store.Note{ID: "n3", Title: "Three", Content: "shared term"})

	results, err := searcher.Search(context.Background(), "shared")
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		require.Equal(t, 1.0, r.Score)
	}
	// Equal scores order by id ascending.
	require.Equal(t, "n1", results[0].ID)
	require.Equal(t, "n2", results[1].ID)
	require.Equal(t, "n3", results[2].ID)
}

func TestSearchFusesChannels(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{1, 0}}
	searcher, driver := newTestSearcher(t, embedder)

	// n1 matches both channels, n2 only full text, n3 only semantically.
	seedNote(t, driver, &store.Note{ID: "n1", Title: "Vector databases", Content: "vector search notes", Embedding: []float32{0.95, 0.05}})
	seedNote(t, driver, &store.Note{ID: "n2", Title: "Vector art", Content: "drawing"})
	seedNote(t, driver, &store.Note{ID: "n3", Title: "Embeddings", Content: "dense representations", Embedding: []float32{0.9, 0.1}})

	results, err := searcher.Search(context.Background(), "vector")
	require.NoError(t, err)

	// The dual-channel hit outranks the single-channel ones and rescales
	// to exactly 1.0. The weakest full-text-only hit min-max normalizes
	// to 0 and falls under the score floor.
	require.Len(t, results, 2)
	require.Equal(t, "n1", results[0].ID)
	require.Equal(t, 1.0, results[0].Score)
	require.Equal(t, "n3", results[1].ID)
	require.Less(t, results[1].Score, 1.0)

	// The semantic-only hit synthesizes a snippet from its content.
	var n3 *Result
	for i := range results {
		if results[i].ID == "n3" {
			n3 = &results[i]
		}
	}
	require.NotNil(t, n3)
	require.Equal(t, "dense representations", n3.Snippet)
}

func TestSearchSemanticFailureDegrades(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{1, 0}}
	searcher, driver := newTestSearcher(t, embedder)
	driver.VectorSearchErr = store.ErrVectorSearchUnsupported

	seedNote(t, driver, &store.Note{ID: "n1", Title: "Notes", Content: "about notes"})

	results, err := searcher.Search(context.Background(), "notes")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "n1", results[0].ID)
}

func TestSearchEmbedFailureDegrades(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("embedding API down")}
	searcher, driver := newTestSearcher(t, embedder)

	seedNote(t, driver, &store.Note{ID: "n1", Title: "Notes", Content: "about notes"})

	results, err := searcher.Search(context.Background(), "notes")
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestSearchFullTextFailurePropagates(t *testing.T) {
	searcher, driver := newTestSearcher(t, embedding.Disabled())
	driver.FullTextSearchErr = errors.New("fts index corrupt")

	_, err := searcher.Search(context.Background(), "anything")
	require.Error(t, err)
}

func TestSearchNoMatches(t *testing.T) {
	searcher, driver := newTestSearcher(t, embedding.Disabled())
	seedNote(t, driver, &store.Note{ID: "n1", Title: "Unrelated", Content: "nothing here"})

	results, err := searcher.Search(context.Background(), "xyzzy")
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestNormalizeRanks(t *testing.T) {
	results := []*store.FullTextResult{
		{Rank: 2.0},
		{Rank: 6.0},
		{Rank: 4.0},
	}
	normalized := normalizeRanks(results)
	require.Equal(t, []float64{0.0, 1.0, 0.5}, normalized)
}

func TestContentSnippetTruncation(t *testing.T) {
	long := ""
	for i := 0; i < 200; i++ {
		long += "字"
	}
	snippet := contentSnippet(long)
	require.Equal(t, 123, len([]rune(snippet)))

	require.Equal(t, "first line", contentSnippet("first line\nsecond line"))
}
