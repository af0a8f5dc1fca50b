// Package search fuses full-text relevance and vector similarity into one
// ranked result list. Full text is the baseline signal; the semantic
// channel is advisory and degrades away on failure.
package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/tanglenotes/tangle/plugin/embedding"
	"github.com/tanglenotes/tangle/store"
)

// Config contains tuning for hybrid search.
type Config struct {
	FullTextWeight float64
	SemanticWeight float64
	// MinSimilarity is the floor passed to the nearest-neighbor query.
	MinSimilarity float64
	// MinHybridScore drops fused results below it after rescaling.
	MinHybridScore float64
	// ChannelLimit is how many hits each channel contributes before fusion.
	ChannelLimit int
}

// DefaultConfig returns default hybrid search configuration.
func DefaultConfig() Config {
	return Config{
		FullTextWeight: 0.6,
		SemanticWeight: 0.4,
		MinSimilarity:  0.55,
		MinHybridScore: 0.1,
		ChannelLimit:   20,
	}
}

// Result is one fused search hit. Score is the rescaled hybrid score in
// [0,1].
type Result struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// HybridSearcher runs the two retrieval channels and fuses their scores.
type HybridSearcher struct {
	store    *store.Store
	embedder embedding.Service
	config   Config
}

// NewHybridSearcher creates a new HybridSearcher. embedder may be a
// disabled service; the searcher then serves full-text-only results.
func NewHybridSearcher(s *store.Store, embedder embedding.Service, config Config) *HybridSearcher {
	if config.ChannelLimit <= 0 {
		config.ChannelLimit = 20
	}
	return &HybridSearcher{store: s, embedder: embedder, config: config}
}

// Search runs hybrid retrieval for the query. A full-text failure
// propagates; a semantic failure is logged and the full-text results stand
// alone. Empty or whitespace queries return empty results without error.
func (h *HybridSearcher) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Result{}, nil
	}

	fullText, err := h.store.FullTextSearch(ctx, &store.FullTextSearchOptions{
		Query: query,
		Limit: h.config.ChannelLimit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "full-text search failed")
	}

	semantic := h.semanticChannel(ctx, query)

	return h.fuse(fullText, semantic), nil
}

// semanticChannel embeds the query and runs nearest-neighbor search. Every
// failure mode (embedder disabled, embed error, unsupported backend,
// transient query error) collapses to an empty channel.
func (h *HybridSearcher) semanticChannel(ctx context.Context, query string) []*store.NoteWithScore {
	if h.embedder == nil || !h.embedder.IsEnabled() {
		return nil
	}

	vector, err := h.embedder.Embed(ctx, query)
	if err != nil {
		slog.Warn("query embedding failed, using full-text only", "error", err)
		return nil
	}

	results, err := h.store.VectorSearch(ctx, &store.VectorSearchOptions{
		Vector:   vector,
		Limit:    h.config.ChannelLimit,
		MinScore: h.config.MinSimilarity,
	})
	if err != nil {
		slog.Warn("semantic search failed, using full-text only", "error", err)
		return nil
	}
	return results
}

// fuse combines the channels by note id:
//
//	score = fullTextWeight*normalizedRank + semanticWeight*similarity
//
// Full-text ranks are min-max normalized over the full-text result set;
// when every hit shares one raw rank, every normalized rank is 1.0 (the
// flat case carries full weight rather than dividing by zero). Fused
// scores are rescaled by the maximum, filtered, and sorted descending.
func (h *HybridSearcher) fuse(fullText []*store.FullTextResult, semantic []*store.NoteWithScore) []Result {
	type fused struct {
		id       string
		title    string
		snippet  string
		fullText float64
		semantic float64
	}
	byID := make(map[string]*fused)
	var order []string

	normalized := normalizeRanks(fullText)
	for i, ft := range fullText {
		if ft.Note == nil {
			continue
		}
		entry, ok := byID[ft.Note.ID]
		if !ok {
			entry = &fused{id: ft.Note.ID, title: ft.Note.Title}
			byID[ft.Note.ID] = entry
			order = append(order, ft.Note.ID)
		}
		entry.fullText = normalized[i]
		entry.snippet = ft.Snippet
	}
	for _, hit := range semantic {
		if hit.Note == nil {
			continue
		}
		entry, ok := byID[hit.Note.ID]
		if !ok {
			entry = &fused{id: hit.Note.ID, title: hit.Note.Title, snippet: contentSnippet(hit.Note.Content)}
			byID[hit.Note.ID] = entry
			order = append(order, hit.Note.ID)
		}
		entry.semantic = hit.Score
	}

	if len(order) == 0 {
		return []Result{}
	}

	maxScore := 0.0
	scores := make(map[string]float64, len(order))
	for id, entry := range byID {
		score := h.config.FullTextWeight*entry.fullText + h.config.SemanticWeight*entry.semantic
		scores[id] = score
		if score > maxScore {
			maxScore = score
		}
	}

	results := []Result{}
	for _, id := range order {
		entry := byID[id]
		score := scores[id]
		if maxScore > 0 {
			score /= maxScore
		}
		if score < h.config.MinHybridScore {
			continue
		}
		results = append(results, Result{
			ID:      entry.id,
			Title:   entry.title,
			Snippet: entry.snippet,
			Score:   score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	return results
}

// normalizeRanks min-max normalizes raw full-text ranks to [0,1], indexed
// by position in the input. A flat rank distribution normalizes to 1.0.
func normalizeRanks(results []*store.FullTextResult) []float64 {
	normalized := make([]float64, len(results))
	if len(results) == 0 {
		return normalized
	}

	minRank, maxRank := results[0].Rank, results[0].Rank
	for _, r := range results {
		if r.Rank < minRank {
			minRank = r.Rank
		}
		if r.Rank > maxRank {
			maxRank = r.Rank
		}
	}

	if maxRank == minRank {
		for i := range normalized {
			normalized[i] = 1.0
		}
		return normalized
	}
	for i, r := range results {
		normalized[i] = (r.Rank - minRank) / (maxRank - minRank)
	}
	return normalized
}

// contentSnippet produces a short snippet for semantic-only hits, which
// carry no full-text snippet. Rune-safe for CJK content.
func contentSnippet(content string) string {
	line := content
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	runes := []rune(strings.TrimSpace(line))
	if len(runes) > 120 {
		return string(runes[:120]) + "..."
	}
	return string(runes)
}
