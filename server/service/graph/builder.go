package graph

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tanglenotes/tangle/store"
)

// Builder builds the merged wikilink+semantic graph over a note set.
// It holds no request state; everything derived lives in the returned Graph.
type Builder struct {
	store  *store.Store
	config Config
}

// NewBuilder creates a new Builder.
func NewBuilder(s *store.Store, config Config) *Builder {
	if config.MaxSemanticNeighbors <= 0 {
		config.MaxSemanticNeighbors = 5
	}
	return &Builder{store: s, config: config}
}

// Build constructs the graph for the given notes. Wikilink edges come from
// [[Title]] references resolved against the note set; semantic edges come
// from per-note nearest-neighbor queries. When the similarity backend is
// unsupported or failing, the wikilink-only graph is returned instead of an
// error; only context cancellation aborts.
func (b *Builder) Build(ctx context.Context, notes []*store.Note) (*Graph, error) {
	graph := &Graph{}
	if len(notes) == 0 {
		return graph, nil
	}

	index := buildTitleIndex(notes)

	edges := buildWikilinkEdges(notes, index)

	semanticEdges, err := b.buildSemanticEdges(ctx, notes)
	if err != nil {
		// Cancellation discards the partial graph entirely.
		return nil, err
	}
	edges = append(edges, semanticEdges...)
	graph.Edges = edges

	// Node edge counts are distinct-neighbor degrees over both kinds.
	neighborSets := make(map[string]map[string]struct{}, len(notes))
	for _, note := range notes {
		neighborSets[note.ID] = make(map[string]struct{})
	}
	for _, e := range edges {
		neighborSets[e.Source][e.Target] = struct{}{}
		neighborSets[e.Target][e.Source] = struct{}{}
	}
	for _, note := range notes {
		graph.Nodes = append(graph.Nodes, Node{
			ID:        note.ID,
			Title:     note.Title,
			EdgeCount: len(neighborSets[note.ID]),
		})
	}

	return graph, nil
}

// buildTitleIndex maps lowercased titles to note ids. When multiple notes
// share a title the first one encountered wins.
func buildTitleIndex(notes []*store.Note) map[string]string {
	index := make(map[string]string, len(notes))
	for _, note := range notes {
		key := strings.ToLower(note.Title)
		if _, ok := index[key]; !ok {
			index[key] = note.ID
		}
	}
	return index
}

// buildWikilinkEdges resolves [[Title]] references against the title index.
// Unresolved titles and self-references are discarded.
func buildWikilinkEdges(notes []*store.Note, index map[string]string) []Edge {
	var edges []Edge
	for _, note := range notes {
		for title := range ExtractWikilinks(note.Content) {
			targetID, ok := index[strings.ToLower(title)]
			if !ok || targetID == note.ID {
				continue
			}
			edges = append(edges, Edge{
				Source: note.ID,
				Target: targetID,
				Kind:   EdgeKindWikilink,
				Weight: 1.0,
			})
		}
	}
	return edges
}

// buildSemanticEdges queries each embedded note's nearest neighbors. Each
// note's neighbor set is computed independently, so two notes may each show
// up in the other's results; that mutual pair is kept, not deduplicated.
// Any backend failure short of cancellation degrades to no semantic edges.
func (b *Builder) buildSemanticEdges(ctx context.Context, notes []*store.Note) ([]Edge, error) {
	inSet := make(map[string]struct{}, len(notes))
	for _, note := range notes {
		inSet[note.ID] = struct{}{}
	}

	var edges []Edge
	for _, note := range notes {
		if !note.HasEmbedding() {
			continue
		}

		vector := note.Embedding
		if len(vector) == 0 {
			loaded, err := b.store.GetNoteEmbedding(ctx, note.ID)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				slog.Warn("failed to load note embedding, skipping semantic edges",
					"note_id", note.ID, "error", err)
				return nil, nil
			}
			if len(loaded) == 0 {
				continue
			}
			vector = loaded
		}

		results, err := b.store.VectorSearch(ctx, &store.VectorSearchOptions{
			Vector:   vector,
			Limit:    b.config.MaxSemanticNeighbors + 1, // +1 to exclude self
			MinScore: b.config.SemanticThreshold,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Unsupported backends and transient failures degrade the same
			// way: the wikilink-only graph. Partial semantic edges gathered
			// so far are dropped so the result is consistent.
			slog.Warn("similarity backend unavailable, building wikilink-only graph",
				"error", err)
			return nil, nil
		}

		count := 0
		for _, result := range results {
			if result.Note == nil || result.Note.ID == note.ID {
				continue
			}
			if _, ok := inSet[result.Note.ID]; !ok {
				continue
			}
			if !result.Note.HasEmbedding() {
				continue
			}
			if count >= b.config.MaxSemanticNeighbors {
				break
			}
			edges = append(edges, Edge{
				Source: note.ID,
				Target: result.Note.ID,
				Kind:   EdgeKindSemantic,
				Weight: result.Score,
			})
			count++
		}
	}
	return edges, nil
}
