// Package health computes the knowledge-base scorecard: orphans, clusters,
// unused seeds, and per-note connection suggestions. Everything here is
// advisory; failures degrade to partial or empty results instead of
// breaking note browsing.
package health

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/tanglenotes/tangle/server/service/graph"
	"github.com/tanglenotes/tangle/store"
)

// Config contains tuning for health analysis.
type Config struct {
	// OrphanWindowDays is the rolling window for orphan detection.
	OrphanWindowDays int
	// TopClusterCount limits how many clusters the overview reports.
	TopClusterCount int
	// SemanticThreshold is the minimum similarity for semantic edges.
	SemanticThreshold float64
	// SuggestionMinSimilarity is the floor for connection suggestions.
	SuggestionMinSimilarity float64
}

// DefaultConfig returns default health configuration.
func DefaultConfig() Config {
	return Config{
		OrphanWindowDays:        30,
		TopClusterCount:         5,
		SemanticThreshold:       0.7,
		SuggestionMinSimilarity: 0.55,
	}
}

// Analyzer computes the knowledge-base overview and suggestions. All derived
// state is request-scoped; the analyzer itself is safe for concurrent use.
type Analyzer struct {
	store   *store.Store
	builder *graph.Builder
	config  Config
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(s *store.Store, config Config) *Analyzer {
	if config.OrphanWindowDays <= 0 {
		config.OrphanWindowDays = 30
	}
	if config.TopClusterCount <= 0 {
		config.TopClusterCount = 5
	}
	return &Analyzer{
		store: s,
		builder: graph.NewBuilder(s, graph.Config{
			SemanticThreshold:    config.SemanticThreshold,
			MaxSemanticNeighbors: 5,
			TopClusterCount:      config.TopClusterCount,
		}),
		config: config,
	}
}

// Scorecard is the aggregate health summary, derived per request.
type Scorecard struct {
	TotalNotes int `json:"total_notes"`
	// EmbeddedPercent is round(100 * completed / total); 2 of 3 is 67.
	EmbeddedPercent int `json:"embedded_percent"`
	OrphanCount     int `json:"orphan_count"`
	// AvgConnections is the mean distinct-neighbor degree, one decimal.
	AvgConnections float64 `json:"avg_connections"`
}

// NoteDigest is a note reference for overview lists.
type NoteDigest struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedTs int64  `json:"created_ts"`
}

// ClusterDigest is a cluster summary for the overview.
type ClusterDigest struct {
	HubID       string `json:"hub_id"`
	HubTitle    string `json:"hub_title"`
	MemberCount int    `json:"member_count"`
}

// Overview is the knowledge-base dashboard payload.
type Overview struct {
	Scorecard         Scorecard       `json:"scorecard"`
	NewAndUnconnected []NoteDigest    `json:"new_and_unconnected"`
	RichestClusters   []ClusterDigest `json:"richest_clusters"`
	NeverUsedAsSeeds  []NoteDigest    `json:"never_used_as_seeds"`
}

// GetOverview computes the scorecard over all permanent notes. Only the
// initial note load can fail; every downstream signal (similarity backend,
// seed markers) degrades to partial data instead of propagating.
func (a *Analyzer) GetOverview(ctx context.Context) (*Overview, error) {
	status := store.Permanent
	notes, err := a.store.ListNotes(ctx, &store.FindNote{
		Status:           &status,
		ExcludeEmbedding: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list permanent notes")
	}

	overview := &Overview{
		NewAndUnconnected: []NoteDigest{},
		RichestClusters:   []ClusterDigest{},
		NeverUsedAsSeeds:  []NoteDigest{},
	}
	if len(notes) == 0 {
		return overview, nil
	}

	g, err := a.builder.Build(ctx, notes)
	if err != nil {
		return nil, err
	}
	adjacency := g.Adjacency()

	degrees := make(map[string]int, len(notes))
	edgeCounts := make(map[string]int, len(notes))
	for id, neighbors := range adjacency {
		degrees[id] = len(neighbors)
		edgeCounts[id] = len(neighbors)
	}

	// Scorecard.
	completed := 0
	for _, note := range notes {
		if note.EmbedStatus == store.EmbedCompleted {
			completed++
		}
	}
	totalDegree := 0
	for _, d := range degrees {
		totalDegree += d
	}
	orphans := a.collectOrphans(notes, degrees)

	overview.Scorecard = Scorecard{
		TotalNotes:      len(notes),
		EmbeddedPercent: int(math.Round(100 * float64(completed) / float64(len(notes)))),
		OrphanCount:     len(orphans),
		AvgConnections:  math.Round(10*float64(totalDegree)/float64(len(notes))) / 10,
	}

	// New and unconnected, newest first.
	sort.SliceStable(orphans, func(i, j int) bool {
		return orphans[i].CreatedTs > orphans[j].CreatedTs
	})
	overview.NewAndUnconnected = orphans

	// Richest clusters.
	ids := make([]string, 0, len(notes))
	titles := make(map[string]string, len(notes))
	for _, note := range notes {
		ids = append(ids, note.ID)
		titles[note.ID] = note.Title
	}
	for _, cluster := range graph.BuildClusters(ids, adjacency, edgeCounts, a.config.TopClusterCount) {
		overview.RichestClusters = append(overview.RichestClusters, ClusterDigest{
			HubID:       cluster.Hub,
			HubTitle:    titles[cluster.Hub],
			MemberCount: len(cluster.Members),
		})
	}

	overview.NeverUsedAsSeeds = a.collectUnusedSeeds(ctx, notes, degrees)

	return overview, nil
}

// collectOrphans returns notes created within the orphan window that have
// no edges of any kind. Older unconnected notes are not orphans.
func (a *Analyzer) collectOrphans(notes []*store.Note, degrees map[string]int) []NoteDigest {
	cutoff := time.Now().AddDate(0, 0, -a.config.OrphanWindowDays).Unix()
	orphans := []NoteDigest{}
	for _, note := range notes {
		if degrees[note.ID] == 0 && note.CreatedTs >= cutoff {
			orphans = append(orphans, NoteDigest{
				ID:        note.ID,
				Title:     note.Title,
				CreatedTs: note.CreatedTs,
			})
		}
	}
	return orphans
}

// collectUnusedSeeds returns embedded notes never consumed as generation
// seeds, ordered by degree descending. A seed-marker read failure degrades
// to an empty list; the overview must never fail on this advisory signal.
func (a *Analyzer) collectUnusedSeeds(ctx context.Context, notes []*store.Note, degrees map[string]int) []NoteDigest {
	markers, err := a.store.ListSeedUsage(ctx, &store.FindSeedUsage{})
	if err != nil {
		slog.Warn("failed to list seed usage markers", "error", err)
		return []NoteDigest{}
	}
	used := make(map[string]struct{}, len(markers))
	for _, m := range markers {
		used[m.NoteID] = struct{}{}
	}

	unused := []NoteDigest{}
	for _, note := range notes {
		if note.EmbedStatus != store.EmbedCompleted {
			continue
		}
		if _, ok := used[note.ID]; ok {
			continue
		}
		unused = append(unused, NoteDigest{
			ID:        note.ID,
			Title:     note.Title,
			CreatedTs: note.CreatedTs,
		})
	}
	sort.SliceStable(unused, func(i, j int) bool {
		if degrees[unused[i].ID] != degrees[unused[j].ID] {
			return degrees[unused[i].ID] > degrees[unused[j].ID]
		}
		return unused[i].ID < unused[j].ID
	})
	return unused
}

// Suggestion is a proposed connection for a note.
type Suggestion struct {
	NoteID     string  `json:"note_id"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}

// GetConnectionSuggestions returns the most similar permanent notes for the
// given note, similarity descending. Returns empty for unknown notes, notes
// without a completed embedding, and on any backend failure; it never
// returns an error to the caller.
func (a *Analyzer) GetConnectionSuggestions(ctx context.Context, noteID string, limit int) []Suggestion {
	if limit <= 0 {
		limit = 5
	}

	note, err := a.store.GetNote(ctx, &store.FindNote{ID: &noteID, ExcludeContent: true, ExcludeEmbedding: true})
	if err != nil || note == nil || !note.HasEmbedding() {
		return []Suggestion{}
	}

	vector, err := a.store.GetNoteEmbedding(ctx, noteID)
	if err != nil || len(vector) == 0 {
		return []Suggestion{}
	}

	status := store.Permanent
	results, err := a.store.VectorSearch(ctx, &store.VectorSearchOptions{
		Vector:   vector,
		Limit:    limit + 1, // +1 to exclude self
		MinScore: a.config.SuggestionMinSimilarity,
		Status:   &status,
	})
	if err != nil {
		slog.Warn("connection suggestions unavailable", "note_id", noteID, "error", err)
		return []Suggestion{}
	}

	suggestions := []Suggestion{}
	for _, result := range results {
		if result.Note == nil || result.Note.ID == noteID {
			continue
		}
		if len(suggestions) >= limit {
			break
		}
		suggestions = append(suggestions, Suggestion{
			NoteID:     result.Note.ID,
			Title:      result.Note.Title,
			Similarity: result.Score,
		})
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Similarity > suggestions[j].Similarity
	})
	return suggestions
}
