// Package test provides an in-memory store.Driver for service tests.
// It honors the same contracts as the SQL drivers, including cosine
// similarity for vector search, so tests exercise real ranking paths
// without a database.
package test

import (
	"context"
	"database/sql"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/tanglenotes/tangle/internal/profile"
	"github.com/tanglenotes/tangle/store"
)

// FakeDriver is an in-memory store.Driver. Error fields, when set, are
// returned by the corresponding method to simulate backend failures.
type FakeDriver struct {
	mu sync.Mutex

	notes    map[string]*store.Note
	versions []*store.NoteVersion
	seeds    []*store.SeedUsage
	nextVer  int32

	ListNotesErr      error
	VectorSearchErr   error
	FullTextSearchErr error
	ListSeedUsageErr  error
}

func NewFakeDriver() *FakeDriver {
	return &FakeDriver{notes: map[string]*store.Note{}, nextVer: 1}
}

// NewFakeStore wraps a FakeDriver in a Store with a demo profile.
func NewFakeStore(driver *FakeDriver) *store.Store {
	return store.New(driver, &profile.Profile{Mode: "demo", Driver: "fake"})
}

func (d *FakeDriver) GetDB() *sql.DB { return nil }

func (d *FakeDriver) Close() error { return nil }

func (d *FakeDriver) Migrate(ctx context.Context) error { return nil }

func (d *FakeDriver) CreateNote(ctx context.Context, create *store.Note) (*store.Note, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	clone := *create
	d.notes[create.ID] = &clone
	return create, nil
}

// SeedUsed marks a note as consumed by the research orchestrator.
func (d *FakeDriver) SeedUsed(noteID string, usedTs int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seeds = append(d.seeds, &store.SeedUsage{NoteID: noteID, UsedTs: usedTs})
}

func matchNote(note *store.Note, find *store.FindNote) bool {
	if find.ID != nil && note.ID != *find.ID {
		return false
	}
	if find.Status != nil && note.Status != *find.Status {
		return false
	}
	if find.EmbedStatus != nil && note.EmbedStatus != *find.EmbedStatus {
		return false
	}
	return true
}

func projectNote(note *store.Note, find *store.FindNote) *store.Note {
	clone := *note
	if find.ExcludeContent {
		clone.Content = ""
	}
	if find.ExcludeEmbedding {
		clone.Embedding = nil
	}
	return &clone
}

func (d *FakeDriver) ListNotes(ctx context.Context, find *store.FindNote) ([]*store.Note, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ListNotesErr != nil {
		return nil, d.ListNotesErr
	}
	list := []*store.Note{}
	for _, note := range d.notes {
		if matchNote(note, find) {
			list = append(list, projectNote(note, find))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedTs != list[j].CreatedTs {
			return list[i].CreatedTs > list[j].CreatedTs
		}
		return list[i].ID > list[j].ID
	})
	if find.Limit != nil && len(list) > *find.Limit {
		list = list[:*find.Limit]
	}
	return list, nil
}

func (d *FakeDriver) GetNote(ctx context.Context, find *store.FindNote) (*store.Note, error) {
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

func (d *FakeDriver) GetNoteEmbedding(ctx context.Context, id string) ([]float32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	note, ok := d.notes[id]
	if !ok || len(note.Embedding) == 0 {
		return nil, nil
	}
	return append([]float32(nil), note.Embedding...), nil
}

func (d *FakeDriver) UpdateNote(ctx context.Context, update *store.UpdateNote) (*store.Note, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	note, ok := d.notes[update.ID]
	if !ok {
		return nil, nil
	}
	if update.Content != nil {
		note.Content = *update.Content
	}
	if update.EmbedStatus != nil {
		note.EmbedStatus = *update.EmbedStatus
	}
	if update.UpdatedTs != nil {
		note.UpdatedTs = *update.UpdatedTs
	}
	clone := *note
	return &clone, nil
}

func (d *FakeDriver) CreateNoteVersion(ctx context.Context, create *store.NoteVersion) (*store.NoteVersion, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	create.ID = d.nextVer
	d.nextVer++
	clone := *create
	d.versions = append(d.versions, &clone)
	return create, nil
}

func (d *FakeDriver) ListNoteVersions(ctx context.Context, find *store.FindNoteVersion) ([]*store.NoteVersion, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := []*store.NoteVersion{}
	for i := len(d.versions) - 1; i >= 0; i-- {
		version := d.versions[i]
		if find.NoteID != nil && version.NoteID != *find.NoteID {
			continue
		}
		clone := *version
		list = append(list, &clone)
		if find.Limit != nil && len(list) == *find.Limit {
			break
		}
	}
	return list, nil
}

func (d *FakeDriver) ListSeedUsage(ctx context.Context, find *store.FindSeedUsage) ([]*store.SeedUsage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ListSeedUsageErr != nil {
		return nil, d.ListSeedUsageErr
	}
	list := []*store.SeedUsage{}
	for _, usage := range d.seeds {
		if find.NoteID != nil && usage.NoteID != *find.NoteID {
			continue
		}
		clone := *usage
		list = append(list, &clone)
	}
	return list, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func (d *FakeDriver) VectorSearch(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.NoteWithScore, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.VectorSearchErr != nil {
		return nil, d.VectorSearchErr
	}
	results := []*store.NoteWithScore{}
	for _, note := range d.notes {
		if note.EmbedStatus != store.EmbedCompleted || len(note.Embedding) == 0 {
			continue
		}
		if opts.Status != nil && note.Status != *opts.Status {
			continue
		}
		score := cosineSimilarity(opts.Vector, note.Embedding)
		if score < opts.MinScore {
			continue
		}
		clone := *note
		results = append(results, &store.NoteWithScore{Note: &clone, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Note.ID < results[j].Note.ID
	})
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (d *FakeDriver) FullTextSearch(ctx context.Context, opts *store.FullTextSearchOptions) ([]*store.FullTextResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FullTextSearchErr != nil {
		return nil, d.FullTextSearchErr
	}
	terms := strings.Fields(strings.ToLower(opts.Query))
	results := []*store.FullTextResult{}
	for _, note := range d.notes {
		if opts.Status != nil && note.Status != *opts.Status {
			continue
		}
		var rank float64
		matched := len(terms) > 0
		for _, term := range terms {
			titleHits := strings.Count(strings.ToLower(note.Title), term)
			contentHits := strings.Count(strings.ToLower(note.Content), term)
			if titleHits+contentHits == 0 {
				matched = false
				break
			}
			rank += 3*float64(titleHits) + float64(contentHits)
		}
		if !matched {
			continue
		}
		clone := *note
		results = append(results, &store.FullTextResult{
			Note:    &clone,
			Snippet: firstLine(note.Content),
			Rank:    rank,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Rank != results[j].Rank {
			return results[i].Rank > results[j].Rank
		}
		return results[i].Note.ID < results[j].Note.ID
	})
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func firstLine(content string) string {
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		return content[:idx]
	}
	return content
}
