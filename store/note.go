package store

import (
	"context"
	"fmt"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// NoteStatus is the lifecycle status of a note.
type NoteStatus string

const (
	// Permanent notes are curated, long-lived notes; the graph and health
	// computations operate on these.
	Permanent NoteStatus = "PERMANENT"
	// Fleeting notes are quick captures not yet promoted.
	Fleeting NoteStatus = "FLEETING"
)

// EmbedStatus tracks whether a note's embedding vector is current.
type EmbedStatus string

const (
	// EmbedPending means no embedding has been generated yet.
	EmbedPending EmbedStatus = "PENDING"
	// EmbedCompleted means the stored embedding matches the current content.
	EmbedCompleted EmbedStatus = "COMPLETED"
	// EmbedStale means the content changed after the embedding was generated.
	EmbedStale EmbedStatus = "STALE"
)

// Note is the persistent note record. The graph/health/search services read
// notes; the only mutation they perform is the content append done by
// the link inserter.
type Note struct {
	// ID is an opaque, time-ordered identifier. Immutable.
	ID      string
	Title   string
	Content string
	Status  NoteStatus

	// Embedding is only populated when EmbedStatus is COMPLETED and the
	// find request did not exclude it.
	Embedding   []float32
	EmbedStatus EmbedStatus

	CreatedTs int64
	UpdatedTs int64
}

// HasEmbedding reports whether the note carries a usable embedding.
func (n *Note) HasEmbedding() bool {
	return n.EmbedStatus == EmbedCompleted
}

// FindNote is the find condition for notes.
type FindNote struct {
	ID          *string
	Status      *NoteStatus
	EmbedStatus *EmbedStatus
	Limit       *int

	// ExcludeContent and ExcludeEmbedding trim the projection so large
	// payloads are not loaded when the caller only needs metadata.
	ExcludeContent   bool
	ExcludeEmbedding bool
}

// UpdateNote is the update payload for a note. Nil fields are left untouched.
type UpdateNote struct {
	ID          string
	Content     *string
	EmbedStatus *EmbedStatus
	UpdatedTs   *int64
}

// NewNoteID generates an opaque, time-ordered note identifier: a hex
// millisecond timestamp prefix keeps lexical order aligned with creation
// order, the shortuuid suffix keeps it unique.
func NewNoteID() string {
	return fmt.Sprintf("%011x%s", time.Now().UnixMilli(), shortuuid.New()[:10])
}

// CreateNote creates a note. The graph core never calls this; it exists for
// the owning application and for test fixtures.
func (s *Store) CreateNote(ctx context.Context, create *Note) (*Note, error) {
	if create.ID == "" {
		create.ID = NewNoteID()
	}
	if create.Status == "" {
		create.Status = Fleeting
	}
	if create.EmbedStatus == "" {
		create.EmbedStatus = EmbedPending
	}
	now := time.Now().Unix()
	if create.CreatedTs == 0 {
		create.CreatedTs = now
	}
	if create.UpdatedTs == 0 {
		create.UpdatedTs = create.CreatedTs
	}
	return s.driver.CreateNote(ctx, create)
}

// ListNotes lists notes matching the find condition.
func (s *Store) ListNotes(ctx context.Context, find *FindNote) ([]*Note, error) {
	return s.driver.ListNotes(ctx, find)
}

// GetNote gets a single note, or nil when no note matches.
func (s *Store) GetNote(ctx context.Context, find *FindNote) (*Note, error) {
	return s.driver.GetNote(ctx, find)
}

// GetNoteEmbedding fetches just the embedding vector of a note. Returns nil
// without error when the note has no completed embedding.
func (s *Store) GetNoteEmbedding(ctx context.Context, id string) ([]float32, error) {
	return s.driver.GetNoteEmbedding(ctx, id)
}

// UpdateNote applies the update and returns the updated note.
func (s *Store) UpdateNote(ctx context.Context, update *UpdateNote) (*Note, error) {
	return s.driver.UpdateNote(ctx, update)
}
