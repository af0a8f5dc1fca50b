package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Migrate creates or upgrades the schema.
	Migrate(ctx context.Context) error

	// Note model related methods.
	CreateNote(ctx context.Context, create *Note) (*Note, error)
	ListNotes(ctx context.Context, find *FindNote) ([]*Note, error)
	GetNote(ctx context.Context, find *FindNote) (*Note, error)
	GetNoteEmbedding(ctx context.Context, id string) ([]float32, error)
	UpdateNote(ctx context.Context, update *UpdateNote) (*Note, error)

	// NoteVersion model related methods.
	CreateNoteVersion(ctx context.Context, create *NoteVersion) (*NoteVersion, error)
	ListNoteVersions(ctx context.Context, find *FindNoteVersion) ([]*NoteVersion, error)

	// SeedUsage model related methods (read-only; written elsewhere).
	ListSeedUsage(ctx context.Context, find *FindSeedUsage) ([]*SeedUsage, error)

	// VectorSearch performs nearest-neighbor search over notes with
	// completed embeddings. Drivers without vector support return
	// ErrVectorSearchUnsupported so callers can degrade predictably.
	VectorSearch(ctx context.Context, opts *VectorSearchOptions) ([]*NoteWithScore, error)

	// FullTextSearch performs ranked full-text search over note content.
	FullTextSearch(ctx context.Context, opts *FullTextSearchOptions) ([]*FullTextResult, error)
}
