package store

import "context"

// NoteVersion is a snapshot of a note's title and content taken immediately
// before a mutation. Versions are append-only; nothing in this codebase
// deletes them.
type NoteVersion struct {
	ID        int32
	NoteID    string
	Title     string
	Content   string
	CreatedTs int64
}

// FindNoteVersion is the find condition for note versions.
type FindNoteVersion struct {
	NoteID *string
	Limit  *int
}

// CreateNoteVersion appends a version record for a note.
func (s *Store) CreateNoteVersion(ctx context.Context, create *NoteVersion) (*NoteVersion, error) {
	return s.driver.CreateNoteVersion(ctx, create)
}

// ListNoteVersions lists version records, newest first.
func (s *Store) ListNoteVersions(ctx context.Context, find *FindNoteVersion) ([]*NoteVersion, error) {
	return s.driver.ListNoteVersions(ctx, find)
}
