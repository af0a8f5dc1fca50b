package store

import "context"

// SeedUsage marks a note as already consumed as a generation seed by the
// research-orchestration collaborator. That collaborator writes these
// records; this codebase only reads them.
type SeedUsage struct {
	NoteID string
	UsedTs int64
}

// FindSeedUsage is the find condition for seed-usage markers.
type FindSeedUsage struct {
	NoteID *string
}

// ListSeedUsage lists seed-usage markers.
func (s *Store) ListSeedUsage(ctx context.Context, find *FindSeedUsage) ([]*SeedUsage, error) {
	return s.driver.ListSeedUsage(ctx, find)
}
