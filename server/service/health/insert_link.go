package health

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/tanglenotes/tangle/store"
)

// InsertWikilink appends a [[Title]] reference to an orphan note's content,
// snapshotting the prior title/content as a version record first. Returns
// (nil, nil) when either id does not resolve; no partial mutation happens.
//
// The append is deliberately not deduplicated: calling this twice with the
// same pair appends the link twice and writes two snapshots. The
// read-modify-write is unsynchronized; concurrent inserts against the same
// orphan can double-append. This is a low-frequency, human-curated action,
// so that race is documented rather than locked away.
func (a *Analyzer) InsertWikilink(ctx context.Context, orphanID, targetID string) (*store.Note, error) {
	orphan, err := a.store.GetNote(ctx, &store.FindNote{ID: &orphanID, ExcludeEmbedding: true})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get orphan note")
	}
	if orphan == nil {
		return nil, nil
	}

	target, err := a.store.GetNote(ctx, &store.FindNote{ID: &targetID, ExcludeContent: true, ExcludeEmbedding: true})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get target note")
	}
	if target == nil {
		return nil, nil
	}

	// Snapshot before mutating so the audit trail always has the pre-link
	// content.
	if _, err := a.store.CreateNoteVersion(ctx, &store.NoteVersion{
		NoteID:    orphan.ID,
		Title:     orphan.Title,
		Content:   orphan.Content,
		CreatedTs: time.Now().Unix(),
	}); err != nil {
		return nil, errors.Wrap(err, "failed to snapshot note version")
	}

	content := orphan.Content + fmt.Sprintf("\n\n[[%s]]", target.Title)
	embedStatus := store.EmbedStale
	now := time.Now().Unix()
	updated, err := a.store.UpdateNote(ctx, &store.UpdateNote{
		ID:          orphan.ID,
		Content:     &content,
		EmbedStatus: &embedStatus,
		UpdatedTs:   &now,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update note content")
	}
	return updated, nil
}
