package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tanglenotes/tangle/store"
)

func TestInsertWikilink(t *testing.T) {
	analyzer, driver := newTestAnalyzer(t)
	ctx := context.Background()

	createNote(t, driver, &store.Note{ID: "orphan", Title: "Orphan", Content: "lonely note", EmbedStatus: store.EmbedCompleted})
	createNote(t, driver, &store.Note{ID: "target", Title: "Target Note", Content: "well connected"})

	updated, err := analyzer.InsertWikilink(ctx, "orphan", "target")
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, "lonely note\n\n[[Target Note]]", updated.Content)
	require.Equal(t, store.EmbedStale, updated.EmbedStatus)

	// The pre-link content is snapshotted as a version.
	versions, err := driver.ListNoteVersions(ctx, &store.FindNoteVersion{})
	require.NoError(t, err)
	require.Len(t, versions, 1)
	require.Equal(t, "orphan", versions[0].NoteID)
	require.Equal(t, "lonely note", versions[0].Content)
}

func TestInsertWikilinkTwiceAppendsTwice(t *testing.T) {
	analyzer, driver := newTestAnalyzer(t)
	ctx := context.Background()

	createNote(t, driver, &store.Note{ID: "orphan", Title: "Orphan", Content: "base"})
	createNote(t, driver, &store.Note{ID: "target", Title: "Target", Content: ""})

	_, err := analyzer.InsertWikilink(ctx, "orphan", "target")
	require.NoError(t, err)
	updated, err := analyzer.InsertWikilink(ctx, "orphan", "target")
	require.NoError(t, err)

	// No dedup: the second call appends again and snapshots again.
	require.Equal(t, "base\n\n[[Target]]\n\n[[Target]]", updated.Content)

	versions, err := driver.ListNoteVersions(ctx, &store.FindNoteVersion{})
	require.NoError(t, err)
	require.Len(t, versions, 2)
	// Versions list newest first; the second snapshot holds the once-linked
	// content.
	require.Equal(t, "base\n\n[[Target]]", versions[0].Content)
	require.Equal(t, "base", versions[1].Content)
}

func TestInsertWikilinkUnknownIDs(t *testing.T) {
	analyzer, driver := newTestAnalyzer(t)
	ctx := context.Background()

	createNote(t, driver, &store.Note{ID: "known", Title: "Known", Content: "content"})

	updated, err := analyzer.InsertWikilink(ctx, "missing", "known")
	require.NoError(t, err)
	require.Nil(t, updated)

	updated, err = analyzer.InsertWikilink(ctx, "known", "missing")
	require.NoError(t, err)
	require.Nil(t, updated)

	// No snapshot and no mutation happened.
	versions, err := driver.ListNoteVersions(ctx, &store.FindNoteVersion{})
	require.NoError(t, err)
	require.Empty(t, versions)

	note, err := driver.GetNote(ctx, &store.FindNote{ID: strPtr("known")})
	require.NoError(t, err)
	require.Equal(t, "content", note.Content)
}

func strPtr(s string) *string { return &s }
