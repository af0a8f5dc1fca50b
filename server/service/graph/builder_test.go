package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tanglenotes/tangle/store"
	storetest "github.com/tanglenotes/tangle/store/test"
)

func newTestBuilder(t *testing.T) (*Builder, *storetest.FakeDriver) {
	t.Helper()
	driver := storetest.NewFakeDriver()
	builder := NewBuilder(storetest.NewFakeStore(driver), Config{
		SemanticThreshold:    0.7,
		MaxSemanticNeighbors: 5,
		TopClusterCount:      5,
	})
	return builder, driver
}

func permanentNote(id, title, content string) *store.Note {
	return &store.Note{
		ID:          id,
		Title:       title,
		Content:     content,
		Status:      store.Permanent,
		EmbedStatus: store.EmbedPending,
		CreatedTs:   1700000000,
		UpdatedTs:   1700000000,
	}
}

func TestBuildWikilinkEdges(t *testing.T) {
	ctx := context.Background()
	builder, _ := newTestBuilder(t)

	notes := []*store.Note{
		permanentNote("n1", "Alpha", "links to [[Beta]] and [[Missing]]"),
		permanentNote("n2", "Beta", "links back to [[alpha]]"),
		permanentNote("n3", "Gamma", "no links here"),
	}

	g, err := builder.Build(ctx, notes)
	require.NoError(t, err)

	require.Len(t, g.Edges, 2)
	require.Equal(t, Edge{Source: "n1", Target: "n2", Kind: EdgeKindWikilink, Weight: 1.0}, g.Edges[0])
	// Title resolution is case-insensitive.
	require.Equal(t, Edge{Source: "n2", Target: "n1", Kind: EdgeKindWikilink, Weight: 1.0}, g.Edges[1])

	counts := map[string]int{}
	for _, n := range g.Nodes {
		counts[n.ID] = n.EdgeCount
	}
	// The mutual pair collapses to one distinct neighbor each.
	require.Equal(t, map[string]int{"n1": 1, "n2": 1, "n3": 0}, counts)
}

func TestBuildDiscardsSelfReference(t *testing.T) {
	ctx := context.Background()
	builder, _ := newTestBuilder(t)

	notes := []*store.Note{
		permanentNote("n1", "Recursion", "see [[Recursion]]"),
	}

	g, err := builder.Build(ctx, notes)
	require.NoError(t, err)
	require.Empty(t, g.Edges)
	require.Equal(t, 0, g.Nodes[0].EdgeCount)
}

func TestBuildDuplicateTitleFirstWins(t *testing.T) {
	ctx := context.Background()
	builder, _ := newTestBuilder(t)

	notes := []*store.Note{
		permanentNote("n1", "Inbox", ""),
		permanentNote("n2", "Inbox", ""),
		permanentNote("n3", "Pointer", "[[Inbox]]"),
	}

	g, err := builder.Build(ctx, notes)
	require.NoError(t, err)
	require.Len(t, g.Edges, 1)
	require.Equal(t, "n1", g.Edges[0].Target)
}

func TestBuildSemanticEdges(t *testing.T) {
	ctx := context.Background()
	builder, driver := newTestBuilder(t)

	// Two near-identical vectors plus one orthogonal below the threshold.
	a := permanentNote("a1", "Vectors", "")
	a.Embedding = []float32{1, 0, 0}
	a.EmbedStatus = store.EmbedCompleted
	b := permanentNote("b1", "Matrices", "")
	b.Embedding = []float32{0.95, 0.05, 0}
	b.EmbedStatus = store.EmbedCompleted
	c := permanentNote("c1", "Cooking", "")
	c.Embedding = []float32{0, 0, 1}
	c.EmbedStatus = store.EmbedCompleted

	for _, n := range []*store.Note{a, b, c} {
		_, err := driver.CreateNote(ctx, n)
		require.NoError(t, err)
	}

	// The note list arrives without vectors; the builder loads them lazily.
	notes := []*store.Note{
		{ID: "a1", Title: "Vectors", Status: store.Permanent, EmbedStatus: store.EmbedCompleted},
		{ID: "b1", Title: "Matrices", Status: store.Permanent, EmbedStatus: store.EmbedCompleted},
		{ID: "c1", Title: "Cooking", Status: store.Permanent, EmbedStatus: store.EmbedCompleted},
	}

	g, err := builder.Build(ctx, notes)
	require.NoError(t, err)

	// Each of the similar pair finds the other; the mutual pair stays as two
	// edges. The orthogonal note contributes none.
	require.Len(t, g.Edges, 2)
	require.Equal(t, EdgeKindSemantic, g.Edges[0].Kind)
	require.Equal(t, "a1", g.Edges[0].Source)
	require.Equal(t, "b1", g.Edges[0].Target)
	require.Greater(t, g.Edges[0].Weight, 0.7)
	require.Equal(t, "b1", g.Edges[1].Source)
	require.Equal(t, "a1", g.Edges[1].Target)
}

func TestBuildDegradesWhenVectorSearchUnsupported(t *testing.T) {
	ctx := context.Background()
	builder, driver := newTestBuilder(t)
	driver.VectorSearchErr = store.ErrVectorSearchUnsupported

	a := permanentNote("a1", "Alpha", "[[Beta]]")
	a.EmbedStatus = store.EmbedCompleted
	a.Embedding = []float32{1, 0}
	b := permanentNote("b1", "Beta", "")
	b.EmbedStatus = store.EmbedCompleted
	b.Embedding = []float32{1, 0}

	g, err := builder.Build(ctx, []*store.Note{a, b})
	require.NoError(t, err)

	// Wikilink edges survive; semantic edges are dropped entirely.
	require.Len(t, g.Edges, 1)
	require.Equal(t, EdgeKindWikilink, g.Edges[0].Kind)
}

func TestBuildPropagatesCancellation(t *testing.T) {
	builder, driver := newTestBuilder(t)
	driver.VectorSearchErr = context.Canceled

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := permanentNote("a1", "Alpha", "")
	a.EmbedStatus = store.EmbedCompleted
	a.Embedding = []float32{1, 0}

	g, err := builder.Build(ctx, []*store.Note{a})
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, g)
}

func TestBuildEmptyNoteSet(t *testing.T) {
	builder, _ := newTestBuilder(t)
	g, err := builder.Build(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, g.Nodes)
	require.Empty(t, g.Edges)
}

func TestAdjacencyMergesEdgeKinds(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []Edge{
			{Source: "a", Target: "b", Kind: EdgeKindWikilink},
			{Source: "b", Target: "a", Kind: EdgeKindSemantic},
			{Source: "b", Target: "c", Kind: EdgeKindSemantic},
			{Source: "a", Target: "a", Kind: EdgeKindWikilink},
		},
	}
	adjacency := g.Adjacency()
	require.Equal(t, []string{"b"}, adjacency["a"])
	require.Equal(t, []string{"a", "c"}, adjacency["b"])
	require.Equal(t, []string{"b"}, adjacency["c"])
}
