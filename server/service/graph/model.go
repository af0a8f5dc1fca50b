// Package graph builds the note graph: explicit wikilink edges merged with
// vector-similarity edges, plus union-find clustering over the result.
package graph

import "sort"

// EdgeKind constants.
const (
	// EdgeKindWikilink is an edge derived from an explicit [[Title]] reference.
	EdgeKindWikilink = "wikilink"
	// EdgeKindSemantic is an edge derived from vector similarity.
	EdgeKindSemantic = "semantic"
)

// Node is a note in the graph.
type Node struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// EdgeCount is the number of distinct neighbors across both edge kinds.
	EdgeCount int `json:"edge_count"`
}

// Edge connects two notes. Edges are directed as discovered but treated as
// undirected for clustering and degree purposes. Wikilink edges weigh 1;
// semantic edges carry the raw similarity score in [0,1].
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Kind   string  `json:"kind"`
	Weight float64 `json:"weight"`
}

// Graph is the merged node/edge structure. It is derived per request and
// never persisted.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Adjacency returns the undirected adjacency as distinct neighbor lists,
// keyed by note id. Neighbor lists are sorted for deterministic iteration.
func (g *Graph) Adjacency() map[string][]string {
	sets := make(map[string]map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		sets[n.ID] = make(map[string]struct{})
	}
	for _, e := range g.Edges {
		if e.Source == e.Target {
			continue
		}
		if _, ok := sets[e.Source]; ok {
			sets[e.Source][e.Target] = struct{}{}
		}
		if _, ok := sets[e.Target]; ok {
			sets[e.Target][e.Source] = struct{}{}
		}
	}

	adjacency := make(map[string][]string, len(sets))
	for id, neighbors := range sets {
		list := make([]string, 0, len(neighbors))
		for neighbor := range neighbors {
			list = append(list, neighbor)
		}
		sort.Strings(list)
		adjacency[id] = list
	}
	return adjacency
}

// Cluster is a connected component of the graph.
type Cluster struct {
	// Members are the note ids of the component, in input order.
	Members []string `json:"members"`
	// Hub is the member with the highest edge count; ties break toward the
	// smallest id to keep output stable across runs and storage engines.
	Hub string `json:"hub"`
}

// Config contains configuration for graph building.
type Config struct {
	// SemanticThreshold is the minimum similarity score for semantic edges.
	SemanticThreshold float64
	// MaxSemanticNeighbors limits semantic neighbors considered per note.
	MaxSemanticNeighbors int
	// TopClusterCount limits how many clusters BuildClusters returns.
	TopClusterCount int
}

// DefaultConfig returns default graph configuration.
func DefaultConfig() Config {
	return Config{
		SemanticThreshold:    0.7,
		MaxSemanticNeighbors: 5,
		TopClusterCount:      5,
	}
}
