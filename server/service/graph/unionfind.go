package graph

import "sort"

// unionFind is a request-scoped disjoint-set structure with path
// compression. It lives for a single BuildClusters call and is discarded;
// there is no cross-request graph cache.
type unionFind struct {
	parent map[string]string
}

func newUnionFind(ids []string) *unionFind {
	parent := make(map[string]string, len(ids))
	for _, id := range ids {
		parent[id] = id
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(id string) string {
	root := id
	for u.parent[root] != root {
		root = u.parent[root]
	}
	// Path compression.
	for u.parent[id] != root {
		u.parent[id], id = root, u.parent[id]
	}
	return root
}

func (u *unionFind) union(a, b string) {
	rootA, rootB := u.find(a), u.find(b)
	if rootA != rootB {
		u.parent[rootB] = rootA
	}
}

// BuildClusters computes connected components over the adjacency, discards
// singletons, and returns the topN largest components ordered by size
// descending. Each cluster's hub is the member with the highest edge count;
// ties break toward the smallest id so the output is deterministic.
// Amortized O(V + E).
func BuildClusters(noteIDs []string, adjacency map[string][]string, edgeCounts map[string]int, topN int) []Cluster {
	if topN <= 0 {
		topN = 5
	}

	uf := newUnionFind(noteIDs)
	for _, id := range noteIDs {
		for _, neighbor := range adjacency[id] {
			if _, ok := uf.parent[neighbor]; !ok {
				continue
			}
			uf.union(id, neighbor)
		}
	}

	// Group members by canonical root, preserving input order.
	components := make(map[string][]string)
	var roots []string
	for _, id := range noteIDs {
		root := uf.find(id)
		if _, ok := components[root]; !ok {
			roots = append(roots, root)
		}
		components[root] = append(components[root], id)
	}

	clusters := make([]Cluster, 0, len(roots))
	for _, root := range roots {
		members := components[root]
		if len(members) < 2 {
			continue
		}
		clusters = append(clusters, Cluster{
			Members: members,
			Hub:     selectHub(members, edgeCounts),
		})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		if len(clusters[i].Members) != len(clusters[j].Members) {
			return len(clusters[i].Members) > len(clusters[j].Members)
		}
		return clusters[i].Hub < clusters[j].Hub
	})

	if len(clusters) > topN {
		clusters = clusters[:topN]
	}
	return clusters
}

func selectHub(members []string, edgeCounts map[string]int) string {
	hub := ""
	best := -1
	for _, id := range members {
		count := edgeCounts[id]
		if count > best || (count == best && id < hub) {
			hub = id
			best = count
		}
	}
	return hub
}
