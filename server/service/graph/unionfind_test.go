package graph

import (
	"fmt"
	"reflect"
	"testing"
)

func TestBuildClusters(t *testing.T) {
	tests := []struct {
		name       string
		noteIDs    []string
		adjacency  map[string][]string
		edgeCounts map[string]int
		topN       int
		want       []Cluster
	}{
		{
			name:    "empty input",
			noteIDs: nil,
			topN:    5,
			want:    []Cluster{},
		},
		{
			name:    "all singletons dropped",
			noteIDs: []string{"a", "b", "c"},
			adjacency: map[string][]string{
				"a": {}, "b": {}, "c": {},
			},
			topN: 5,
			want: []Cluster{},
		},
		{
			name:    "chain forms one component with middle hub",
			noteIDs: []string{"a", "b", "c"},
			adjacency: map[string][]string{
				"a": {"b"},
				"b": {"a", "c"},
				"c": {"b"},
			},
			edgeCounts: map[string]int{"a": 1, "b": 2, "c": 1},
			topN:       5,
			want: []Cluster{
				{Members: []string{"a", "b", "c"}, Hub: "b"},
			},
		},
		{
			name:    "hub tie breaks toward smallest id",
			noteIDs: []string{"b", "a"},
			adjacency: map[string][]string{
				"a": {"b"},
				"b": {"a"},
			},
			edgeCounts: map[string]int{"a": 1, "b": 1},
			topN:       5,
			want: []Cluster{
				{Members: []string{"b", "a"}, Hub: "a"},
			},
		},
		{
			name:    "clusters ordered by size descending",
			noteIDs: []string{"a", "b", "c", "d", "e"},
			adjacency: map[string][]string{
				"a": {"b"},
				"b": {"a"},
				"c": {"d", "e"},
				"d": {"c"},
				"e": {"c"},
			},
			edgeCounts: map[string]int{"a": 1, "b": 1, "c": 2, "d": 1, "e": 1},
			topN:       5,
			want: []Cluster{
				{Members: []string{"c", "d", "e"}, Hub: "c"},
				{Members: []string{"a", "b"}, Hub: "a"},
			},
		},
		{
			name:    "equal sizes ordered by smallest hub id",
			noteIDs: []string{"x", "y", "a", "b"},
			adjacency: map[string][]string{
				"x": {"y"}, "y": {"x"},
				"a": {"b"}, "b": {"a"},
			},
			edgeCounts: map[string]int{"x": 1, "y": 1, "a": 1, "b": 1},
			topN:       5,
			want: []Cluster{
				{Members: []string{"a", "b"}, Hub: "a"},
				{Members: []string{"x", "y"}, Hub: "x"},
			},
		},
		{
			name:    "topN truncates",
			noteIDs: []string{"a", "b", "c", "d"},
			adjacency: map[string][]string{
				"a": {"b"}, "b": {"a"},
				"c": {"d"}, "d": {"c"},
			},
			edgeCounts: map[string]int{"a": 1, "b": 1, "c": 1, "d": 1},
			topN:       1,
			want: []Cluster{
				{Members: []string{"a", "b"}, Hub: "a"},
			},
		},
		{
			name:    "adjacency to unknown id ignored",
			noteIDs: []string{"a", "b"},
			adjacency: map[string][]string{
				"a": {"b", "ghost"},
				"b": {"a"},
			},
			edgeCounts: map[string]int{"a": 2, "b": 1},
			topN:       5,
			want: []Cluster{
				{Members: []string{"a", "b"}, Hub: "a"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildClusters(tt.noteIDs, tt.adjacency, tt.edgeCounts, tt.topN)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildClusters() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuildClustersLargeComponent(t *testing.T) {
	// A star of 100 spokes stays one component and the center is the hub.
	ids := []string{"hub"}
	adjacency := map[string][]string{"hub": {}}
	edgeCounts := map[string]int{"hub": 100}
	for i := 0; i < 100; i++ {
		id := fmt.Sprintf("spoke-%03d", i)
		ids = append(ids, id)
		adjacency["hub"] = append(adjacency["hub"], id)
		adjacency[id] = []string{"hub"}
		edgeCounts[id] = 1
	}

	clusters := BuildClusters(ids, adjacency, edgeCounts, 5)
	if len(clusters) != 1 {
		t.Fatalf("got %d clusters, want 1", len(clusters))
	}
	if clusters[0].Hub != "hub" {
		t.Errorf("hub = %q, want %q", clusters[0].Hub, "hub")
	}
	if len(clusters[0].Members) != 101 {
		t.Errorf("member count = %d, want 101", len(clusters[0].Members))
	}
}
