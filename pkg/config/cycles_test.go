package config

import (
	"fmt"
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ring(size int) map[string][]string {
	graph := make(map[string][]string, size)

	for i := range size {
		graph[fmt.Sprintf("n%03d", i)] = []string{fmt.Sprintf("n%03d", (i+1)%size)}
	}

	return graph
}

func TestFindCycles(t *testing.T) {
	tests := []struct {
		name  string
		graph map[string][]string
		want  []string
	}{
		{
			name:  "triangle with a dependent",
			graph: map[string][]string{"a": {"b"}, "b": {"c"}, "c": {"a"}, "d": {"a"}, "e": {}},
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "self reference",
			graph: map[string][]string{"x": {"x"}, "y": {"x"}},
			want:  []string{"x"},
		},
		{
			name: "two disjoint cycles",
			graph: map[string][]string{
				"a": {"b"}, "b": {"a"},
				"c": {"d"}, "d": {"c"},
				"e": {"c"},
			},
			want: []string{"a", "b", "c", "d"},
		},
		{
			name:  "cycle reached through a tail",
			graph: map[string][]string{"head": {"mid"}, "mid": {"loop1"}, "loop1": {"loop2"}, "loop2": {"loop1"}},
			want:  []string{"loop1", "loop2"},
		},
		{
			name:  "overlapping cycles",
			graph: map[string][]string{"a": {"b", "c"}, "b": {"a"}, "c": {"d"}, "d": {"a"}},
			want:  []string{"a", "b", "c", "d"},
		},
		{
			name:  "chain",
			graph: map[string][]string{"a": {"b"}, "b": {"c"}, "c": nil},
			want:  []string{},
		},
		{
			name:  "diamond",
			graph: map[string][]string{"top": {"left", "right"}, "left": {"bottom"}, "right": {"bottom"}, "bottom": {}},
			want:  []string{},
		},
		{
			name:  "edges to unknown nodes",
			graph: map[string][]string{"a": {"ghost"}, "b": {"a", "phantom"}},
			want:  []string{},
		},
		{
			name:  "empty",
			graph: map[string][]string{},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindCycles(tt.graph)
			if len(tt.want) == 0 {
				assert.Empty(t, got)

				return
			}

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindCycles_LargeRing(t *testing.T) {
	graph := ring(100)

	got := FindCycles(graph)

	assert.Len(t, got, 100)
	assert.Equal(t, slices.Sorted(maps.Keys(graph)), got)
}

func TestFindCycles_RepeatedRunsAgree(t *testing.T) {
	graph := map[string][]string{"a": {"b"}, "b": {"a"}, "c": {"a"}, "d": {"d"}}
	snapshot := maps.Clone(graph)

	first := FindCycles(graph)

	for range 5 {
		assert.Equal(t, first, FindCycles(graph))
	}

	assert.Equal(t, []string{"a", "b", "d"}, first)
	assert.Equal(t, snapshot, graph, "the graph is not modified")
}
