package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"
)

func TestNewDefaultChain(t *testing.T) {
	tr := New(4)

	assert.Equal(t, 4, tr.NumVertices())
	assert.Equal(t, 3, tr.NumEdges())
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}, {2, 3}}, tr.Edges())
}

func TestFindEdge(t *testing.T) {
	tr := New(3)

	assert.Equal(t, tr.FindEdge(0, 1), tr.FindEdge(1, 0))
	assert.PanicsWithValue(t, ErrUnknownEdge, func() { tr.FindEdge(0, 2) })
}

func TestSetEdgesNormalizes(t *testing.T) {
	tr := New(3)
	tr.SetEdges([][2]int{{2, 0}, {2, 1}})

	assert.Equal(t, [][2]int{{0, 2}, {1, 2}}, tr.Edges())
	assert.Equal(t, 0, tr.FindEdge(2, 0))
	assert.Equal(t, 1, tr.FindEdge(1, 2))
}

func TestSetEdgesRejectsNonTrees(t *testing.T) {
	tr := New(4)

	// wrong cardinality
	assert.PanicsWithValue(t, ErrNotSpanning, func() {
		tr.SetEdges([][2]int{{0, 1}, {1, 2}})
	})
	// cycle plus disconnected vertex
	assert.PanicsWithValue(t, ErrNotSpanning, func() {
		tr.SetEdges([][2]int{{0, 1}, {1, 2}, {0, 2}})
	})
	// self edge
	assert.PanicsWithValue(t, ErrNotSpanning, func() {
		tr.SetEdges([][2]int{{0, 1}, {1, 2}, {3, 3}})
	})
}

func TestCompleteGrid(t *testing.T) {
	tr := New(4)

	complete := tr.CompleteGrid()
	assert.Equal(t, 6, len(complete))
	for k, e := range complete {
		assert.Equal(t, k, e.ID)
		assert.True(t, e.V1 < e.V2)
	}

	tr.GC()
	assert.Equal(t, 6, len(tr.CompleteGrid()))
}

func TestMakeScheduleOrder(t *testing.T) {
	tr := New(5)
	tr.SetEdges([][2]int{{0, 2}, {1, 2}, {2, 3}, {3, 4}})
	schedule := MakeSchedule(tr.Grid())

	assert.Equal(t, 5, len(schedule))
	assert.Equal(t, 0, schedule[0].Vertex)
	assert.Equal(t, -1, schedule[0].Parent)

	// every vertex appears once, after its parent
	seen := map[int]int{}
	for i, visit := range schedule {
		_, dup := seen[visit.Vertex]
		assert.False(t, dup)
		seen[visit.Vertex] = i
		if visit.Parent >= 0 {
			parentPos, ok := seen[visit.Parent]
			assert.True(t, ok)
			assert.True(t, parentPos < i)
		}
		for _, child := range visit.Children {
			assert.Equal(t, tr.FindEdge(visit.Vertex, child), tr.FindEdge(child, visit.Vertex))
		}
	}
}

func TestSampleTreeStaysSpanning(t *testing.T) {
	tr := New(6)
	complete := tr.CompleteGrid()
	logits := make([]float64, len(complete))
	rng := rand.New(rand.NewSource(42))

	edges := tr.Edges()
	for trial := 0; trial < 20; trial += 1 {
		edges = SampleTree(complete, logits, edges, 3, rng)
		assert.Equal(t, 5, len(edges))
		assert.NotPanics(t, func() { tr.SetEdges(edges) })
	}
}

func TestSampleTreeDeterministic(t *testing.T) {
	tr := New(5)
	complete := tr.CompleteGrid()
	logits := make([]float64, len(complete))
	for k := range logits {
		logits[k] = float64(k%3) - 1.0
	}

	a := SampleTree(complete, logits, tr.Edges(), 10, rand.New(rand.NewSource(7)))
	b := SampleTree(complete, logits, tr.Edges(), 10, rand.New(rand.NewSource(7)))
	assert.Equal(t, a, b)
}

func TestSampleTreeSingleVertex(t *testing.T) {
	tr := New(1)
	assert.Equal(t, 0, tr.NumEdges())

	edges := SampleTree(tr.CompleteGrid(), nil, tr.Edges(), 5, rand.New(rand.NewSource(1)))
	assert.Equal(t, 0, len(edges))
}
