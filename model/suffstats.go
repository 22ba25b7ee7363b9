package model

import (
	"errors"
	"sort"

	"github.com/iamredrum/treecat/corpus"
	"github.com/iamredrum/treecat/matrix"
	"github.com/iamredrum/treecat/tree"
)

var (
	ErrRowAssigned   = errors.New("model: row is already assigned")
	ErrRowUnassigned = errors.New("model: row is not assigned")
)

// SuffStats owns the exact count tallies the model needs from the
// assigned rows: vertex-cluster counts, tree edge joint counts and
// feature-cluster joint counts. Add and Remove are exact inverses, so
// the tallies depend only on the current assigned row set, never on
// the order of calls.
type SuffStats struct {
	tree *tree.Structure
	data *corpus.Corpus
	M    int

	// VertSS[v, m] counts assigned rows with cluster m at vertex v
	VertSS *matrix.Int32Matrix
	// EdgeSS[e][m1, m2] counts cluster pairs across tree edge e,
	// first axis the lower vertex; rebuilt wholesale on tree change
	EdgeSS []*matrix.Int32Matrix
	// FeatSS[v][c, m] tallies observed counts of category c against
	// cluster m at vertex v
	FeatSS []*matrix.Int32Matrix

	assigned map[int]bool
}

// NewSuffStats creates zeroed tallies for a tree and data table with
// numClusters latent clusters per vertex
func NewSuffStats(t *tree.Structure, data *corpus.Corpus, numClusters int) *SuffStats {
	V := t.NumVertices()
	ss := &SuffStats{
		tree:     t,
		data:     data,
		M:        numClusters,
		VertSS:   matrix.NewInt32Matrix(V, numClusters),
		EdgeSS:   make([]*matrix.Int32Matrix, t.NumEdges()),
		FeatSS:   make([]*matrix.Int32Matrix, V),
		assigned: make(map[int]bool),
	}
	for _, e := range t.Grid() {
		ss.EdgeSS[e.ID] = matrix.NewInt32Matrix(numClusters, numClusters)
	}
	for v := 0; v < V; v += 1 {
		ss.FeatSS[v] = matrix.NewInt32Matrix(data.Dim(v), numClusters)
	}
	return ss
}

// Add tallies one row under the given assignment vector. It panics if
// the row is already assigned.
func (this *SuffStats) Add(rowID int, assignment []int32) {
	if this.assigned[rowID] {
		panic(ErrRowAssigned)
	}
	this.apply(rowID, assignment, 1)
	this.assigned[rowID] = true
}

// Remove untallies one row using the assignment vector it was added
// with. It panics if the row is not assigned.
func (this *SuffStats) Remove(rowID int, assignment []int32) {
	if !this.assigned[rowID] {
		panic(ErrRowUnassigned)
	}
	this.apply(rowID, assignment, -1)
	delete(this.assigned, rowID)
}

func (this *SuffStats) apply(rowID int, assignment []int32, diff int32) {
	for v := 0; v < this.tree.NumVertices(); v += 1 {
		this.VertSS.Incr(v, int(assignment[v]), diff)
	}
	for _, e := range this.tree.Grid() {
		this.EdgeSS[e.ID].Incr(int(assignment[e.V1]), int(assignment[e.V2]), diff)
	}
	for v, column := range this.data.Columns {
		counts := column.RowView(rowID)
		for c, count := range counts {
			if count != 0 {
				this.FeatSS[v].Incr(c, int(assignment[v]), diff*count)
			}
		}
	}
}

// Assigned reports whether a row currently contributes to the tallies
func (this *SuffStats) Assigned(rowID int) bool {
	return this.assigned[rowID]
}

// NumAssigned returns the size of the assigned row set
func (this *SuffStats) NumAssigned() int {
	return len(this.assigned)
}

// AssignedRows returns the assigned row ids in ascending order
func (this *SuffStats) AssignedRows() []int {
	rows := make([]int, 0, len(this.assigned))
	for rowID := range this.assigned {
		rows = append(rows, rowID)
	}
	sort.Ints(rows)
	return rows
}

// RecountEdges rebuilds the per-edge joint tallies from scratch for
// the tree's current edge set. Edge identity changes whenever the
// tree does, so the old slots are discarded rather than remapped.
func (this *SuffStats) RecountEdges(assignments *matrix.Int32Matrix) {
	grid := this.tree.Grid()
	rows := this.AssignedRows()
	this.EdgeSS = make([]*matrix.Int32Matrix, len(grid))
	for _, e := range grid {
		this.EdgeSS[e.ID] = countPairs(assignments, rows, e.V1, e.V2, this.M)
	}
}

// countPairs builds the M x M contingency table of two assignment
// columns over the given rows
func countPairs(assignments *matrix.Int32Matrix, rows []int, v1, v2, M int) *matrix.Int32Matrix {
	counts := matrix.NewInt32Matrix(M, M)
	for _, rowID := range rows {
		counts.Incr(int(assignments.Get(rowID, v1)), int(assignments.Get(rowID, v2)), 1)
	}
	return counts
}
