package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iamredrum/treecat/corpus"
	"github.com/iamredrum/treecat/matrix"
	"github.com/iamredrum/treecat/tree"
)

func newInt32(rows [][]int32) *matrix.Int32Matrix {
	m := matrix.NewInt32Matrix(len(rows), len(rows[0]))
	for i, row := range rows {
		for j, v := range row {
			m.Set(i, j, v)
		}
	}
	return m
}

// one row over two binary features: f0 observes category 0, f1
// observes category 1
func tinyPairCorpus(t *testing.T) *corpus.Corpus {
	data, err := corpus.New([]*matrix.Int32Matrix{
		newInt32([][]int32{{1, 0}}),
		newInt32([][]int32{{0, 1}}),
	})
	assert.NoError(t, err)
	return data
}

// four rows over three features with categories 2, 3 and 2
func crossCorpus(t *testing.T) *corpus.Corpus {
	data, err := corpus.New([]*matrix.Int32Matrix{
		newInt32([][]int32{{1, 0}, {0, 1}, {1, 0}, {0, 0}}),
		newInt32([][]int32{{1, 0, 0}, {0, 2, 0}, {0, 0, 1}, {1, 0, 1}}),
		newInt32([][]int32{{0, 1}, {1, 0}, {1, 0}, {0, 3}}),
	})
	assert.NoError(t, err)
	return data
}

var crossAssignments = [][]int32{
	{0, 0, 0},
	{1, 1, 1},
	{0, 1, 1},
	{1, 0, 0},
}

// star tree 0-2, 1-2 with the crossCorpus rows tallied under
// crossAssignments
func crossStats(t *testing.T) (*tree.Structure, *SuffStats, *corpus.Corpus) {
	data := crossCorpus(t)
	tr := tree.New(3)
	tr.SetEdges([][2]int{{0, 2}, {1, 2}})
	ss := NewSuffStats(tr, data, 2)
	for rowID, assignment := range crossAssignments {
		ss.Add(rowID, assignment)
	}
	return tr, ss, data
}
