package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/iamredrum/treecat/tree"
)

func crossServer(t *testing.T) *Server {
	tr, ss, _ := crossStats(t)
	config := Config{NumClusters: 2, AnnealingEpochs: 2.0}
	return NewServer(tr, ss, config, rand.New(rand.NewSource(5)))
}

// with no observed rows the posterior collapses to the prior and a
// single-unit row scores 1/(K_0 * K_1)
func TestLogProbPriorPredictive(t *testing.T) {
	data := tinyPairCorpus(t)
	tr := tree.New(2)
	ss := NewSuffStats(tr, data, 2)
	server := NewServer(tr, ss, tinyConfig(), rand.New(rand.NewSource(1)))

	logprob := server.LogProb(data.Row(0))
	assert.InDelta(t, math.Log(0.25), logprob, 1e-9)
}

func TestLogProbOracle(t *testing.T) {
	server := crossServer(t)

	query := [][]int32{{1, 0}, {0, 2, 0}, {1, 1}}
	assert.InDelta(t, -5.468858923725851, server.LogProb(query), 1e-9)
}

// the predictive over all single-unit rows is a proper distribution
func TestLogProbNormalized(t *testing.T) {
	server := crossServer(t)

	total := 0.0
	for c0 := 0; c0 < 2; c0 += 1 {
		for c1 := 0; c1 < 3; c1 += 1 {
			for c2 := 0; c2 < 2; c2 += 1 {
				row := [][]int32{{0, 0}, {0, 0, 0}, {0, 0}}
				row[0][c0] = 1
				row[1][c1] = 1
				row[2][c2] = 1
				total += math.Exp(server.LogProb(row))
			}
		}
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestPosteriorLatentRowsSumToOne(t *testing.T) {
	server := crossServer(t)

	latent := server.Posterior().Latent
	V, _ := latent.Shape()
	for v := 0; v < V; v += 1 {
		assert.InDelta(t, 1.0, floats.Sum(latent.RowView(v)), 1e-12)
	}
}

func TestPosteriorJointsNormalized(t *testing.T) {
	server := crossServer(t)

	for _, joint := range server.Posterior().LatentLatent {
		total := 0.0
		M, _ := joint.Shape()
		for m := 0; m < M; m += 1 {
			total += floats.Sum(joint.RowView(m))
		}
		assert.InDelta(t, 1.0, total, 1e-12)
	}
}

// the observed-latent correction makes the cluster marginal of each
// feature table agree exactly with the vertex posterior
func TestPosteriorClusterMarginalsAgree(t *testing.T) {
	server := crossServer(t)
	posterior := server.Posterior()

	V, M := posterior.Latent.Shape()
	for v := 0; v < V; v += 1 {
		obsLat := posterior.ObservedLatent[v]
		K, _ := obsLat.Shape()
		for m := 0; m < M; m += 1 {
			colSum := 0.0
			for c := 0; c < K; c += 1 {
				colSum += obsLat.Get(c, m)
			}
			assert.InDelta(t, posterior.Latent.Get(v, m), colSum, 1e-12)
		}
	}
}

func TestSampleZeroCountsReturnsZeros(t *testing.T) {
	tr, ss, data := crossStats(t)
	config := Config{NumClusters: 2, AnnealingEpochs: 2.0}
	server := NewServer(tr, ss, config, rand.New(rand.NewSource(9)))

	latentBefore := server.Posterior().Latent.Clone()
	vertBefore := ss.VertSS.Clone()

	sample := server.Sample(data.ZeroRow(), []int32{0, 0, 0})

	assert.Equal(t, []int32{0, 0}, sample[0])
	assert.Equal(t, []int32{0, 0, 0}, sample[1])
	assert.Equal(t, []int32{0, 0}, sample[2])

	// the query left the posterior and the statistics untouched
	V, _ := latentBefore.Shape()
	for v := 0; v < V; v += 1 {
		assert.Equal(t, latentBefore.RowView(v), server.Posterior().Latent.RowView(v))
	}
	assert.True(t, ss.VertSS.Equal(vertBefore))
}

func TestSampleRequestedTotals(t *testing.T) {
	server := crossServer(t)

	sample := server.Sample([][]int32{{0, 0}, {0, 0, 0}, {0, 0}}, []int32{2, 0, 3})

	total0 := int32(0)
	for _, c := range sample[0] {
		assert.True(t, c >= 0)
		total0 += c
	}
	assert.Equal(t, int32(2), total0)
	assert.Equal(t, []int32{0, 0, 0}, sample[1])
	total2 := int32(0)
	for _, c := range sample[2] {
		assert.True(t, c >= 0)
		total2 += c
	}
	assert.Equal(t, int32(3), total2)
}

func TestSampleConditioned(t *testing.T) {
	server := crossServer(t)

	// conditioning data flows through the same upward pass as logprob
	sample := server.Sample([][]int32{{1, 0}, {0, 2, 0}, {0, 0}}, []int32{0, 0, 4})
	total := int32(0)
	for _, c := range sample[2] {
		total += c
	}
	assert.Equal(t, int32(4), total)
}

func TestServerShapeChecks(t *testing.T) {
	server := crossServer(t)

	assert.PanicsWithValue(t, ErrShapeMismatch, func() {
		server.LogProb([][]int32{{0, 0}, {0, 0, 0}})
	})
	assert.PanicsWithValue(t, ErrShapeMismatch, func() {
		server.LogProb([][]int32{{0, 0}, {0, 0}, {0, 0}})
	})
	assert.PanicsWithValue(t, ErrShapeMismatch, func() {
		server.Sample([][]int32{{0, 0}, {0, 0, 0}, {0, 0}}, []int32{0, 0})
	})
}

func TestMakePosteriorShapeChecks(t *testing.T) {
	_, ss, _ := crossStats(t)

	// statistics built for a three vertex tree against a two vertex
	// tree is a contract violation
	assert.PanicsWithValue(t, ErrShapeMismatch, func() {
		MakePosterior(tree.New(2), ss)
	})
}

// a server built from training statistics answers finite queries for
// every training row
func TestServerScoresTrainedRows(t *testing.T) {
	data := crossCorpus(t)
	trainer, err := NewTrainer(data, tinyConfig())
	assert.NoError(t, err)
	trainer.Train()

	server := NewServer(trainer.Tree(), trainer.SuffStats(), tinyConfig(),
		rand.New(rand.NewSource(3)))
	for rowID := 0; rowID < data.NumRows; rowID += 1 {
		logprob := server.LogProb(data.Row(rowID))
		assert.False(t, math.IsInf(logprob, 0))
		assert.False(t, math.IsNaN(logprob))
		assert.True(t, logprob < 0.0)
	}
}
