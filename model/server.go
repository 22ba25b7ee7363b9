package model

import (
	log "github.com/golang/glog"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/iamredrum/treecat/matrix"
	"github.com/iamredrum/treecat/tree"
)

// Posterior holds the four probability tables derived once from a
// sufficient statistics snapshot. The tables are never mutated after
// construction.
type Posterior struct {
	// Observed[v][c] is the marginal probability of category c at
	// feature v, reflecting present data plus expected imputed data
	Observed [][]float64
	// ObservedLatent[v][c, m] is the joint of category and cluster;
	// its cluster marginal agrees exactly with Latent
	ObservedLatent []*matrix.Float64Matrix
	// Latent[v, m] is the cluster marginal, each row summing to 1
	Latent *matrix.Float64Matrix
	// LatentLatent[e][m1, m2] is the cluster joint across tree edge
	// e, first axis the lower vertex, summing to 1 overall
	LatentLatent []*matrix.Float64Matrix
}

// MakePosterior derives posterior marginals from sufficient
// statistics under Jeffreys priors. Shape consistency between the
// tree and the statistics is a hard precondition; violations panic.
func MakePosterior(t *tree.Structure, ss *SuffStats) *Posterior {
	V := t.NumVertices()
	E := t.NumEdges()
	vertRows, M := ss.VertSS.Shape()
	if vertRows != V || E != V-1 || ss.M != M {
		panic(ErrShapeMismatch)
	}
	if len(ss.EdgeSS) != E || len(ss.FeatSS) != V {
		panic(ErrShapeMismatch)
	}
	for _, edge := range ss.EdgeSS {
		r, c := edge.Shape()
		if r != M || c != M {
			panic(ErrShapeMismatch)
		}
	}
	for _, feat := range ss.FeatSS {
		_, c := feat.Shape()
		if c != M {
			panic(ErrShapeMismatch)
		}
	}

	vertPrior := 0.5
	edgePrior := 0.5 / float64(M)
	featPrior := 0.5 / float64(M)

	latent := matrix.NewFloat64Matrix(V, M)
	for v := 0; v < V; v += 1 {
		row := latent.RowView(v)
		for m := 0; m < M; m += 1 {
			row[m] = float64(ss.VertSS.Get(v, m)) + vertPrior
		}
		floats.Scale(1.0/floats.Sum(row), row)
	}

	latentLatent := make([]*matrix.Float64Matrix, E)
	for e := 0; e < E; e += 1 {
		joint := matrix.NewFloat64Matrix(M, M)
		total := 0.0
		for m1 := 0; m1 < M; m1 += 1 {
			for m2 := 0; m2 < M; m2 += 1 {
				p := float64(ss.EdgeSS[e].Get(m1, m2)) + edgePrior
				joint.Set(m1, m2, p)
				total += p
			}
		}
		for m1 := 0; m1 < M; m1 += 1 {
			floats.Scale(1.0/total, joint.RowView(m1))
		}
		latentLatent[e] = joint
	}

	observed := make([][]float64, V)
	observedLatent := make([]*matrix.Float64Matrix, V)
	for v := 0; v < V; v += 1 {
		K, _ := ss.FeatSS[v].Shape()
		obsLat := matrix.NewFloat64Matrix(K, M)
		colSum := make([]float64, M)
		for c := 0; c < K; c += 1 {
			for m := 0; m < M; m += 1 {
				p := float64(ss.FeatSS[v].Get(c, m)) + featPrior
				obsLat.Set(c, m, p)
				colSum[m] += p
			}
		}
		// rescale each cluster column so the cluster marginal matches
		// the vertex posterior even for partially observed features
		for c := 0; c < K; c += 1 {
			row := obsLat.RowView(c)
			for m := 0; m < M; m += 1 {
				row[m] *= latent.Get(v, m) / colSum[m]
			}
		}
		observedLatent[v] = obsLat
		observed[v] = make([]float64, K)
		for c := 0; c < K; c += 1 {
			observed[v][c] = floats.Sum(obsLat.RowView(c))
		}
	}

	return &Posterior{
		Observed:       observed,
		ObservedLatent: observedLatent,
		Latent:         latent,
		LatentLatent:   latentLatent,
	}
}

// Server answers logprob and conditional sampling queries against a
// frozen posterior. Queries are pure functions of their inputs plus
// the posterior, so reads may run concurrently; only Sample consumes
// the generator and needs external serialization.
type Server struct {
	tree      *tree.Structure
	config    Config
	rng       *rand.Rand
	posterior *Posterior
	prop      *propagator
}

// NewServer derives the posterior from a sufficient statistics
// snapshot and freezes it for serving
func NewServer(t *tree.Structure, ss *SuffStats, config Config, rng *rand.Rand) *Server {
	log.Infof("Server with %d features", t.NumVertices())
	posterior := MakePosterior(t, ss)
	schedule := tree.MakeSchedule(t.Grid())
	return &Server{
		tree:      t,
		config:    config,
		rng:       rng,
		posterior: posterior,
		prop: newPropagator(t, schedule, posterior.Latent,
			posterior.LatentLatent, posterior.ObservedLatent),
	}
}

// Posterior returns the frozen posterior tables
func (this *Server) Posterior() *Posterior {
	return this.posterior
}

func (this *Server) checkRow(data [][]int32) {
	if len(data) != this.tree.NumVertices() {
		panic(ErrShapeMismatch)
	}
	for v, counts := range data {
		if len(counts) != len(this.posterior.Observed[v]) {
			panic(ErrShapeMismatch)
		}
	}
}

// LogProb computes the log probability of one row of count data
func (this *Server) LogProb(data [][]int32) float64 {
	log.V(2).Infof("Server.LogProb")
	this.checkRow(data)
	return this.prop.logProb(data)
}

// Sample draws one row from the posterior conditioned on condData;
// all-zero conditioning data gives an unconditional draw. counts[v]
// is the requested multinomial total for feature v, so zero counts
// come back as zero vectors.
func (this *Server) Sample(condData [][]int32, counts []int32) [][]int32 {
	log.V(2).Infof("Server.Sample")
	this.checkRow(condData)
	if len(counts) != this.tree.NumVertices() {
		panic(ErrShapeMismatch)
	}
	_, featSample := this.prop.sample(condData, counts, this.rng)
	return featSample
}
