package model

import (
	"math"

	log "github.com/golang/glog"
	"golang.org/x/exp/rand"

	"github.com/iamredrum/treecat/corpus"
	"github.com/iamredrum/treecat/matrix"
	"github.com/iamredrum/treecat/tree"
)

// Trainer learns a latent tree model by subsample-annealed MCMC. Rows
// are added to and removed from a working set while the spanning tree
// over features is periodically resampled from Chow-Liu style edge
// weights. All mutating calls must be serialized by the caller.
type Trainer struct {
	data   *corpus.Corpus
	config Config
	rng    *rand.Rand

	tree     *tree.Structure
	schedule tree.Schedule

	// assignments[row, v] is the latest latent cluster sampled for
	// the cell; rows outside the assigned set keep their last stale
	// value as a warm start for a future re-add
	assignments *matrix.Int32Matrix

	ss *SuffStats
}

// NewTrainer creates a trainer in the fully unassigned state, with a
// chain-shaped initial tree
func NewTrainer(data *corpus.Corpus, config Config) (*Trainer, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	log.Infof("Trainer of %d x %d data", data.NumRows, data.NumFeatures())

	t := tree.New(data.NumFeatures())
	return &Trainer{
		data:        data,
		config:      config,
		rng:         rand.New(rand.NewSource(config.Seed)),
		tree:        t,
		schedule:    tree.MakeSchedule(t.Grid()),
		assignments: matrix.NewInt32Matrix(data.NumRows, data.NumFeatures()),
		ss:          NewSuffStats(t, data, config.NumClusters),
	}, nil
}

// Tree returns the current spanning tree over features
func (this *Trainer) Tree() *tree.Structure {
	return this.tree
}

// SuffStats returns the live sufficient statistics
func (this *Trainer) SuffStats() *SuffStats {
	return this.ss
}

// Assignments returns the N x V latent cluster assignment matrix
func (this *Trainer) Assignments() *matrix.Int32Matrix {
	return this.assignments
}

// priorPropagator builds the message passing engine over the current
// statistics plus Jeffreys priors
func (this *Trainer) priorPropagator() *propagator {
	V := this.tree.NumVertices()
	M := this.config.NumClusters

	vertProbs := matrix.NewFloat64Matrix(V, M)
	for v := 0; v < V; v += 1 {
		for m := 0; m < M; m += 1 {
			vertProbs.Set(v, m, float64(this.ss.VertSS.Get(v, m))+this.config.vertPrior())
		}
	}
	edgeProbs := make([]*matrix.Float64Matrix, this.tree.NumEdges())
	for e := range edgeProbs {
		edgeProbs[e] = matrix.NewFloat64Matrix(M, M)
		for m1 := 0; m1 < M; m1 += 1 {
			for m2 := 0; m2 < M; m2 += 1 {
				edgeProbs[e].Set(m1, m2, float64(this.ss.EdgeSS[e].Get(m1, m2))+this.config.edgePrior())
			}
		}
	}
	featProbs := make([]*matrix.Float64Matrix, V)
	for v := 0; v < V; v += 1 {
		K := this.data.Dim(v)
		featProbs[v] = matrix.NewFloat64Matrix(K, M)
		for c := 0; c < K; c += 1 {
			for m := 0; m < M; m += 1 {
				featProbs[v].Set(c, m, float64(this.ss.FeatSS[v].Get(c, m))+this.config.featPrior())
			}
		}
	}
	return newPropagator(this.tree, this.schedule, vertProbs, edgeProbs, featProbs)
}

// AddRow Gibbs samples the row's latent assignment against the
// current statistics, commits it and tallies the row. It panics if
// the row is already assigned.
func (this *Trainer) AddRow(rowID int) {
	log.V(2).Infof("Trainer.AddRow %d", rowID)
	if this.ss.Assigned(rowID) {
		panic(ErrRowAssigned)
	}
	latent, _ := this.priorPropagator().sample(this.data.Row(rowID), nil, this.rng)
	copy(this.assignments.RowView(rowID), latent)
	this.ss.Add(rowID, latent)
}

// RemoveRow untallies the row under its stored assignment; nothing is
// resampled and the stale assignment stays in the matrix. It panics
// if the row is not assigned.
func (this *Trainer) RemoveRow(rowID int) {
	log.V(2).Infof("Trainer.RemoveRow %d", rowID)
	this.ss.Remove(rowID, this.assignments.RowView(rowID))
}

// SampleTree resamples the spanning tree by MCMC using
// Dirichlet-multinomial log likelihood ratios as edge weights, then
// rebuilds the edge statistics and the propagation schedule for the
// new topology
func (this *Trainer) SampleTree() {
	log.Infof("Trainer.SampleTree given %d rows", this.ss.NumAssigned())
	V := this.tree.NumVertices()

	vertexLogits := make([]float64, V)
	for v := 0; v < V; v += 1 {
		vertexLogits[v] = logProbDCVec(this.ss.VertSS.RowView(v), this.config.vertPrior())
	}

	complete := this.tree.CompleteGrid()
	rows := this.ss.AssignedRows()
	edgeLogits := make([]float64, len(complete))
	for _, e := range complete {
		counts := countPairs(this.assignments, rows, e.V1, e.V2, this.config.NumClusters)
		edgeLogits[e.ID] = logProbDC(counts, this.config.edgePrior()) -
			vertexLogits[e.V1] - vertexLogits[e.V2]
	}

	edges := tree.SampleTree(complete, edgeLogits, this.tree.Edges(),
		this.config.SampleTreeSteps, this.rng)
	this.tree.SetEdges(edges)
	this.ss.RecountEdges(this.assignments)
	this.schedule = tree.MakeSchedule(this.tree.Grid())
}

// LogProb computes the non-normalized joint Dirichlet-multinomial log
// likelihood of the assigned data and assignments. Mainly useful for
// tracking fit of the category kernel.
func (this *Trainer) LogProb() float64 {
	V := this.tree.NumVertices()
	M := this.config.NumClusters

	vertexLogits := make([]float64, V)
	logprob := 0.0
	for v := 0; v < V; v += 1 {
		vertexLogits[v] = logProbDCVec(this.ss.VertSS.RowView(v), this.config.vertPrior())
		logprob += vertexLogits[v]
	}
	for _, e := range this.tree.Grid() {
		logprob += logProbDC(this.ss.EdgeSS[e.ID], this.config.edgePrior()) -
			vertexLogits[e.V1] - vertexLogits[e.V2]
	}
	for v := 0; v < V; v += 1 {
		K := this.data.Dim(v)
		logprob += logProbDC(this.ss.FeatSS[v], this.config.featPrior())
		for m := 0; m < M; m += 1 {
			colTotal := int32(0)
			for c := 0; c < K; c += 1 {
				colTotal += this.ss.FeatSS[v].Get(c, m)
			}
			logprob -= lgamma(float64(colTotal) + float64(K)*this.config.featPrior())
		}
	}
	return logprob
}

// Train runs the annealing schedule to completion. The run is
// deterministic for a fixed config and seed.
func (this *Trainer) Train() {
	log.Infof("Trainer.Train")
	schedule := newAnnealingSchedule(this.data.NumRows, this.config, this.rng)
	for {
		act, rowID, ok := schedule.next()
		if !ok {
			break
		}
		switch act {
		case actAddRow:
			this.AddRow(rowID)
		case actRemoveRow:
			this.RemoveRow(rowID)
		case actSampleTree:
			this.SampleTree()
		}
	}
	this.Finish()
}

// Finish releases transient topology construction state; it has no
// statistical effect
func (this *Trainer) Finish() {
	log.Infof("Trainer.Finish with %d rows", this.ss.NumAssigned())
	this.tree.GC()
}

func lgamma(x float64) float64 {
	val, _ := math.Lgamma(x)
	return val
}

// logProbDC is the non-normalized log probability of a
// Dirichlet-Categorical distribution: the sum of log gamma over the
// prior-adjusted counts
func logProbDC(counts *matrix.Int32Matrix, prior float64) float64 {
	r, _ := counts.Shape()
	sum := 0.0
	for i := 0; i < r; i += 1 {
		sum += logProbDCVec(counts.RowView(i), prior)
	}
	return sum
}

func logProbDCVec(counts []int32, prior float64) float64 {
	sum := 0.0
	for _, n := range counts {
		sum += lgamma(float64(n) + prior)
	}
	return sum
}
