package model

import (
	"errors"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/iamredrum/treecat/matrix"
	"github.com/iamredrum/treecat/tree"
	"github.com/iamredrum/treecat/util"
)

var ErrShapeMismatch = errors.New("model: tables disagree with tree shape")

// propagator runs exact sum-product message passing over one tree.
// The same upward pass serves both training (tables are raw counts
// plus prior) and serving (tables are the frozen posterior); the two
// query kinds branch statically into logProb and sample.
type propagator struct {
	t        *tree.Structure
	schedule tree.Schedule
	M        int

	// vertProbs[v, m] is the vertex marginal table
	vertProbs *matrix.Float64Matrix
	// edgeProbs[e][m1, m2] is the edge transition table, first axis
	// the lower vertex of the pair
	edgeProbs []*matrix.Float64Matrix
	// featProbs[v][c, m] is the observed-latent table
	featProbs []*matrix.Float64Matrix
}

func newPropagator(t *tree.Structure, schedule tree.Schedule,
	vertProbs *matrix.Float64Matrix, edgeProbs, featProbs []*matrix.Float64Matrix) *propagator {
	V := t.NumVertices()
	r, M := vertProbs.Shape()
	if r != V || len(schedule) != V {
		panic(ErrShapeMismatch)
	}
	if len(edgeProbs) != t.NumEdges() || len(featProbs) != V {
		panic(ErrShapeMismatch)
	}
	for _, trans := range edgeProbs {
		r, c := trans.Shape()
		if r != M || c != M {
			panic(ErrShapeMismatch)
		}
	}
	for _, obsLat := range featProbs {
		_, c := obsLat.Shape()
		if c != M {
			panic(ErrShapeMismatch)
		}
	}
	return &propagator{
		t:         t,
		schedule:  schedule,
		M:         M,
		vertProbs: vertProbs,
		edgeProbs: edgeProbs,
		featProbs: featProbs,
	}
}

// upward folds a row of evidence from the leaves to the root and
// returns the retained per-vertex messages together with the log of
// the normalizing factors removed along the way. Every removed factor
// is accumulated exactly once; the pair (messages, logZ) determines
// the row's likelihood without loss.
func (this *propagator) upward(data [][]int32) (*matrix.Float64Matrix, float64) {
	messages := this.vertProbs.Clone()
	logZ := 0.0

	for i := len(this.schedule) - 1; i >= 0; i -= 1 {
		visit := this.schedule[i]
		v := visit.Vertex
		message := messages.RowView(v)

		// fold in observed evidence one count unit at a time. The
		// running table and its column sums implement the sequential
		// Dirichlet-Categorical predictive (a Polya urn), so units of
		// the same vertex must be folded in order.
		obsLat := this.featProbs[v].Clone()
		numCats, _ := obsLat.Shape()
		lat := make([]float64, this.M)
		for c := 0; c < numCats; c += 1 {
			floats.Add(lat, obsLat.RowView(c))
		}
		for c, count := range data[v] {
			row := obsLat.RowView(c)
			for n := int32(0); n < count; n += 1 {
				for m := 0; m < this.M; m += 1 {
					message[m] *= row[m] / lat[m]
				}
				for m := 0; m < this.M; m += 1 {
					row[m] += 1.0
					lat[m] += 1.0
				}
			}
		}

		// fold in child messages through the edge kernels. The
		// division by the vertex marginal undoes the copy of the
		// marginal carried by each edge joint; the normalizing sum is
		// moved into logZ.
		vMarg := this.vertProbs.RowView(v)
		for _, child := range visit.Children {
			trans := this.edgeProbs[this.t.FindEdge(v, child)]
			childMsg := messages.RowView(child)
			childMarg := this.vertProbs.RowView(child)
			for m := 0; m < this.M; m += 1 {
				dot := 0.0
				if v < child {
					for m2 := 0; m2 < this.M; m2 += 1 {
						dot += trans.Get(m, m2) * childMsg[m2] / childMarg[m2]
					}
				} else {
					for m2 := 0; m2 < this.M; m2 += 1 {
						dot += trans.Get(m2, m) * childMsg[m2] / childMarg[m2]
					}
				}
				message[m] *= dot / vMarg[m]
			}
			total := floats.Sum(message)
			floats.Scale(1.0/total, message)
			logZ += math.Log(total)
		}
	}
	return messages, logZ
}

// logProb returns the exact log marginal likelihood of one row
func (this *propagator) logProb(data [][]int32) float64 {
	messages, logZ := this.upward(data)
	root := this.schedule[0].Vertex
	return logZ + math.Log(floats.Sum(messages.RowView(root)))
}

// sample folds the row in as conditioning evidence, then walks the
// schedule root to leaves drawing one cluster id per vertex, and for
// every vertex with a positive requested count a multinomial draw of
// that size. counts may be nil to sample latent state only.
func (this *propagator) sample(data [][]int32, counts []int32, rng *rand.Rand) ([]int32, [][]int32) {
	messages, _ := this.upward(data)
	V := this.t.NumVertices()
	latent := make([]int32, V)
	var featSample [][]int32
	if counts != nil {
		featSample = make([][]int32, V)
	}

	for _, visit := range this.schedule {
		v := visit.Vertex
		message := messages.RowView(v)
		if visit.Parent >= 0 {
			trans := this.edgeProbs[this.t.FindEdge(visit.Parent, v)]
			parentCluster := int(latent[visit.Parent])
			vMarg := this.vertProbs.RowView(v)
			for m := 0; m < this.M; m += 1 {
				if visit.Parent < v {
					message[m] *= trans.Get(parentCluster, m)
				} else {
					message[m] *= trans.Get(m, parentCluster)
				}
				message[m] /= vMarg[m]
			}
		}
		floats.Scale(1.0/floats.Sum(message), message)
		latent[v] = int32(util.SampleIndex(rng, message))

		if counts == nil {
			continue
		}
		if counts[v] > 0 {
			probs := this.featProbs[v].GetCol(int(latent[v]))
			featSample[v] = util.SampleMultinomial(rng, probs, int(counts[v]))
		} else {
			numCats, _ := this.featProbs[v].Shape()
			featSample[v] = make([]int32, numCats)
		}
	}
	return latent, featSample
}
