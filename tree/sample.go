package tree

import (
	"math"

	"golang.org/x/exp/rand"

	"github.com/iamredrum/treecat/util"
)

// SampleTree runs steps rounds of a single-edge-swap MCMC move over
// spanning trees. Each round removes a uniformly random tree edge,
// splits the vertices into the two resulting components, and draws a
// replacement from the candidate edges crossing the cut, with
// probability proportional to exp(edgeLogits). The removed edge is
// itself a crossing candidate, so a round may keep the tree unchanged.
// The returned edge set is a valid spanning tree; the input edges are
// not mutated.
func SampleTree(complete []Edge, edgeLogits []float64, edges [][2]int, steps int, rng *rand.Rand) [][2]int {
	if len(edgeLogits) != len(complete) {
		panic(ErrNotSpanning)
	}
	numVertices := len(edges) + 1
	result := make([][2]int, len(edges))
	copy(result, edges)
	if len(result) == 0 {
		return result
	}

	for step := 0; step < steps; step += 1 {
		cut := rng.Intn(len(result))

		// component of result[cut][0] once the cut edge is removed
		adjacent := make([][]int, numVertices)
		for i, edge := range result {
			if i == cut {
				continue
			}
			adjacent[edge[0]] = append(adjacent[edge[0]], edge[1])
			adjacent[edge[1]] = append(adjacent[edge[1]], edge[0])
		}
		inside := make([]bool, numVertices)
		stack := []int{result[cut][0]}
		inside[result[cut][0]] = true
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, u := range adjacent[v] {
				if !inside[u] {
					inside[u] = true
					stack = append(stack, u)
				}
			}
		}

		// candidates crossing the cut, weighted by shifted logits
		var candidates []int
		maxLogit := math.Inf(-1)
		for _, e := range complete {
			if inside[e.V1] != inside[e.V2] {
				candidates = append(candidates, e.ID)
				if edgeLogits[e.ID] > maxLogit {
					maxLogit = edgeLogits[e.ID]
				}
			}
		}
		weights := make([]float64, len(candidates))
		for i, k := range candidates {
			weights[i] = math.Exp(edgeLogits[k] - maxLogit)
		}

		chosen := complete[candidates[util.SampleIndex(rng, weights)]]
		result[cut] = [2]int{chosen.V1, chosen.V2}
	}

	sortEdges(result)
	return result
}
