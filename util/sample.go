package util

import (
	"errors"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

var ErrNoMass = errors.New("util: weights sum to zero")

// SampleIndex draws one index proportional to a vector of
// non-negative, possibly unnormalized weights
func SampleIndex(rng *rand.Rand, weights []float64) int {
	if floats.Sum(weights) <= 0 {
		panic(ErrNoMass)
	}
	cat := distuv.NewCategorical(weights, rng)
	return int(cat.Rand())
}

// SampleMultinomial draws a count vector summing to count with cell
// probabilities proportional to weights
func SampleMultinomial(rng *rand.Rand, weights []float64, count int) []int32 {
	out := make([]int32, len(weights))
	if count == 0 {
		return out
	}
	if floats.Sum(weights) <= 0 {
		panic(ErrNoMass)
	}
	cat := distuv.NewCategorical(weights, rng)
	for i := 0; i < count; i += 1 {
		out[int(cat.Rand())] += 1
	}
	return out
}
