package model

import "errors"

var (
	ErrBadClusterCount = errors.New("model: cluster count must be in [1, 128]")
	ErrBadEpochs       = errors.New("model: annealing epochs must be at least 1")
	ErrBadInitRows     = errors.New("model: initial row fraction must be in [0, 1]")
	ErrBadTreeSteps    = errors.New("model: tree sampling steps must be non-negative")
)

// Config collects the hyperparameters shared by training and serving
type Config struct {
	// number of latent clusters per feature, at most 128
	NumClusters int
	// subsample annealing epochs; larger values trade more row
	// resampling for slower working set growth
	AnnealingEpochs float64
	// fraction of rows assigned before annealing starts
	AnnealingInitRows float64
	// spanning tree MCMC steps per batch, 0 disables structure
	// learning
	SampleTreeSteps int
	// random seed for the trainer's generator
	Seed uint64
}

// DefaultConfig returns the configuration used by the CLI unless
// overridden by flags
func DefaultConfig() Config {
	return Config{
		NumClusters:       32,
		AnnealingEpochs:   100.0,
		AnnealingInitRows: 0.1,
		SampleTreeSteps:   10,
		Seed:              0,
	}
}

func (this Config) validate() error {
	if this.NumClusters < 1 || this.NumClusters > 128 {
		return ErrBadClusterCount
	}
	if this.AnnealingEpochs < 1.0 {
		return ErrBadEpochs
	}
	if this.AnnealingInitRows < 0.0 || this.AnnealingInitRows > 1.0 {
		return ErrBadInitRows
	}
	if this.SampleTreeSteps < 0 {
		return ErrBadTreeSteps
	}
	return nil
}

// Jeffreys priors relative to the cluster count
func (this Config) vertPrior() float64 { return 0.5 }
func (this Config) edgePrior() float64 { return 0.5 / float64(this.NumClusters) }
func (this Config) featPrior() float64 { return 0.5 / float64(this.NumClusters) }
