package main

import (
	"flag"
	"fmt"

	log "github.com/golang/glog"
	"github.com/schollz/progressbar"
	"golang.org/x/exp/rand"

	"github.com/iamredrum/treecat/corpus"
	"github.com/iamredrum/treecat/model"
)

var (
	input     = flag.String("input_file", "", "input training file")
	clusters  = flag.Int("k", 32, "number of latent clusters per feature")
	epochs    = flag.Float64("epochs", 100.0, "subsample annealing epochs")
	initRows  = flag.Float64("init_rows", 0.1, "initial fraction of assigned rows")
	treeSteps = flag.Int("tree_steps", 10, "spanning tree MCMC steps per batch, 0 disables")
	seed      = flag.Uint64("seed", 0, "random seed")
)

func main() {
	flag.Parse()
	defer log.Flush()

	// read training data
	data, err := corpus.Load(*input)
	if err != nil {
		log.Fatalf("loading %s: %v", *input, err)
	}

	config := model.Config{
		NumClusters:       *clusters,
		AnnealingEpochs:   *epochs,
		AnnealingInitRows: *initRows,
		SampleTreeSteps:   *treeSteps,
		Seed:              *seed,
	}
	trainer, err := model.NewTrainer(data, config)
	if err != nil {
		log.Fatalf("bad config: %v", err)
	}
	trainer.Train()
	fmt.Printf("train logprob %f\n", trainer.LogProb())
	fmt.Println("learned tree edges", trainer.Tree().Edges())

	// score every row against the frozen posterior
	server := model.NewServer(trainer.Tree(), trainer.SuffStats(), config,
		rand.New(rand.NewSource(config.Seed)))
	bar := progressbar.New(data.NumRows)
	total := 0.0
	for rowID := 0; rowID < data.NumRows; rowID += 1 {
		total += server.LogProb(data.Row(rowID))
		bar.Add(1)
	}
	fmt.Printf("\nper-row logprob total %f mean %f\n", total, total/float64(data.NumRows))
}
