package model

import "golang.org/x/exp/rand"

type action int

const (
	actAddRow action = iota
	actRemoveRow
	actSampleTree
)

// annealingSchedule generates the subsample annealing actions for one
// training run. Additions and removals walk two independent cyclic
// cursors over one shared shuffled permutation of row ids; a linear
// annealing state decides which to emit, and whenever the stale count
// drains while fresh rows exist a full-batch tree resample is
// emitted. The schedule ends once adds plus removes total numRows, so
// it always finishes with exactly numRows more adds than removes.
type annealingSchedule struct {
	rowIDs       []int
	addCursor    int
	removeCursor int

	state      float64
	addRate    float64
	removeRate float64

	samplingTree bool
	pendingTree  bool
	numFresh     int
	numStale     int
	numRows      int
}

func newAnnealingSchedule(numRows int, config Config, rng *rand.Rand) *annealingSchedule {
	rowIDs := make([]int, numRows)
	for i := range rowIDs {
		rowIDs[i] = i
	}
	rng.Shuffle(numRows, func(i, j int) {
		rowIDs[i], rowIDs[j] = rowIDs[j], rowIDs[i]
	})

	epochs := config.AnnealingEpochs
	return &annealingSchedule{
		rowIDs:       rowIDs,
		state:        epochs * config.AnnealingInitRows * float64(numRows),
		addRate:      epochs,
		removeRate:   epochs - 1.0,
		samplingTree: config.SampleTreeSteps > 0,
		numRows:      numRows,
	}
}

// next returns the next action and, for row actions, its row id. The
// third return value is false once the schedule is exhausted.
func (this *annealingSchedule) next() (action, int, bool) {
	if this.pendingTree {
		this.pendingTree = false
		return actSampleTree, -1, true
	}
	if this.numFresh+this.numStale == this.numRows {
		return 0, -1, false
	}

	var act action
	var rowID int
	if this.state >= 0.0 {
		act = actAddRow
		rowID = this.rowIDs[this.addCursor%len(this.rowIDs)]
		this.addCursor += 1
		this.state -= this.removeRate
		this.numFresh += 1
	} else {
		act = actRemoveRow
		rowID = this.rowIDs[this.removeCursor%len(this.rowIDs)]
		this.removeCursor += 1
		this.state += this.addRate
		this.numStale -= 1
	}

	if this.samplingTree && this.numStale == 0 && this.numFresh > 0 {
		this.pendingTree = true
		this.numStale = this.numFresh
		this.numFresh = 0
	}
	return act, rowID, true
}
