package perceptron

import (
	"fmt"

	"github.com/danielgalbraith/DepTrain/alg/transition"
)

type Model interface {
	// Score is deterministic given the parameters and conf.
	Score(conf transition.Configuration, candidates []transition.Transition) map[transition.Transition]float64
	// Update moves weight from predicted to gold and returns the loss; it
	// is a no-op returning 0 when gold equals predicted.
	Update(conf transition.Configuration, gold, predicted transition.Transition, learningRate float64) float64
	IncrementGeneration()
	Average()
}

// Instance is a gold training instance: the input a configuration is
// initialized with, and the gold structure the oracle follows.
type Instance interface {
	Input() interface{}
	Gold() interface{}
}

// Step is one recorded decision along a training trajectory.
type Step struct {
	Conf      transition.Configuration
	Legal     []transition.Transition
	Gold      transition.Transition
	Predicted transition.Transition
}

func (s Step) Correct() bool {
	return s.Gold == s.Predicted
}

type StepDecoder interface {
	DecodeSteps(instance Instance, m Model) ([]Step, error)
}

// DataError reports a malformed training example. Index is the position of
// the example in the caller's (unshuffled) training set.
type DataError struct {
	Index int
	Err   error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("malformed example %d: %v", e.Index, e.Err)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// IterationResult summarizes one pass over the training set.
type IterationResult struct {
	Iteration    int
	Loss         float64
	Errors       int
	Steps        int
	LearningRate float64
}

func (r IterationResult) Accuracy() float64 {
	if r.Steps == 0 {
		return 0
	}
	return float64(r.Steps-r.Errors) / float64(r.Steps)
}

type Schedule interface {
	Rate(iteration int) float64
}

// Constant is a fixed learning rate.
type Constant float64

func (c Constant) Rate(int) float64 {
	return float64(c)
}

// InverseDecay yields Initial / (1 + Decay * iteration).
type InverseDecay struct {
	Initial, Decay float64
}

func (d InverseDecay) Rate(iteration int) float64 {
	return d.Initial / (1 + d.Decay*float64(iteration))
}
