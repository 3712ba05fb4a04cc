package perceptron

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"

	"github.com/danielgalbraith/DepTrain/alg/transition"
	"github.com/danielgalbraith/DepTrain/util/logging"

	"github.com/rs/zerolog"
	"github.com/twmb/murmur3"
)

type State int

const (
	Idle State = iota
	Shuffling
	PerExampleStep
	Updating
	IterationComplete
	Finished
)

var stateNames = [...]string{"Idle", "Shuffling", "PerExampleStep", "Updating", "IterationComplete", "Finished"}

func (s State) String() string {
	if s < Idle || s > Finished {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

type LinearPerceptron struct {
	Decoder    StepDecoder
	Updater    UpdateStrategy
	Iterations int
	Schedule   Schedule
	Seed       int64
	Model      Model
	Log        *zerolog.Logger

	// Callback, when set, receives every completed iteration.
	Callback func(IterationResult)
	// OnState, when set, observes every state the trainer enters.
	OnState func(State)

	state State
}

func (m *LinearPerceptron) Init(newModel Model) {
	m.Model = newModel
	m.state = Idle
	if m.Updater == nil {
		m.Updater = new(TrivialStrategy)
	}
	if m.Schedule == nil {
		m.Schedule = Constant(1)
	}
	if m.Log == nil {
		logger := logging.NewLogger("perceptron")
		m.Log = &logger
	}
	m.Updater.Init(m.Model, m.Iterations)
}

func (m *LinearPerceptron) State() State {
	return m.state
}

func (m *LinearPerceptron) enter(s State) {
	m.state = s
	if m.OnState != nil {
		m.OnState(s)
	}
}

// Order returns the example order of iteration: a permutation of [0, n)
// determined only by the seed and the iteration.
func Order(seed int64, iteration, n int) []int {
	return rand.New(rand.NewSource(orderSeed(seed, iteration))).Perm(n)
}

// orderSeed hashes seed and iteration together, so every seed has its own
// sequence of shuffles.
func orderSeed(seed int64, iteration int) int64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(seed))
	binary.LittleEndian.PutUint64(buf[8:], uint64(iteration))
	return int64(murmur3.Sum64(buf[:]))
}

// Train runs the configured number of iterations over instances. A
// malformed instance aborts the run with a *DataError; an illegal action is
// returned wrapped as is. Cancellation of ctx is checked between examples.
func (m *LinearPerceptron) Train(ctx context.Context, instances []Instance) ([]IterationResult, error) {
	if m.Model == nil {
		return nil, errors.New("model not initialized")
	}
	if m.Iterations <= 0 {
		return nil, fmt.Errorf("iterations must be positive, got %d", m.Iterations)
	}
	var (
		results   = make([]IterationResult, 0, m.Iterations)
		iteration int
		order     []int
		j         int
		steps     []Step
		result    IterationResult
	)
	m.enter(Shuffling)
	for {
		switch m.state {
		case Shuffling:
			order = Order(m.Seed, iteration, len(instances))
			j = 0
			result = IterationResult{Iteration: iteration + 1, LearningRate: m.Schedule.Rate(iteration)}
			m.enter(PerExampleStep)
		case PerExampleStep:
			if j == len(order) {
				m.enter(IterationComplete)
				continue
			}
			if err := ctx.Err(); err != nil {
				m.enter(Idle)
				return results, err
			}
			var err error
			steps, err = m.Decoder.DecodeSteps(instances[order[j]], m.Model)
			if err != nil {
				m.enter(Idle)
				var illegal *transition.IllegalActionError
				if errors.As(err, &illegal) {
					return results, fmt.Errorf("example %d: %w", order[j], err)
				}
				return results, &DataError{Index: order[j], Err: err}
			}
			m.enter(Updating)
		case Updating:
			m.Model.IncrementGeneration()
			for _, step := range steps {
				result.Loss += m.Model.Update(step.Conf, step.Gold, step.Predicted, result.LearningRate)
				if !step.Correct() {
					result.Errors++
				}
			}
			result.Steps += len(steps)
			m.Updater.Update(m.Model)
			j++
			m.enter(PerExampleStep)
		case IterationComplete:
			m.Log.Info().
				Int("iteration", result.Iteration).
				Float64("loss", result.Loss).
				Int("errors", result.Errors).
				Int("steps", result.Steps).
				Float64("learning_rate", result.LearningRate).
				Msg("iteration complete")
			results = append(results, result)
			if m.Callback != nil {
				m.Callback(result)
			}
			iteration++
			if iteration == m.Iterations {
				m.enter(Finished)
			} else {
				m.enter(Shuffling)
			}
		case Finished:
			m.Model = m.Updater.Finalize(m.Model)
			return results, nil
		default:
			return results, fmt.Errorf("unexpected trainer state %v", m.state)
		}
	}
}

type UpdateStrategy interface {
	Init(m Model, iterations int)
	Update(model Model)
	Finalize(m Model) Model
}

type TrivialStrategy struct{}

func (u *TrivialStrategy) Init(m Model, iterations int) {

}

func (u *TrivialStrategy) Update(m Model) {

}

func (u *TrivialStrategy) Finalize(m Model) Model {
	return m
}

// AveragedStrategy replaces the final weights with their average over all
// updates. The model keeps the running sums; N counts example updates.
type AveragedStrategy struct {
	P, N int
}

func (u *AveragedStrategy) Init(m Model, iterations int) {
	u.N = 0
	u.P = iterations
}

func (u *AveragedStrategy) Update(m Model) {
	u.N += 1
}

func (u *AveragedStrategy) Finalize(m Model) Model {
	if u.N > 0 {
		m.Average()
	}
	return m
}
